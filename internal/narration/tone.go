package narration

import (
	"encoding/binary"
	"math"
)

// Debug tone parameters. The tone endpoint exists so the assembly path can be
// exercised without any external service credentials.
const (
	toneDurationSec = 3
	toneFrequencyHz = 440
	toneSampleRate  = 44100
	toneVolume      = 0.6
)

// ToneWAV renders a mono 16-bit PCM sine tone as a complete WAV file.
func ToneWAV(durationSec float64, frequencyHz float64, sampleRate int, volume float64) []byte {
	sampleCount := int(float64(sampleRate) * durationSec)
	dataSize := sampleCount * 2
	byteRate := sampleRate * 2

	buf := make([]byte, wavHeaderSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i := 0; i < sampleCount; i++ {
		sample := volume * math.Sin(2*math.Pi*frequencyHz*float64(i)/float64(sampleRate))
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+i*2:], uint16(int16(sample*math.MaxInt16)))
	}
	return buf
}

// DebugTonePayload builds a fully-populated payload around a generated test
// tone so downstream stages can run end to end without external services.
func DebugTonePayload(imageURL string) Payload {
	audio := ToneWAV(toneDurationSec, toneFrequencyHz, toneSampleRate, toneVolume)
	payload := Payload{
		Summary:  "This is a diagnostic narration used to verify audio and video assembly.",
		ImageURL: imageURL,
	}
	payload.SetAudio(audio, FormatWAV)
	payload.EstimatedDurationSec = EstimateFromAudio(audio, FormatWAV, 0)
	return payload
}
