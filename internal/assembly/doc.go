// Package assembly turns a narration payload into a narrated MP4. A single
// shared media engine wraps the external ffmpeg binary and a scratch
// directory that acts as the engine's private filesystem; jobs move through a
// fixed phase sequence with monotonic progress.
package assembly
