package assembly

import (
	"bytes"
	_ "embed"
	"image"
	"image/color"
	"image/png"
)

// defaultThumbnailSVG backs videos whose article had no usable image.
//
//go:embed thumbnail.svg
var defaultThumbnailSVG []byte

// defaultRasterPNG renders a plain gradient background directly, for the
// case where ffmpeg cannot rasterize the bundled SVG (no librsvg support in
// the installed build).
func defaultRasterPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	top := color.RGBA{R: 0x1f, G: 0x2a, B: 0x44, A: 0xff}
	bottom := color.RGBA{R: 0x0e, G: 0x15, B: 0x26, A: 0xff}
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		row := color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 0xff,
		}
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, row)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory RGBA image cannot fail with a valid size.
		return nil
	}
	return buf.Bytes()
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
