package encoder

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
)

type JPEG struct {
	Quality int
}

func (e JPEG) Encode(w io.Writer, img image.Image) error {
	q := e.Quality
	if q == 0 {
		q = DefaultJPEGQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}

func (JPEG) Format() string { return "jpeg" }

type PNG struct{}

func (PNG) Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

func (PNG) Format() string { return "png" }
