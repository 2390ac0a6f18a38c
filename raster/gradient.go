// Package raster draws the background images: two-stop gradients and the
// translucent overlays that are pasted on top of them.
package raster

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"themeart/palette"
)

type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
)

// ParseDirection maps "" to Vertical.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", Vertical:
		return Vertical, nil
	case Horizontal:
		return Horizontal, nil
	}
	return "", fmt.Errorf("unknown gradient direction %q (use vertical or horizontal)", s)
}

// Gradient fills a w x h image line by line. Line i of n gets
// Lerp(from, to, i/n), so the last line stops one step short of to.
func Gradient(w, h int, from, to palette.Color, dir Direction) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	steps := h
	if dir == Horizontal {
		steps = w
	}
	for i := 0; i < steps; i++ {
		c := palette.Lerp(from, to, float64(i)/float64(steps))
		var line image.Rectangle
		if dir == Horizontal {
			line = image.Rect(i, 0, i+1, h)
		} else {
			line = image.Rect(0, i, w, i+1)
		}
		xdraw.Draw(img, line, image.NewUniform(c.RGBA()), image.Point{}, xdraw.Src)
	}
	return img, nil
}
