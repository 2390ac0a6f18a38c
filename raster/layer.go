package raster

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"themeart/palette"
)

// Layer is a transparent overlay painted in a single translucent colour.
// Painting replaces pixels, so overlapping strokes inside one layer do not
// darken each other. Composite pastes the layer onto a base image.
type Layer struct {
	img *image.NRGBA
	col color.NRGBA
	src *image.Uniform
}

func NewLayer(bounds image.Rectangle, c palette.Color, opacity float64) *Layer {
	col := c.NRGBA(opacity)
	return &Layer{
		img: image.NewNRGBA(bounds),
		col: col,
		src: image.NewUniform(col),
	}
}

func (l *Layer) Bounds() image.Rectangle {
	return l.img.Bounds()
}

func (l *Layer) Image() *image.NRGBA {
	return l.img
}

func (l *Layer) Color() color.NRGBA {
	return l.col
}

// Fill paints r, clipped to the layer.
func (l *Layer) Fill(r image.Rectangle) {
	r = r.Intersect(l.img.Bounds())
	if r.Empty() {
		return
	}
	xdraw.Draw(l.img, r, l.src, image.Point{}, xdraw.Src)
}

// HLine paints row y from x0 to x1 inclusive.
func (l *Layer) HLine(x0, x1, y int) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	l.Fill(image.Rect(x0, y, x1+1, y+1))
}

// VLine paints column x from y0 to y1 inclusive.
func (l *Layer) VLine(x, y0, y1 int) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	l.Fill(image.Rect(x, y0, x+1, y1+1))
}

// Dot paints a small disc of radius r around (x, y).
func (l *Layer) Dot(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r+r {
				l.Fill(image.Rect(x+dx, y+dy, x+dx+1, y+dy+1))
			}
		}
	}
}

// RectOutline draws the border of the box with inclusive corners
// (x0,y0)-(x1,y1); the stroke grows inward.
func (l *Layer) RectOutline(x0, y0, x1, y1, width int) {
	if width < 1 {
		width = 1
	}
	l.Fill(image.Rect(x0, y0, x1+1, y0+width))
	l.Fill(image.Rect(x0, y1-width+1, x1+1, y1+1))
	l.Fill(image.Rect(x0, y0, x0+width, y1+1))
	l.Fill(image.Rect(x1-width+1, y0, x1+1, y1+1))
}

// PolygonOutline strokes the closed polygon through pts with an
// anti-aliased line of the given width. Edge pixels keep the stronger of
// the existing and the new coverage.
func (l *Layer) PolygonOutline(pts []image.Point, width float64) {
	if len(pts) < 2 {
		return
	}
	b := l.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())

	hw := float32(width / 2)
	center := func(p image.Point) (float32, float32) {
		return float32(p.X-b.Min.X) + 0.5, float32(p.Y-b.Min.Y) + 0.5
	}
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		x0, y0 := center(p)
		x1, y1 := center(q)
		strokeSegment(z, x0, y0, x1, y1, hw)
		joinSquare(z, x0, y0, hw)
	}

	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			m := mask.AlphaAt(x, y).A
			if m == 0 {
				continue
			}
			a := uint8(uint32(l.col.A) * uint32(m) / 255)
			px, py := b.Min.X+x, b.Min.Y+y
			if a > l.img.NRGBAAt(px, py).A {
				l.img.SetNRGBA(px, py, color.NRGBA{l.col.R, l.col.G, l.col.B, a})
			}
		}
	}
}

// strokeSegment and joinSquare wind their subpaths the same way so the
// rasterizer adds, rather than cancels, overlapping coverage.
func strokeSegment(z *vector.Rasterizer, x0, y0, x1, y1, hw float32) {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*hw, dx/length*hw
	z.MoveTo(x0+nx, y0+ny)
	z.LineTo(x1+nx, y1+ny)
	z.LineTo(x1-nx, y1-ny)
	z.LineTo(x0-nx, y0-ny)
	z.ClosePath()
}

func joinSquare(z *vector.Rasterizer, x, y, hw float32) {
	z.MoveTo(x-hw, y-hw)
	z.LineTo(x-hw, y+hw)
	z.LineTo(x+hw, y+hw)
	z.LineTo(x+hw, y-hw)
	z.ClosePath()
}

// Composite pastes the layer over dst using the layer's alpha as mask.
func (l *Layer) Composite(dst xdraw.Image) {
	xdraw.Draw(dst, l.img.Bounds(), l.img, l.img.Bounds().Min, xdraw.Over)
}
