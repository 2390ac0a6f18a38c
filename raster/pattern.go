package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"themeart/palette"
)

const (
	gridSpacing = 40
	lineSpacing = 20
	dotSpacing  = 60

	boxWidth     = 200
	boxHeight    = 30
	boxSpacing   = 150
	boxStroke    = 2
	triangleSize = 20
	shapeStroke  = 2
)

// CodePattern overlays a faint editor grid: lines every 40px, longer
// "code lines" every few rows and a sparse dot field.
func CodePattern(dst xdraw.Image, c palette.Color, opacity float64) {
	l := NewLayer(dst.Bounds(), c, opacity)
	drawCodePattern(l)
	l.Composite(dst)
}

func drawCodePattern(l *Layer) {
	b := l.Bounds()
	w, h := b.Dx(), b.Dy()
	ox, oy := b.Min.X, b.Min.Y

	for x := 0; x < w; x += gridSpacing {
		l.VLine(ox+x, oy, oy+h)
	}
	for y := 0; y < h; y += gridSpacing {
		l.HLine(ox, ox+w, oy+y)
	}

	for y := 0; y < h; y += lineSpacing {
		switch {
		case y%60 == 0:
			l.HLine(ox+50, ox+w-50, oy+y)
		case y%40 == 0:
			l.HLine(ox+100, ox+w-100, oy+y)
		}
	}

	for x := 100; x < w-100; x += dotSpacing {
		for y := 100; y < h-100; y += dotSpacing {
			if (x+y)%120 == 0 {
				l.Dot(ox+x, oy+y, 1)
			}
		}
	}
}

// GeometricShapes overlays outlined "code block" boxes down the left side
// and small arrow triangles.
func GeometricShapes(dst xdraw.Image, c palette.Color, opacity float64) {
	l := NewLayer(dst.Bounds(), c, opacity)
	drawGeometricShapes(l)
	l.Composite(dst)
}

func drawGeometricShapes(l *Layer) {
	b := l.Bounds()
	w, h := b.Dx(), b.Dy()
	ox, oy := b.Min.X, b.Min.Y

	for y := 100; y < h-100; y += boxSpacing {
		x := int(50 + float64(y%(boxSpacing*2))*0.3)
		l.RectOutline(ox+x, oy+y, ox+x+boxWidth, oy+y+boxHeight, boxStroke)
	}

	for x := 200; x < w-200; x += 300 {
		for y := 150; y < h-150; y += 200 {
			if (x+y)%400 != 0 {
				continue
			}
			l.PolygonOutline([]image.Point{
				{ox + x, oy + y},
				{ox + x + triangleSize, oy + y},
				{ox + x + triangleSize/2, oy + y - triangleSize},
			}, shapeStroke)
		}
	}
}
