// Package favicon renders the terminal-prompt site icon and writes it as
// an ICO, keeping a PNG when the icon cannot be encoded.
package favicon

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"themeart/encoder"
	"themeart/palette"
)

const (
	DefaultSize = 64
	PNGName     = "favicon.png"
	ICOName     = "favicon.ico"

	// glyph height relative to the icon, and how far it sits above centre
	fontScale = 0.625
	liftPx    = 2
	glyph     = ">"
)

// FontSize is the point size used for a glyph on an icon of the given size.
func FontSize(size int) float64 {
	return float64(size) * fontScale
}

// LoadFace opens a TrueType/OpenType font (or the first font of a .ttc
// collection) at the given size.
func LoadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f *opentype.Font
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font collection: %w", err)
		}
		f, err = coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("reading font 0 of collection: %w", err)
		}
	} else {
		f, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	return face, nil
}

// Render draws a ">" prompt in fg, centred on a size x size bg square.
// With a nil face the chevron is drawn as a vector path.
func Render(size int, bg, fg palette.Color, face font.Face) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(bg.RGBA()), image.Point{}, xdraw.Src)

	if face != nil && drawGlyph(img, size, fg, face) {
		return img
	}
	drawChevron(img, size, fg)
	return img
}

func drawGlyph(img *image.RGBA, size int, fg palette.Color, face font.Face) bool {
	bounds, _ := font.BoundString(face, glyph)
	tw := (bounds.Max.X - bounds.Min.X).Ceil()
	th := (bounds.Max.Y - bounds.Min.Y).Ceil()
	if tw <= 0 || th <= 0 {
		return false
	}
	x := (size - tw) / 2
	y := (size-th)/2 - liftPx

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg.RGBA()),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x) - bounds.Min.X,
			Y: fixed.I(y) - bounds.Min.Y,
		},
	}
	d.DrawString(glyph)
	return true
}

func drawChevron(img *image.RGBA, size int, fg palette.Color) {
	s := float32(size)
	left, right := 0.30*s, 0.70*s
	top, bottom := 0.22*s-liftPx, 0.78*s-liftPx
	mid := (top + bottom) / 2
	stroke := 0.15 * s

	z := vector.NewRasterizer(size, size)
	z.MoveTo(left, top)
	z.LineTo(left+stroke, top)
	z.LineTo(right, mid)
	z.LineTo(left+stroke, bottom)
	z.LineTo(left, bottom)
	z.LineTo(right-stroke, mid)
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(fg.RGBA()), image.Point{})
}

type Result struct {
	ICOPath  string
	PNGPath  string // set only when the PNG fallback was kept
	Bytes    int64
	Fallback bool
	ICOErr   error
}

// Write stores img as dir/favicon.png, then converts it to dir/favicon.ico
// with one entry per size. On success the PNG is removed. An ICO failure
// is not an error: the PNG stays and the result records why.
func Write(dir string, img image.Image, sizes []int) (Result, error) {
	if len(sizes) == 0 {
		sizes = encoder.DefaultIconSizes
	}
	pngPath := filepath.Join(dir, PNGName)
	n, err := encoder.WriteFile(pngPath, encoder.PNG{}, img)
	if err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", PNGName, err)
	}

	icoPath := filepath.Join(dir, ICOName)
	icoBytes, err := encoder.WriteFile(icoPath, encoder.ICO{Sizes: sizes}, img)
	if err != nil {
		return Result{PNGPath: pngPath, Bytes: n, Fallback: true, ICOErr: err}, nil
	}
	if err := os.Remove(pngPath); err != nil && !os.IsNotExist(err) {
		return Result{}, fmt.Errorf("removing temporary %s: %w", PNGName, err)
	}
	return Result{ICOPath: icoPath, Bytes: icoBytes}, nil
}
