package favicon

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"

	"themeart/palette"
)

var (
	bgDark     = palette.MustParseHex("#0D1117")
	accentBlue = palette.MustParseHex("#58A6FF")
)

func countNot(img *image.RGBA, c palette.Color) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != c.RGBA() {
				n++
			}
		}
	}
	return n
}

func TestRenderChevron(t *testing.T) {
	img := Render(DefaultSize, bgDark, accentBlue, nil)
	if img.Bounds().Dx() != DefaultSize || img.Bounds().Dy() != DefaultSize {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != bgDark.RGBA() {
		t.Errorf("corner = %v, want background %v", got, bgDark.RGBA())
	}
	// tip of the chevron, right of centre
	if got := img.RGBAAt(40, 29); got != accentBlue.RGBA() {
		t.Errorf("tip pixel = %v, want %v", got, accentBlue.RGBA())
	}
	// inside the notch
	if got := img.RGBAAt(22, 30); got != bgDark.RGBA() {
		t.Errorf("notch pixel = %v, want background", got)
	}
}

func TestRenderWithFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gomono.ttf")
	if err := os.WriteFile(path, gomono.TTF, 0644); err != nil {
		t.Fatal(err)
	}
	face, err := LoadFace(path, FontSize(DefaultSize))
	if err != nil {
		t.Fatalf("LoadFace: %v", err)
	}
	defer face.Close()

	img := Render(DefaultSize, bgDark, accentBlue, face)
	if n := countNot(img, bgDark); n < 50 {
		t.Errorf("only %d glyph pixels drawn", n)
	}
	if got := img.RGBAAt(0, 0); got != bgDark.RGBA() {
		t.Errorf("corner = %v, want background", got)
	}
}

func TestLoadFaceErrors(t *testing.T) {
	if _, err := LoadFace(filepath.Join(t.TempDir(), "missing.ttf"), 40); err == nil {
		t.Error("expected error for missing font")
	}
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	os.WriteFile(bad, []byte("not a font"), 0644)
	if _, err := LoadFace(bad, 40); err == nil {
		t.Error("expected error for garbage font")
	}
}

func TestWriteICO(t *testing.T) {
	dir := t.TempDir()
	res, err := Write(dir, Render(DefaultSize, bgDark, accentBlue, nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Fallback {
		t.Fatalf("unexpected fallback: %v", res.ICOErr)
	}
	if res.ICOPath != filepath.Join(dir, ICOName) {
		t.Errorf("ICOPath = %q", res.ICOPath)
	}
	if _, err := os.Stat(res.ICOPath); err != nil {
		t.Errorf("ico not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, PNGName)); !os.IsNotExist(err) {
		t.Errorf("temporary png should be removed, stat err = %v", err)
	}
	if res.Bytes <= 0 {
		t.Errorf("Bytes = %d", res.Bytes)
	}
}

func TestWriteFallsBackToPNG(t *testing.T) {
	dir := t.TempDir()
	res, err := Write(dir, Render(DefaultSize, bgDark, accentBlue, nil), []int{512})
	if err != nil {
		t.Fatalf("ICO failure must not be an error: %v", err)
	}
	if !res.Fallback || res.ICOErr == nil {
		t.Fatalf("expected fallback, got %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, PNGName)); err != nil {
		t.Errorf("png fallback missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ICOName)); !os.IsNotExist(err) {
		t.Errorf("no ico expected, stat err = %v", err)
	}
}

func TestWriteUnwritableDir(t *testing.T) {
	if _, err := Write(filepath.Join(t.TempDir(), "nope"), Render(16, bgDark, accentBlue, nil), nil); err == nil {
		t.Error("expected error for missing directory")
	}
}
