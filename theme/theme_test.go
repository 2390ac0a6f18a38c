package theme

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNames(t *testing.T) {
	got := Names()
	want := []string{"geek", "gradient"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestBuiltinGradient(t *testing.T) {
	th, err := Builtin("gradient")
	if err != nil {
		t.Fatal(err)
	}
	if len(th.Images) != 4 {
		t.Fatalf("images = %d, want 4", len(th.Images))
	}
	if th.Favicon != nil {
		t.Error("gradient theme should not carry a favicon")
	}
	wantNames := []string{"home-bg-art.jpg", "post-bg.jpg", "404-bg.jpg", "post-bg-alitrip.jpg"}
	for i, img := range th.Images {
		if img.Name != wantNames[i] {
			t.Errorf("image %d = %q, want %q", i, img.Name, wantNames[i])
		}
		if img.Width != 1920 || img.Height != 1080 || img.Quality != 90 {
			t.Errorf("%s: %dx%d q%d, want 1920x1080 q90", img.Name, img.Width, img.Height, img.Quality)
		}
	}
	from, to, err := th.Colors(th.Images[0])
	if err != nil {
		t.Fatal(err)
	}
	if from.Hex() != "#3498db" || to.Hex() != "#2c3e50" {
		t.Errorf("home gradient = %s -> %s", from, to)
	}
}

func TestBuiltinGeek(t *testing.T) {
	th, err := Builtin("geek")
	if err != nil {
		t.Fatal(err)
	}
	if th.Favicon == nil || th.Favicon.Size != 64 {
		t.Fatalf("favicon = %+v", th.Favicon)
	}
	for _, img := range th.Images {
		if img.Height != 600 || img.Quality != 85 || img.Direction != "vertical" {
			t.Errorf("%s: h=%d q=%d dir=%q", img.Name, img.Height, img.Quality, img.Direction)
		}
		if img.Pattern == nil || img.Shapes == nil {
			t.Errorf("%s: missing overlays", img.Name)
		}
	}
	if th.Palette["accent_red"] != "#DC2626" {
		t.Errorf("base palette not merged: %v", th.Palette)
	}
}

func TestBuiltinUnknown(t *testing.T) {
	if _, err := Builtin("vaporwave"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("err = %v, want ErrUnknownTheme", err)
	}
}

const minimal = `
[palette]
sky = "#87ceeb"

[[image]]
name = "sky.png"
width = 10
height = 20
gradient = ["sky", "#000000"]
`

func TestParseDefaults(t *testing.T) {
	th, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatal(err)
	}
	img := th.Images[0]
	if img.Direction != "vertical" || img.Quality != DefaultQuality {
		t.Errorf("defaults not applied: %+v", img)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad hex", `[[image]]
name = "a.jpg"
width = 1
height = 1
gradient = ["#12345", "#000000"]`, "unknown colour"},
		{"one stop", `[[image]]
name = "a.jpg"
width = 1
height = 1
gradient = ["#123456"]`, "exactly 2"},
		{"zero size", `[[image]]
name = "a.jpg"
width = 0
height = 1
gradient = ["#123456", "#000000"]`, "invalid size"},
		{"direction", `[[image]]
name = "a.jpg"
width = 1
height = 1
direction = "diagonal"
gradient = ["#123456", "#000000"]`, "direction"},
		{"extension", `[[image]]
name = "a.gif"
width = 1
height = 1
gradient = ["#123456", "#000000"]`, "extension"},
		{"path", `[[image]]
name = "../a.jpg"
width = 1
height = 1
gradient = ["#123456", "#000000"]`, "plain file name"},
		{"duplicate", `[[image]]
name = "a.jpg"
width = 1
height = 1
gradient = ["#123456", "#000000"]
[[image]]
name = "a.jpg"
width = 1
height = 1
gradient = ["#123456", "#000000"]`, "duplicate"},
		{"opacity", `[[image]]
name = "a.jpg"
width = 1
height = 1
gradient = ["#123456", "#000000"]
pattern = { color = "#ffffff", opacity = 1.5 }`, "opacity"},
		{"unknown key", `[[image]]
name = "a.jpg"
width = 1
height = 1
colour = "red"
gradient = ["#123456", "#000000"]`, "unknown keys"},
		{"base palette", `base_palette = "neon"
[[image]]
name = "a.jpg"
width = 1
height = 1
gradient = ["#123456", "#000000"]`, "base_palette"},
		{"favicon size", `[favicon]
size = 512
background = "#000000"
foreground = "#ffffff"`, "favicon"},
		{"empty", `name = "nothing"`, "no images"},
		{"syntax", `[[image]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadNamesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sunset.toml")
	if err := os.WriteFile(path, []byte(minimal), 0644); err != nil {
		t.Fatal(err)
	}
	th, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "sunset" {
		t.Errorf("Name = %q, want sunset", th.Name)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error")
	}
}
