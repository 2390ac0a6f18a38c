// Package theme describes a set of generated images and loads it from
// TOML, either from the embedded built-in themes or from a user file.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"themeart/palette"
	"themeart/raster"
)

//go:embed themes/*.toml
var builtinFS embed.FS

var (
	ErrUnknownTheme = errors.New("unknown theme")
	ErrInvalid      = errors.New("invalid theme")
)

const DefaultQuality = 90

type OverlaySpec struct {
	Color   string  `toml:"color"`
	Opacity float64 `toml:"opacity"`
}

type ImageSpec struct {
	Name        string       `toml:"name"`
	Description string       `toml:"description"`
	Width       int          `toml:"width"`
	Height      int          `toml:"height"`
	Gradient    []string     `toml:"gradient"`
	Direction   string       `toml:"direction"`
	Quality     int          `toml:"quality"`
	Pattern     *OverlaySpec `toml:"pattern"`
	Shapes      *OverlaySpec `toml:"shapes"`
}

type FaviconSpec struct {
	Size       int    `toml:"size"`
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Font       string `toml:"font"`
	Sizes      []int  `toml:"sizes"`
}

type Theme struct {
	Name        string          `toml:"name"`
	Description string          `toml:"description"`
	BasePalette string          `toml:"base_palette"`
	Palette     palette.Palette `toml:"palette"`
	Images      []ImageSpec     `toml:"image"`
	Favicon     *FaviconSpec    `toml:"favicon"`
}

// Names lists the built-in themes.
func Names() []string {
	matches, _ := fs.Glob(builtinFS, "themes/*.toml")
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".toml"))
	}
	sort.Strings(names)
	return names
}

func Builtin(name string) (*Theme, error) {
	data, err := builtinFS.ReadFile("themes/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTheme, name, strings.Join(Names(), ", "))
	}
	return Parse(data)
}

// Load reads a theme file. A theme without a name is named after the file.
func Load(file string) (*Theme, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return t, nil
}

// Parse decodes, fills defaults and validates a theme. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Parse(data []byte) (*Theme, error) {
	var t Theme
	md, err := toml.Decode(string(data), &t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := t.mergePalette(); err != nil {
		return nil, err
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Theme) mergePalette() error {
	merged := palette.Palette{}
	if t.BasePalette != "" {
		base, ok := palette.Named(t.BasePalette)
		if !ok {
			return fmt.Errorf("%w: unknown base_palette %q", ErrInvalid, t.BasePalette)
		}
		for k, v := range base {
			merged[k] = v
		}
	}
	for k, v := range t.Palette {
		merged[k] = v
	}
	t.Palette = merged
	return nil
}

func (t *Theme) applyDefaults() {
	for i := range t.Images {
		img := &t.Images[i]
		if img.Direction == "" {
			img.Direction = string(raster.Vertical)
		}
		if img.Quality == 0 {
			img.Quality = DefaultQuality
		}
	}
	if f := t.Favicon; f != nil && f.Size == 0 {
		f.Size = 64
	}
}

// Validate reports every problem found, joined into one error.
func (t *Theme) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if err := t.Palette.Validate(); err != nil {
		bad("%v", err)
	}
	if len(t.Images) == 0 && t.Favicon == nil {
		bad("theme %q has no images and no favicon", t.Name)
	}

	seen := map[string]bool{}
	for i, img := range t.Images {
		label := img.Name
		if label == "" {
			label = fmt.Sprintf("image #%d", i+1)
			bad("%s: missing name", label)
		} else if seen[img.Name] {
			bad("%s: duplicate name", label)
		}
		seen[img.Name] = true

		if img.Name != "" && filepath.Base(img.Name) != img.Name {
			bad("%s: name must be a plain file name", label)
		}
		switch strings.ToLower(filepath.Ext(img.Name)) {
		case ".jpg", ".jpeg", ".png":
		default:
			if img.Name != "" {
				bad("%s: unsupported extension (use .jpg, .jpeg or .png)", label)
			}
		}
		if img.Width <= 0 || img.Height <= 0 {
			bad("%s: invalid size %dx%d", label, img.Width, img.Height)
		}
		if len(img.Gradient) != 2 {
			bad("%s: gradient needs exactly 2 colours, got %d", label, len(img.Gradient))
		}
		for _, ref := range img.Gradient {
			if _, err := t.Palette.Resolve(ref); err != nil {
				bad("%s: %v", label, err)
			}
		}
		if _, err := raster.ParseDirection(img.Direction); err != nil {
			bad("%s: %v", label, err)
		}
		if img.Quality < 1 || img.Quality > 100 {
			bad("%s: quality %d out of range 1-100", label, img.Quality)
		}
		for _, ov := range []struct {
			kind string
			spec *OverlaySpec
		}{{"pattern", img.Pattern}, {"shapes", img.Shapes}} {
			kind, o := ov.kind, ov.spec
			if o == nil {
				continue
			}
			if _, err := t.Palette.Resolve(o.Color); err != nil {
				bad("%s: %s: %v", label, kind, err)
			}
			if o.Opacity < 0 || o.Opacity > 1 {
				bad("%s: %s opacity %v out of range 0-1", label, kind, o.Opacity)
			}
		}
	}

	if f := t.Favicon; f != nil {
		if f.Size < 1 || f.Size > 256 {
			bad("favicon: size %d out of range 1-256", f.Size)
		}
		for _, ref := range []string{f.Background, f.Foreground} {
			if _, err := t.Palette.Resolve(ref); err != nil {
				bad("favicon: %v", err)
			}
		}
		for _, s := range f.Sizes {
			if s < 1 || s > 256 {
				bad("favicon: icon size %d out of range 1-256", s)
			}
		}
	}

	return errors.Join(errs...)
}

// Colors resolves the two gradient stops of img.
func (t *Theme) Colors(img ImageSpec) (from, to palette.Color, err error) {
	if len(img.Gradient) != 2 {
		return from, to, fmt.Errorf("%w: %s: gradient needs exactly 2 colours", ErrInvalid, img.Name)
	}
	if from, err = t.Palette.Resolve(img.Gradient[0]); err != nil {
		return from, to, err
	}
	to, err = t.Palette.Resolve(img.Gradient[1])
	return from, to, err
}
