// Package palette holds theme colours and the hex conversions used by the
// image generators.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidHex = errors.New("invalid hex colour")

type Color struct {
	R, G, B uint8
}

// ParseHex accepts "#rrggbb" or "rrggbb" in either case.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	for i := 0; i < len(h); i++ {
		if !isHexDigit(h[i]) {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
		}
	}
	c, err := colorful.Hex("#" + strings.ToLower(h))
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidHex, s, err)
	}
	r, g, b := c.RGB255()
	return Color{r, g, b}, nil
}

// MustParseHex panics on malformed input. Only for package-level literals.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) RGBA() color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 255}
}

// NRGBA returns the colour with alpha set from opacity in [0,1],
// truncated the same way the overlays are blended.
func (c Color) NRGBA(opacity float64) color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, uint8(255 * clamp01(opacity))}
}

// Lerp interpolates each channel linearly and truncates toward zero.
// t is clamped to [0,1].
func Lerp(a, b Color, t float64) Color {
	t = clamp01(t)
	return Color{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Palette maps colour names to hex strings.
type Palette map[string]string

// Resolve looks ref up by name first, then parses it as a literal hex colour.
func (p Palette) Resolve(ref string) (Color, error) {
	if hex, ok := p[ref]; ok {
		c, err := ParseHex(hex)
		if err != nil {
			return Color{}, fmt.Errorf("palette entry %q: %w", ref, err)
		}
		return c, nil
	}
	c, err := ParseHex(ref)
	if err != nil {
		return Color{}, fmt.Errorf("unknown colour %q: %w", ref, err)
	}
	return c, nil
}

// Validate checks that every entry holds a well-formed hex colour.
func (p Palette) Validate() error {
	for _, name := range p.Names() {
		if _, err := ParseHex(p[name]); err != nil {
			return fmt.Errorf("palette entry %q: %w", name, err)
		}
	}
	return nil
}

func (p Palette) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Classic is the blue palette of the plain gradient backgrounds.
func Classic() Palette {
	return Palette{
		"primary":   "#3498db",
		"secondary": "#2c3e50",
		"accent":    "#ecf0f1",
		"dark":      "#34495e",
		"light":     "#ffffff",
	}
}

// Geek is the dark code-editor palette.
func Geek() Palette {
	return Palette{
		"bg_dark":       "#0D1117",
		"bg_darker":     "#161B22",
		"border":        "#21262D",
		"accent_blue":   "#58A6FF",
		"accent_purple": "#7C3AED",
		"accent_red":    "#DC2626",
		"text_muted":    "#6E7681",
	}
}

// Named returns a copy of a built-in palette.
func Named(name string) (Palette, bool) {
	switch name {
	case "classic":
		return Classic(), true
	case "geek":
		return Geek(), true
	}
	return nil, false
}
