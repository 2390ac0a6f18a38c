// Package generate renders every image of a theme and writes it to the
// output directory.
package generate

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/font"

	"themeart/encoder"
	"themeart/favicon"
	"themeart/log"
	"themeart/raster"
	"themeart/theme"
)

type EventKind int

const (
	EventStart EventKind = iota
	EventDone
	EventFavicon
)

type Event struct {
	Kind  EventKind
	Index int
	Total int
	Spec  theme.ImageSpec
	Item  *Item
}

type Item struct {
	Name        string
	Description string
	Path        string
	Width       int
	Height      int
	Bytes       int64
	Elapsed     time.Duration
	Err         error
}

func (it Item) OK() bool { return it.Err == nil }

type Report struct {
	Theme      string
	OutDir     string
	Items      []Item
	Favicon    *favicon.Result
	FaviconErr error
}

func (r *Report) OK() int {
	n := 0
	for _, it := range r.Items {
		if it.OK() {
			n++
		}
	}
	return n
}

func (r *Report) Failed() []Item {
	var failed []Item
	for _, it := range r.Items {
		if !it.OK() {
			failed = append(failed, it)
		}
	}
	return failed
}

// HasFailures reports failed images or a favicon that could not be written
// at all. A favicon left as PNG is not a failure.
func (r *Report) HasFailures() bool {
	return len(r.Failed()) > 0 || r.FaviconErr != nil
}

type Runner struct {
	OutDir string
	// FontPath overrides the favicon font of the theme.
	FontPath    string
	SkipImages  bool
	SkipFavicon bool
	OnEvent     func(Event)
}

func (r *Runner) emit(ev Event) {
	if r.OnEvent != nil {
		r.OnEvent(ev)
	}
}

// Run renders the theme. Failures of single images are recorded in the
// report and do not stop the run; the returned error is reserved for
// problems that affect the whole run.
func (r *Runner) Run(ctx context.Context, t *theme.Theme) (*Report, error) {
	if err := os.MkdirAll(r.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	rep := &Report{Theme: t.Name, OutDir: r.OutDir}

	var images []theme.ImageSpec
	if !r.SkipImages {
		images = t.Images
	}
	log.RunStart(t.Name, r.OutDir, len(images))

	for i, spec := range images {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		r.emit(Event{Kind: EventStart, Index: i, Total: len(images), Spec: spec})
		item := r.writeImage(t, spec)
		rep.Items = append(rep.Items, item)
		r.emit(Event{Kind: EventDone, Index: i, Total: len(images), Spec: spec, Item: &item})
	}

	if t.Favicon != nil && !r.SkipFavicon {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res, err := r.writeFavicon(t)
		if err != nil {
			rep.FaviconErr = err
			log.Errorf("favicon: %v", err)
		} else {
			rep.Favicon = &res
		}
		r.emit(Event{Kind: EventFavicon})
	}

	log.RunEnd(t.Name, rep.OK(), len(rep.Failed()))
	return rep, nil
}

func (r *Runner) writeImage(t *theme.Theme, spec theme.ImageSpec) Item {
	start := time.Now()
	item := Item{
		Name:        spec.Name,
		Description: spec.Description,
		Path:        filepath.Join(r.OutDir, spec.Name),
		Width:       spec.Width,
		Height:      spec.Height,
	}

	img, overlays, err := RenderImage(t, spec)
	if err != nil {
		item.Err = err
		log.ImageFailed(t.Name, spec.Name, err)
		return item
	}
	rendered := time.Now()

	enc, err := encoder.ForPath(spec.Name, spec.Quality)
	if err == nil {
		item.Bytes, err = encoder.WriteFile(item.Path, enc, img)
	}
	item.Elapsed = time.Since(start)
	if err != nil {
		item.Err = err
		log.ImageFailed(t.Name, spec.Name, err)
		return item
	}

	log.ImageWritten(log.ImageMetrics{
		Theme:    t.Name,
		Name:     spec.Name,
		Format:   enc.Format(),
		Width:    spec.Width,
		Height:   spec.Height,
		SizeKB:   float64(item.Bytes) / 1024,
		RenderMs: float64(rendered.Sub(start).Microseconds()) / 1000,
		EncodeMs: float64(time.Since(rendered).Microseconds()) / 1000,
		Overlays: overlays,
	})
	return item
}

// RenderImage draws the gradient of spec and pastes its pattern and shape
// overlays on top, in that order. It also returns the number of overlays.
func RenderImage(t *theme.Theme, spec theme.ImageSpec) (*image.RGBA, int, error) {
	from, to, err := t.Colors(spec)
	if err != nil {
		return nil, 0, err
	}
	dir, err := raster.ParseDirection(spec.Direction)
	if err != nil {
		return nil, 0, err
	}
	img, err := raster.Gradient(spec.Width, spec.Height, from, to, dir)
	if err != nil {
		return nil, 0, err
	}

	overlays := 0
	if o := spec.Pattern; o != nil {
		c, err := t.Palette.Resolve(o.Color)
		if err != nil {
			return nil, 0, fmt.Errorf("pattern: %w", err)
		}
		raster.CodePattern(img, c, o.Opacity)
		overlays++
	}
	if o := spec.Shapes; o != nil {
		c, err := t.Palette.Resolve(o.Color)
		if err != nil {
			return nil, 0, fmt.Errorf("shapes: %w", err)
		}
		raster.GeometricShapes(img, c, o.Opacity)
		overlays++
	}
	return img, overlays, nil
}

// RenderFavicon draws the theme favicon. A font that cannot be loaded is
// logged and replaced by the vector chevron.
func RenderFavicon(t *theme.Theme, fontPath string) (*image.RGBA, error) {
	spec := t.Favicon
	if spec == nil {
		return nil, fmt.Errorf("theme %q has no favicon", t.Name)
	}
	bg, err := t.Palette.Resolve(spec.Background)
	if err != nil {
		return nil, fmt.Errorf("favicon background: %w", err)
	}
	fg, err := t.Palette.Resolve(spec.Foreground)
	if err != nil {
		return nil, fmt.Errorf("favicon foreground: %w", err)
	}

	if fontPath == "" {
		fontPath = spec.Font
	}
	var face font.Face
	if fontPath != "" {
		face, err = favicon.LoadFace(fontPath, favicon.FontSize(spec.Size))
		if err != nil {
			log.Warnf("favicon font %s unavailable, drawing vector glyph: %v", fontPath, err)
		} else {
			defer face.Close()
		}
	}
	return favicon.Render(spec.Size, bg, fg, face), nil
}

func (r *Runner) writeFavicon(t *theme.Theme) (favicon.Result, error) {
	start := time.Now()
	img, err := RenderFavicon(t, r.FontPath)
	if err != nil {
		return favicon.Result{}, err
	}
	res, err := favicon.Write(r.OutDir, img, t.Favicon.Sizes)
	if err != nil {
		return favicon.Result{}, err
	}

	name, format := favicon.ICOName, "ico"
	if res.Fallback {
		name, format = favicon.PNGName, "png"
		log.Warnf("ICO export failed, kept %s instead: %v", res.PNGPath, res.ICOErr)
	}
	log.ImageWritten(log.ImageMetrics{
		Theme:    t.Name,
		Name:     name,
		Format:   format,
		Width:    t.Favicon.Size,
		Height:   t.Favicon.Size,
		SizeKB:   float64(res.Bytes) / 1024,
		RenderMs: float64(time.Since(start).Microseconds()) / 1000,
		Fallback: res.Fallback,
	})
	return res, nil
}
