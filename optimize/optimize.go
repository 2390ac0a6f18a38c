// Package optimize turns source images into responsive JPEG variants and
// writes a manifest describing them.
package optimize

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"themeart/encoder"
	"themeart/log"
)

// ErrNoInput means the input directory did not exist. It has been created
// so originals can be dropped into it.
var ErrNoInput = errors.New("input directory did not exist")

const ManifestName = "manifest.json"

type Size struct {
	Width  int    `json:"width"`
	Suffix string `json:"suffix"`
}

type Config struct {
	Input   string
	Output  string
	Quality int
	Sizes   []Size
}

func DefaultConfig() Config {
	return Config{
		Input:   filepath.Join("img", "original"),
		Output:  "img",
		Quality: 85,
		Sizes: []Size{
			{Width: 1920, Suffix: "_lg"},
			{Width: 1024, Suffix: "_md"},
			{Width: 640, Suffix: "_sm"},
		},
	}
}

type FileResult struct {
	Name    string
	Outputs []string
	Err     error
}

type Report struct {
	Files    []FileResult
	Manifest Manifest
}

func (r *Report) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

type Manifest struct {
	Version int             `json:"version"`
	Images  []ManifestImage `json:"images"`
	Formats []string        `json:"formats"`
	Sizes   []Size          `json:"sizes"`
}

type ManifestImage struct {
	Name     string           `json:"name"`
	Original string           `json:"original"`
	Formats  []ManifestFormat `json:"formats"`
}

type ManifestFormat struct {
	Format string         `json:"format"`
	Sizes  []ManifestFile `json:"sizes"`
}

type ManifestFile struct {
	Size string `json:"size"`
	File string `json:"file"`
}

var sourceExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".tiff": true, ".tif": true,
}

// Sources lists the image files directly inside dir, sorted by name.
func Sources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && sourceExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Run writes Output/jpeg/<base><suffix>.jpg for every source and size,
// never upscaling, then Output/manifest.json. A file that cannot be
// decoded or written is recorded and skipped.
func Run(cfg Config) (*Report, error) {
	if cfg.Quality == 0 {
		cfg.Quality = 85
	}
	if _, err := os.Stat(cfg.Input); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.Input, 0755); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: created %s, place original images there", ErrNoInput, cfg.Input)
	}

	names, err := Sources(cfg.Input)
	if err != nil {
		return nil, err
	}
	jpegDir := filepath.Join(cfg.Output, "jpeg")
	if err := os.MkdirAll(jpegDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	rep := &Report{}
	for _, name := range names {
		res := optimizeFile(cfg, jpegDir, name)
		if res.Err != nil {
			log.Errorf("optimize %s: %v", name, res.Err)
		} else {
			log.Infof("optimized %s into %d variants", name, len(res.Outputs))
		}
		rep.Files = append(rep.Files, res)
	}

	rep.Manifest = BuildManifest(names, cfg.Sizes)
	if err := writeManifest(filepath.Join(cfg.Output, ManifestName), rep.Manifest); err != nil {
		return rep, err
	}
	return rep, nil
}

func optimizeFile(cfg Config, outDir, name string) FileResult {
	res := FileResult{Name: name}
	f, err := os.Open(filepath.Join(cfg.Input, name))
	if err != nil {
		res.Err = err
		return res
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		res.Err = fmt.Errorf("decoding: %w", err)
		return res
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, size := range cfg.Sizes {
		img := src
		if src.Bounds().Dx() > size.Width {
			img = resize.Resize(uint(size.Width), 0, src, resize.Lanczos3)
		}
		out := filepath.Join(outDir, base+size.Suffix+".jpg")
		if _, err := encoder.WriteFile(out, encoder.JPEG{Quality: cfg.Quality}, img); err != nil {
			res.Err = err
			return res
		}
		res.Outputs = append(res.Outputs, out)
	}
	return res
}

// BuildManifest describes the variants produced for the given sources.
func BuildManifest(names []string, sizes []Size) Manifest {
	m := Manifest{
		Version: 1,
		Images:  []ManifestImage{},
		Formats: []string{"jpeg"},
		Sizes:   sizes,
	}
	for _, name := range names {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		format := ManifestFormat{Format: "jpeg"}
		for _, s := range sizes {
			format.Sizes = append(format.Sizes, ManifestFile{Size: s.Suffix, File: base + s.Suffix + ".jpg"})
		}
		m.Images = append(m.Images, ManifestImage{
			Name:     base,
			Original: name,
			Formats:  []ManifestFormat{format},
		})
	}
	return m
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
