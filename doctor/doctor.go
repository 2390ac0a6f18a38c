package doctor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"themeart/encoder"
	"themeart/favicon"
	"themeart/log"
	"themeart/palette"
	"themeart/theme"
)

type Options struct {
	OutDir string
	// ConfigFile is an optional TOML theme checked next to the built-ins.
	ConfigFile string
	FontPath   string
	LogDir     string
}

// Run executes the environment checks and returns an exit code (0=all pass, 1=any fail).
func Run(w io.Writer, opts Options) int {
	fmt.Fprintln(w, "themeart doctor - environment diagnostics")
	fmt.Fprintln(w, "=========================================")

	checks := []struct {
		title string
		run   func(io.Writer, Options) bool
	}{
		{"Output directory", checkOutDir},
		{"Themes", checkThemes},
		{"Favicon font", checkFont},
		{"ICO export", checkICO},
		{"Log directory", checkLogDir},
	}

	allPass := true
	for i, c := range checks {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(checks), c.title)
		if !c.run(w, opts) {
			allPass = false
		}
	}

	fmt.Fprintln(w)
	if allPass {
		fmt.Fprintln(w, "All checks passed!")
		return 0
	}
	fmt.Fprintln(w, "Some checks failed. See details above.")
	return 1
}

func checkOutDir(w io.Writer, opts Options) bool {
	if err := writable(opts.OutDir); err != nil {
		fmt.Fprintf(w, "  FAIL: %s is not writable: %v\n", opts.OutDir, err)
		return false
	}
	fmt.Fprintf(w, "  PASS: %s is writable\n", opts.OutDir)
	return true
}

// writable creates dir if needed and probes it with a temp file.
func writable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".themeart-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func checkThemes(w io.Writer, opts Options) bool {
	ok := true
	for _, name := range theme.Names() {
		t, err := theme.Builtin(name)
		if err != nil {
			fmt.Fprintf(w, "  FAIL: built-in theme %s: %v\n", name, err)
			ok = false
			continue
		}
		fmt.Fprintf(w, "  PASS: built-in theme %s (%d images)\n", name, len(t.Images))
	}
	if opts.ConfigFile != "" {
		t, err := theme.Load(opts.ConfigFile)
		if err != nil {
			fmt.Fprintf(w, "  FAIL: %v\n", err)
			return false
		}
		fmt.Fprintf(w, "  PASS: %s (%s, %d images)\n", opts.ConfigFile, t.Name, len(t.Images))
	}
	return ok
}

func checkFont(w io.Writer, opts Options) bool {
	if opts.FontPath == "" {
		fmt.Fprintln(w, "  PASS: no font configured, favicon uses the vector glyph")
		return true
	}
	face, err := favicon.LoadFace(opts.FontPath, favicon.FontSize(favicon.DefaultSize))
	if err != nil {
		fmt.Fprintf(w, "  FAIL: %v\n", err)
		return false
	}
	face.Close()
	fmt.Fprintf(w, "  PASS: %s loads\n", opts.FontPath)
	return true
}

func checkICO(w io.Writer, _ Options) bool {
	geek := palette.Geek()
	bg, err := geek.Resolve("bg_dark")
	if err != nil {
		fmt.Fprintf(w, "  FAIL: %v\n", err)
		return false
	}
	fg, err := geek.Resolve("accent_blue")
	if err != nil {
		fmt.Fprintf(w, "  FAIL: %v\n", err)
		return false
	}
	img := favicon.Render(favicon.DefaultSize, bg, fg, nil)
	var buf bytes.Buffer
	if err := (encoder.ICO{Sizes: encoder.DefaultIconSizes}).Encode(&buf, img); err != nil {
		fmt.Fprintf(w, "  FAIL: ICO encoding: %v\n", err)
		return false
	}
	if n, err := iconCount(buf.Bytes()); err != nil || n != len(encoder.DefaultIconSizes) {
		fmt.Fprintf(w, "  FAIL: ICO output unreadable (%d entries, %v)\n", n, err)
		return false
	}
	fmt.Fprintf(w, "  PASS: %d-size ICO encoded (%d bytes)\n", len(encoder.DefaultIconSizes), buf.Len())
	return true
}

// iconCount reads the image count from an ICONDIR header.
func iconCount(b []byte) (int, error) {
	if len(b) < 6 || b[0] != 0 || b[1] != 0 || b[2] != 1 || b[3] != 0 {
		return 0, fmt.Errorf("bad ICO header")
	}
	return int(b[4]) | int(b[5])<<8, nil
}

func checkLogDir(w io.Writer, opts Options) bool {
	if opts.LogDir == "" {
		fmt.Fprintln(w, "  PASS: file logging disabled")
		return true
	}
	if err := writable(opts.LogDir); err != nil {
		fmt.Fprintf(w, "  FAIL: %s is not writable: %v\n", opts.LogDir, err)
		return false
	}
	fmt.Fprintf(w, "  PASS: logs go to %s\n", filepath.Join(opts.LogDir, log.FileName))
	return true
}
