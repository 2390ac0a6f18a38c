package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const smallTheme = `
name = "tiny"
description = "test theme"
base_palette = "geek"

[[image]]
name = "a.jpg"
width = 64
height = 32
gradient = ["bg_dark", "accent_blue"]
pattern = { color = "accent_blue", opacity = 0.2 }

[[image]]
name = "b.png"
width = 16
height = 16
gradient = ["#ffffff", "#000000"]
direction = "horizontal"

[favicon]
size = 64
background = "bg_dark"
foreground = "accent_blue"
`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("THEMEART_LOG_PATH", "")
	t.Setenv("THEMEART_OUT_DIR", "")
	t.Setenv("THEMEART_FONT", "")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeTheme(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiny.toml")
	if err := os.WriteFile(path, []byte(smallTheme), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	if code != 0 || !strings.Contains(out, "themeart "+version) {
		t.Errorf("version: code=%d out=%q", code, out)
	}
}

func TestThemesLists(t *testing.T) {
	code, out, _ := runCLI(t, "themes")
	if code != 0 {
		t.Fatalf("code = %d", code)
	}
	for _, want := range []string{"gradient", "geek", "favicon"} {
		if !strings.Contains(out, want) {
			t.Errorf("themes output missing %q: %q", want, out)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "paint")
	if code != 2 {
		t.Errorf("code = %d, want 2", code)
	}
	if !strings.Contains(errOut, `unknown command "paint"`) {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestBadFlag(t *testing.T) {
	if code, _, _ := runCLI(t, "geek", "-nope"); code != 2 {
		t.Errorf("code = %d, want 2", code)
	}
}

func TestThemeFromConfig(t *testing.T) {
	out := t.TempDir()
	code, stdout, stderr := runCLI(t, "geek", "-config", writeTheme(t), "-out", out)
	if code != 0 {
		t.Fatalf("code = %d, stderr = %q", code, stderr)
	}
	for _, name := range []string{"a.jpg", "b.png", "favicon.ico"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "favicon.png")); !os.IsNotExist(err) {
		t.Error("favicon.png should be removed after ICO export")
	}
	for _, want := range []string{"themeart · tiny", "[1/2] a.jpg", "✓ ok (", "2/2 images written", "✓ favicon"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestOutDirFromEnv(t *testing.T) {
	cfg := writeTheme(t)
	out := filepath.Join(t.TempDir(), "site", "img")
	t.Setenv("THEMEART_LOG_PATH", "")
	t.Setenv("THEMEART_OUT_DIR", out)
	var stdout, stderr bytes.Buffer
	if code := run([]string{"gradient", "-config", cfg}, &stdout, &stderr); code != 0 {
		t.Fatalf("code = %d, stderr = %q", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(out, "a.jpg")); err != nil {
		t.Errorf("a.jpg not in THEMEART_OUT_DIR: %v", err)
	}
}

func TestFaviconOnly(t *testing.T) {
	out := t.TempDir()
	code, _, stderr := runCLI(t, "favicon", "-out", out)
	if code != 0 {
		t.Fatalf("code = %d, stderr = %q", code, stderr)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "favicon.ico" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("output = %v, want only favicon.ico", names)
	}
}

func TestFaviconOnlyWithoutFavicon(t *testing.T) {
	code, _, stderr := runCLI(t, "favicon", "-theme", "gradient", "-out", t.TempDir())
	if code != 1 || !strings.Contains(stderr, "has no favicon") {
		t.Errorf("code = %d, stderr = %q", code, stderr)
	}
}

func TestLogFileWritten(t *testing.T) {
	logDir := t.TempDir()
	code, _, stderr := runCLI(t, "gradient", "-config", writeTheme(t), "-out", t.TempDir(), "-logpath", logDir)
	if code != 0 {
		t.Fatalf("code = %d, stderr = %q", code, stderr)
	}
	data, err := os.ReadFile(filepath.Join(logDir, "themeart_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "image_written") {
		t.Errorf("log file missing image_written: %q", data)
	}
	if strings.Contains(stderr, "image_written") {
		t.Errorf("info logs on console without -v: %q", stderr)
	}
}

func TestImageFailureExitCode(t *testing.T) {
	out := t.TempDir()
	// A directory where the image should go makes that image fail.
	if err := os.Mkdir(filepath.Join(out, "a.jpg"), 0755); err != nil {
		t.Fatal(err)
	}
	code, stdout, _ := runCLI(t, "gradient", "-config", writeTheme(t), "-out", out)
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	if !strings.Contains(stdout, "✗ error") || !strings.Contains(stdout, "failed:") {
		t.Errorf("stdout = %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "b.png")); err != nil {
		t.Errorf("run did not continue after failure: %v", err)
	}
}

func TestOptimizeMissingInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "original")
	code, stdout, _ := runCLI(t, "optimize", "-in", in, "-out", dir)
	if code != 0 {
		t.Errorf("code = %d", code)
	}
	if _, err := os.Stat(in); err != nil {
		t.Errorf("input dir not created: %v", err)
	}
	if !strings.Contains(stdout, "place original images there") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestOptimizeBadQuality(t *testing.T) {
	if code, _, _ := runCLI(t, "optimize", "-quality", "0"); code != 2 {
		t.Errorf("code = %d, want 2", code)
	}
}

func TestAnalyze(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"img/used.jpg":   "x",
		"img/unused.png": "x",
		"_posts/a.md":    "header-img: img/used.jpg\n",
		"_config.yml":    "title: test\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	code, stdout, stderr := runCLI(t, "analyze", "-root", root)
	if code != 0 {
		t.Fatalf("code = %d, stderr = %q", code, stderr)
	}
	if !strings.Contains(stdout, "2 images, 1 used, 1 unused") || !strings.Contains(stdout, "img/unused.png") {
		t.Errorf("stdout = %q", stdout)
	}
	script, err := os.ReadFile(filepath.Join(root, "scripts", "cleanup_unused_images.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(script), "img/unused.png") || strings.Contains(string(script), "img/used.jpg") {
		t.Errorf("script = %q", script)
	}
}

func TestDoctor(t *testing.T) {
	code, stdout, _ := runCLI(t, "doctor", "-out", t.TempDir())
	if code != 0 || !strings.Contains(stdout, "All checks passed!") {
		t.Errorf("code = %d, stdout:\n%s", code, stdout)
	}
}
