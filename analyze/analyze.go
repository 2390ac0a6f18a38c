// Package analyze finds which images of a site are referenced from its
// pages, layouts and config, and which can be removed.
package analyze

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".ico": true,
}

// DefaultSearchPaths are the Jekyll locations that may reference images.
var DefaultSearchPaths = []string{"_posts", "_layouts", "_includes", "_videos", ".", "_config.yml"}

var skipDirs = map[string]bool{".git": true, "node_modules": true}

// scriptHeader starts every cleanup script. Files beginning with it are not
// scanned, or a second run would count the images it removes as used.
const scriptHeader = "#!/bin/bash\n# Generated by themeart analyze: removes images that no page references.\n"

const extGroup = `\.(?:jpg|jpeg|png|gif|webp|ico)`

var refPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)header-img:\s*["']?([^"'\s]+` + extGroup + `)`),
	regexp.MustCompile(`(?i)background-image:\s*url\(['"]?([^'")]+` + extGroup + `)`),
	regexp.MustCompile(`(?i)src=["']([^"']+` + extGroup + `)`),
	regexp.MustCompile(`(?i)(/?img/[^\s"'<>]+` + extGroup + `)`),
}

type Usage struct {
	All    []string
	Used   []string
	Unused []string
}

// Analyze lists every image under root/imgDir and marks the ones that are
// referenced from files in searchPaths (relative to root). Paths in the
// result are slash-separated and relative to root, e.g. "img/post-bg.jpg".
func Analyze(root, imgDir string, searchPaths []string) (*Usage, error) {
	all, err := collectImages(root, imgDir)
	if err != nil {
		return nil, err
	}
	byBase := map[string][]string{}
	for _, img := range all {
		byBase[path.Base(img)] = append(byBase[path.Base(img)], img)
	}

	used := map[string]bool{}
	scanned := map[string]bool{}
	for _, sp := range searchPaths {
		p := filepath.Join(root, sp)
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !st.IsDir() {
			scanFile(p, imgDir, byBase, used, scanned)
			continue
		}
		filepath.WalkDir(p, func(fp string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			scanFile(fp, imgDir, byBase, used, scanned)
			return nil
		})
	}

	u := &Usage{All: all}
	for _, img := range all {
		if used[img] {
			u.Used = append(u.Used, img)
		} else {
			u.Unused = append(u.Unused, img)
		}
	}
	return u, nil
}

func collectImages(root, imgDir string) ([]string, error) {
	var all []string
	err := filepath.WalkDir(filepath.Join(root, imgDir), func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && imageExts[strings.ToLower(filepath.Ext(fp))] {
			rel, err := filepath.Rel(root, fp)
			if err != nil {
				return err
			}
			all = append(all, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	sort.Strings(all)
	return all, nil
}

func scanFile(fp, imgDir string, byBase map[string][]string, used, scanned map[string]bool) {
	if scanned[fp] {
		return
	}
	scanned[fp] = true
	data, err := os.ReadFile(fp)
	if err != nil || strings.HasPrefix(string(data), scriptHeader) {
		return
	}
	for _, ref := range References(string(data)) {
		if n := Normalize(ref, imgDir); n != "" {
			used[n] = true
		}
		for _, img := range byBase[path.Base(ref)] {
			used[img] = true
		}
	}
}

// References extracts every image path referenced in content.
func References(content string) []string {
	var refs []string
	for _, re := range refPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			refs = append(refs, strings.TrimSpace(m[1]))
		}
	}
	return refs
}

// Normalize maps "/img/a.jpg", "./img/a.jpg" and "{{site.baseurl}}/img/a.jpg"
// to "img/a.jpg". References outside imgDir yield "".
func Normalize(ref, imgDir string) string {
	prefix := strings.Trim(filepath.ToSlash(imgDir), "/") + "/"
	if i := strings.Index(ref, prefix); i >= 0 {
		return ref[i:]
	}
	return ""
}

// WriteCleanupScript writes an executable bash script that removes the
// given images.
func WriteCleanupScript(file string, unused []string) error {
	var b strings.Builder
	b.WriteString(scriptHeader + "\n")
	b.WriteString("echo 'Removing unused images...'\n\n")
	for _, img := range unused {
		q := shellQuote(img)
		fmt.Fprintf(&b, "rm -f %s\n", q)
		fmt.Fprintf(&b, "echo %s\n", shellQuote("removed: "+img))
	}
	b.WriteString("\necho 'Done.'\n")

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(file, []byte(b.String()), 0755); err != nil {
		return err
	}
	return os.Chmod(file, 0755)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
