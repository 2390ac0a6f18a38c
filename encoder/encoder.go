package encoder

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultJPEGQuality = 90
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

type Encoder interface {
	Encode(w io.Writer, img image.Image) error
	Format() string
}

// ForPath picks an encoder from the file extension. quality only applies
// to JPEG; zero means DefaultJPEGQuality.
func ForPath(path string, quality int) (Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		if quality < 1 || quality > 100 {
			return nil, fmt.Errorf("jpeg quality %d out of range 1-100", quality)
		}
		return JPEG{Quality: quality}, nil
	case ".png":
		return PNG{}, nil
	case ".ico":
		return ICO{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// WriteFile encodes img into a temporary file next to path and renames it
// into place, so a failed encode never leaves a truncated image behind.
// It returns the size of the written file.
func WriteFile(path string, enc Encoder, img image.Image) (int64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := enc.Encode(tmp, img); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("encoding %s: %w", enc.Format(), err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("renaming into place: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}
