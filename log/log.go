package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

const FileName = "themeart_log.txt"

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
	quiet    bool
)

type ImageMetrics struct {
	Theme    string
	Name     string
	Format   string
	Width    int
	Height   int
	SizeKB   float64
	RenderMs float64
	EncodeMs float64
	Overlays int
	Fallback bool
}

// ResolveDir picks the file log directory: -logpath flag first, then
// THEMEART_LOG_PATH. An empty result disables file logging.
func ResolveDir(flagPath string) (string, error) {
	p := flagPath
	if p == "" {
		p = os.Getenv("THEMEART_LOG_PATH")
	}
	if p == "" {
		return "", nil
	}
	if !filepath.IsAbs(p) {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, p), nil
	}
	return p, nil
}

// SetQuiet limits console output to warnings and errors. The log file,
// when enabled, still receives everything.
func SetQuiet(q bool) {
	quiet = q
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// Init sends human-readable logs to console, and additionally appends
// them to Dir()/themeart_log.txt when a directory is set.
func Init(console io.Writer, noColor bool) error {
	logMu.Lock()
	defer logMu.Unlock()

	pid = os.Getpid()

	var cw io.Writer = zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}
	if quiet {
		cw = &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: cw},
			Level:  zerolog.WarnLevel,
		}
	}
	writers := []io.Writer{cw}

	if dir != "" {
		if err := EnsureDir(); err != nil {
			return err
		}
		f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		diagFile = f
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    true,
		})
	}

	diagLog = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Int("pid", pid).Logger()
	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func RunStart(theme, outDir string, images int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("theme", theme).
		Str("out", outDir).
		Int("images", images).
		Msg("run_start")
}

func RunEnd(theme string, ok, failed int) {
	if !logReady {
		return
	}
	ev := diagLog.Info()
	if failed > 0 {
		ev = diagLog.Warn()
	}
	ev.Str("theme", theme).
		Int("ok", ok).
		Int("failed", failed).
		Msg("run_end")
}

func ImageWritten(m ImageMetrics) {
	if !logReady {
		return
	}
	ev := diagLog.Info().
		Str("theme", m.Theme).
		Str("name", m.Name).
		Str("format", m.Format).
		Int("width", m.Width).
		Int("height", m.Height).
		Float64("size_kb", m.SizeKB).
		Float64("render_ms", m.RenderMs).
		Float64("encode_ms", m.EncodeMs)
	if m.Overlays > 0 {
		ev = ev.Int("overlays", m.Overlays)
	}
	if m.Fallback {
		ev = ev.Bool("fallback", true)
	}
	ev.Msg("image_written")
}

func ImageFailed(theme, name string, err error) {
	if !logReady {
		return
	}
	diagLog.Error().
		Str("theme", theme).
		Str("name", name).
		Err(err).
		Msg("image_failed")
}
