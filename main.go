package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"themeart/analyze"
	"themeart/doctor"
	"themeart/generate"
	"themeart/log"
	"themeart/optimize"
	"themeart/shutdown"
	"themeart/theme"
)

var version = "dev"

const defaultOutDir = "img"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "Warning: could not read .env: %v\n", err)
	}

	cmd := "gradient"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "gradient", "geek":
		return runTheme(cmd, args, false, stdout, stderr)
	case "favicon":
		return runTheme("geek", args, true, stdout, stderr)
	case "optimize":
		return runOptimize(args, stdout, stderr)
	case "analyze":
		return runAnalyze(args, stdout, stderr)
	case "themes":
		return runThemes(stdout, stderr)
	case "doctor":
		return runDoctor(args, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "themeart %s\n", version)
		return 0
	case "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmd)
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: themeart [command] [flags]

Commands:
  gradient   render the gradient background theme (default)
  geek       render the geek theme with overlays and favicon
  favicon    render only the favicon of a theme
  optimize   produce responsive JPEG variants of img/original
  analyze    list images no page references
  themes     list built-in themes
  doctor     check output directory, themes, font and ICO export
  version    print version

Run "themeart <command> -h" for the flags of a command.
`)
}

type commonFlags struct {
	logPath *string
	verbose *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		logPath: fs.String("logpath", "", "log directory (default: $THEMEART_LOG_PATH, empty disables file logging)"),
		verbose: fs.Bool("v", false, "show info logs on the console"),
	}
}

// setupLogging resolves the log directory and starts the logger. Failures
// only disable logging.
func setupLogging(cf commonFlags, stderr io.Writer) {
	dir, err := log.ResolveDir(*cf.logPath)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to resolve log directory: %v\n", err)
		dir = ""
	}
	log.SetDir(dir)
	log.SetQuiet(!*cf.verbose)
	if err := log.Init(stderr, !isTerminal(stderr)); err != nil {
		fmt.Fprintf(stderr, "Warning: could not init logging: %v\n", err)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func runTheme(name string, args []string, faviconOnly bool, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	outFlag := fs.String("out", envOr("THEMEART_OUT_DIR", defaultOutDir), "output directory")
	configFlag := fs.String("config", "", "TOML theme file (overrides the built-in theme)")
	fontFlag := fs.String("font", os.Getenv("THEMEART_FONT"), "TTF/OTF font for the favicon glyph")
	themeFlag := name
	if faviconOnly {
		fs.StringVar(&themeFlag, "theme", name, "theme whose favicon is rendered")
	}
	cf := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	setupLogging(cf, stderr)
	defer log.Close()

	t, err := loadTheme(themeFlag, *configFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if faviconOnly && t.Favicon == nil {
		fmt.Fprintf(stderr, "Error: theme %q has no favicon\n", t.Name)
		return 1
	}

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	out := newReporter(stdout, isTerminal(stdout))
	out.banner(t)

	runner := &generate.Runner{
		OutDir:     *outFlag,
		FontPath:   *fontFlag,
		SkipImages: faviconOnly,
		OnEvent:    out.event,
	}
	rep, err := runner.Run(ctx, t)
	if err != nil {
		log.Errorf("run %s: %v", t.Name, err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	out.summary(rep)
	if rep.HasFailures() {
		return 1
	}
	return 0
}

func loadTheme(name, file string) (*theme.Theme, error) {
	if file != "" {
		return theme.Load(file)
	}
	return theme.Builtin(name)
}

func runOptimize(args []string, stdout, stderr io.Writer) int {
	def := optimize.DefaultConfig()
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inFlag := fs.String("in", def.Input, "directory with original images")
	outFlag := fs.String("out", envOr("THEMEART_OUT_DIR", def.Output), "output directory")
	qualityFlag := fs.Int("quality", def.Quality, "JPEG quality (1-100)")
	cf := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *qualityFlag < 1 || *qualityFlag > 100 {
		fmt.Fprintf(stderr, "Error: quality %d out of range 1-100\n", *qualityFlag)
		return 2
	}

	setupLogging(cf, stderr)
	defer log.Close()

	cfg := def
	cfg.Input, cfg.Output, cfg.Quality = *inFlag, *outFlag, *qualityFlag

	out := newReporter(stdout, isTerminal(stdout))
	rep, err := optimize.Run(cfg)
	if errors.Is(err, optimize.ErrNoInput) {
		out.warn(err.Error())
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	out.optimizeSummary(rep, filepath.Join(cfg.Output, optimize.ManifestName))
	if rep.Failed() > 0 {
		return 1
	}
	return 0
}

func runAnalyze(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rootFlag := fs.String("root", ".", "site root")
	imgFlag := fs.String("img", "img", "image directory, relative to the root")
	scriptFlag := fs.String("script", filepath.Join("scripts", "cleanup_unused_images.sh"), "cleanup script to write, relative to the root (empty to skip)")
	cf := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	setupLogging(cf, stderr)
	defer log.Close()

	u, err := analyze.Analyze(*rootFlag, *imgFlag, analyze.DefaultSearchPaths)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	script := ""
	if *scriptFlag != "" && len(u.Unused) > 0 {
		script = filepath.Join(*rootFlag, *scriptFlag)
		if err := analyze.WriteCleanupScript(script, u.Unused); err != nil {
			fmt.Fprintf(stderr, "Error: writing cleanup script: %v\n", err)
			return 1
		}
		log.Infof("cleanup script written to %s", script)
	}
	newReporter(stdout, isTerminal(stdout)).usage(u, script)
	return 0
}

func runThemes(stdout, stderr io.Writer) int {
	for _, name := range theme.Names() {
		t, err := theme.Builtin(name)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "%-10s %s (%d images", name, t.Description, len(t.Images))
		if t.Favicon != nil {
			fmt.Fprint(stdout, ", favicon")
		}
		fmt.Fprintln(stdout, ")")
	}
	return 0
}

func runDoctor(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outFlag := fs.String("out", envOr("THEMEART_OUT_DIR", defaultOutDir), "output directory")
	configFlag := fs.String("config", "", "TOML theme file to validate")
	fontFlag := fs.String("font", os.Getenv("THEMEART_FONT"), "TTF/OTF font for the favicon glyph")
	logPathFlag := fs.String("logpath", "", "log directory (default: $THEMEART_LOG_PATH)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logDir, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	return doctor.Run(stdout, doctor.Options{
		OutDir:     *outFlag,
		ConfigFile: *configFlag,
		FontPath:   *fontFlag,
		LogDir:     logDir,
	})
}
