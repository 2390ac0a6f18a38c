package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"themeart/analyze"
	"themeart/generate"
	"themeart/optimize"
	"themeart/theme"
)

// reporter prints progress and summaries for a human on stdout. Logs go
// to stderr and the log file separately.
type reporter struct {
	w     io.Writer
	title lipgloss.Style
	dim   lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	warnS lipgloss.Style
}

func newReporter(w io.Writer, color bool) *reporter {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &reporter{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("245")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")),
		warnS: r.NewStyle().Foreground(lipgloss.Color("208")),
	}
}

func (r *reporter) banner(t *theme.Theme) {
	fmt.Fprintln(r.w, r.title.Render("themeart · "+t.Name))
	if t.Description != "" {
		fmt.Fprintln(r.w, r.dim.Render(t.Description))
	}
	fmt.Fprintln(r.w, r.dim.Render(strings.Repeat("─", 40)))
}

func (r *reporter) event(ev generate.Event) {
	switch ev.Kind {
	case generate.EventStart:
		label := ev.Spec.Name
		if ev.Spec.Description != "" {
			label += " (" + ev.Spec.Description + ")"
		}
		fmt.Fprintf(r.w, "[%d/%d] %s %dx%d ", ev.Index+1, ev.Total, label, ev.Spec.Width, ev.Spec.Height)
	case generate.EventDone:
		if ev.Item.OK() {
			fmt.Fprintln(r.w, r.ok.Render(fmt.Sprintf("✓ ok (%s)", kb(ev.Item.Bytes))))
		} else {
			fmt.Fprintln(r.w, r.fail.Render(fmt.Sprintf("✗ error: %v", ev.Item.Err)))
		}
	}
}

func (r *reporter) summary(rep *generate.Report) {
	fmt.Fprintln(r.w, r.dim.Render(strings.Repeat("─", 40)))
	if n := len(rep.Items); n > 0 {
		fmt.Fprintf(r.w, "%d/%d images written to %s\n", rep.OK(), n, rep.OutDir)
	}
	if failed := rep.Failed(); len(failed) > 0 {
		fmt.Fprintln(r.w, r.fail.Render("failed:"))
		for _, it := range failed {
			fmt.Fprintf(r.w, "  - %s: %v\n", it.Name, it.Err)
		}
	}

	switch {
	case rep.FaviconErr != nil:
		fmt.Fprintln(r.w, r.fail.Render(fmt.Sprintf("✗ favicon: %v", rep.FaviconErr)))
	case rep.Favicon != nil && rep.Favicon.Fallback:
		r.warn(fmt.Sprintf("favicon kept as %s (ICO export failed: %v)", rep.Favicon.PNGPath, rep.Favicon.ICOErr))
	case rep.Favicon != nil:
		fmt.Fprintln(r.w, r.ok.Render(fmt.Sprintf("✓ favicon %s (%s)", rep.Favicon.ICOPath, kb(rep.Favicon.Bytes))))
	}
}

func (r *reporter) warn(msg string) {
	fmt.Fprintln(r.w, r.warnS.Render("! "+msg))
}

func (r *reporter) optimizeSummary(rep *optimize.Report, manifest string) {
	for _, f := range rep.Files {
		if f.Err != nil {
			fmt.Fprintln(r.w, r.fail.Render(fmt.Sprintf("✗ %s: %v", f.Name, f.Err)))
			continue
		}
		fmt.Fprintln(r.w, r.ok.Render(fmt.Sprintf("✓ %s (%d variants)", f.Name, len(f.Outputs))))
	}
	fmt.Fprintf(r.w, "%d/%d images optimized, manifest %s\n", len(rep.Files)-rep.Failed(), len(rep.Files), manifest)
}

func (r *reporter) usage(u *analyze.Usage, script string) {
	fmt.Fprintf(r.w, "%d images, %s used, %s unused\n",
		len(u.All),
		r.ok.Render(fmt.Sprint(len(u.Used))),
		r.warnS.Render(fmt.Sprint(len(u.Unused))))
	for _, img := range u.Unused {
		fmt.Fprintln(r.w, r.dim.Render("  - "+img))
	}
	if script != "" {
		fmt.Fprintf(r.w, "cleanup script: %s\n", script)
	}
}

func kb(n int64) string {
	return fmt.Sprintf("%.2f KB", float64(n)/1024)
}
