// Package report summarises a generation run as Markdown, rendered either
// to a standalone HTML page or to styled terminal output.
package report

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Summary is everything a report shows about one run.
type Summary struct {
	Title     string
	RunID     string
	Generated time.Time

	Source   string
	Extract  string
	Provider string

	Color    string
	ColorHex string

	Count  int
	Mean   float64
	Min    float64
	Max    float64
	Range  float64
	StdDev float64

	EnergyBand     string
	VolatilityBand string
	RangeBand      string
	EnergyWord     string
	VolatilityWord string
	RangeWord      string

	// RhythmPeriod is zero when no dominant cycle was found.
	RhythmPeriod   float64
	RhythmStrength float64

	Prompt string

	Artifacts []Artifact
}

// Artifact is a file written by the run.
type Artifact struct {
	Label string
	Path  string
	Image bool
}

// Markdown renders s as a Markdown document. Image artifacts are linked
// relative to dir so the page works when opened from disk.
func Markdown(s Summary, dir string) string {
	var b strings.Builder

	title := s.Title
	if title == "" {
		title = "Heart Beats Art"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	for _, a := range s.Artifacts {
		if a.Image {
			fmt.Fprintf(&b, "![%s](<%s>)\n\n", a.Label, relative(dir, a.Path))
			break
		}
	}

	b.WriteString("## Run\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Source | `%s` |\n", s.Source)
	fmt.Fprintf(&b, "| Extraction | %s |\n", s.Extract)
	if s.Provider != "" {
		fmt.Fprintf(&b, "| Provider | %s |\n", s.Provider)
	}
	fmt.Fprintf(&b, "| Colour | %s (`%s`) |\n", s.Color, s.ColorHex)
	if !s.Generated.IsZero() {
		fmt.Fprintf(&b, "| Generated | %s |\n", s.Generated.Format(time.RFC1123))
	}
	if s.RunID != "" {
		fmt.Fprintf(&b, "| Run | `%s` |\n", s.RunID)
	}

	b.WriteString("\n## Heart rate\n\n")
	b.WriteString("| Statistic | Value | Band | Word |\n|---|---:|---|---|\n")
	fmt.Fprintf(&b, "| Samples | %d | | |\n", s.Count)
	fmt.Fprintf(&b, "| Mean | %.1f BPM | %s | %s |\n", s.Mean, s.EnergyBand, s.EnergyWord)
	fmt.Fprintf(&b, "| Std. deviation | %.2f | %s | %s |\n", s.StdDev, s.VolatilityBand, s.VolatilityWord)
	fmt.Fprintf(&b, "| Range | %.0f BPM (%.0f to %.0f) | %s | %s |\n", s.Range, s.Min, s.Max, s.RangeBand, s.RangeWord)

	if s.RhythmPeriod > 0 {
		fmt.Fprintf(&b, "\nDominant cycle of **%.1f samples**, carrying %.0f%% of the variation.\n",
			s.RhythmPeriod, s.RhythmStrength*100)
	}

	b.WriteString("\n## Prompt\n\n")
	for _, line := range strings.Split(s.Prompt, "\n") {
		fmt.Fprintf(&b, "> %s\n", strings.TrimSpace(line))
	}

	if len(s.Artifacts) > 0 {
		b.WriteString("\n## Files\n\n")
		for _, a := range s.Artifacts {
			fmt.Fprintf(&b, "- %s: `%s`\n", a.Label, relative(dir, a.Path))
		}
	}

	return b.String()
}

// HTML renders s as a complete HTML page.
func HTML(s Summary, dir string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(s, dir)), &body); err != nil {
		return nil, fmt.Errorf("converting report: %w", err)
	}

	accent := s.ColorHex
	if accent == "" {
		accent = "#3B82F6"
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, pageHeader, html.EscapeString(s.Title), html.EscapeString(accent))
	page.Write(body.Bytes())
	page.WriteString(pageFooter)

	return page.Bytes(), nil
}

// Terminal renders s for a terminal of the given width.
func Terminal(s Summary, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	out, err := r.Render(Markdown(s, ""))
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}

// relative returns path relative to dir when possible.
func relative(dir, path string) string {
	if dir == "" {
		return filepath.ToSlash(path)
	}
	if rel, err := filepath.Rel(dir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

const pageHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; color: #1f2937; }
h1, h2 { color: %s; }
img { width: 100%%; border-radius: 0.75rem; }
table { border-collapse: collapse; }
td, th { padding: 0.3rem 0.8rem; border-bottom: 1px solid #e5e7eb; }
blockquote { margin: 0; padding-left: 1rem; border-left: 4px solid #e5e7eb; color: #4b5563; }
</style>
</head>
<body>
`

const pageFooter = `</body>
</html>
`
