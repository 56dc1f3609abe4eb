package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Heart colour palette ♥
var (
	heartBlush   = lipgloss.Color("#FDA4AF") // Pale pink
	heartRose    = lipgloss.Color("#FB7185") // Rose
	heartRed     = lipgloss.Color("#E11D48") // Deep red
	heartCrimson = lipgloss.Color("#9F1239") // Dark crimson

	// Accent colours
	warmGray = lipgloss.Color("#A8A29E") // Subtle text
)

// StageDone reports that a stage of the run finished
type StageDone struct {
	Index   int // zero-based
	Total   int
	Label   string
	Next    string // label of the stage now running, empty when none
	Elapsed time.Duration
}

// Analysis carries the heart-rate summary once the prompt is composed
type Analysis struct {
	Samples  int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Color    string
	ColorHex string

	Energy     string
	Volatility string
	Range      string

	// RhythmPeriod is zero when no dominant cycle was found
	RhythmPeriod float64
}

// StageTiming is one row of the completion breakdown
type StageTiming struct {
	Label   string
	Elapsed time.Duration
}

// RunComplete signals the run finished and artifacts are saved
type RunComplete struct {
	Outputs []string
	Prompt  string
	Timings []StageTiming
	Total   time.Duration
}

// RunFailed stops the UI; the caller reports the error
type RunFailed struct {
	Err error
}

// quitMsg is sent when it's time to quit after showing completion
type quitMsg struct{}

// Model is the Bubbletea model shown while a generation runs
type Model struct {
	spinner     spinner.Model
	progressBar progress.Model
	summaryBar  progress.Model

	done    int
	total   int
	current string

	analysis *Analysis
	complete *RunComplete
	failed   error

	startTime       time.Time
	width           int
	completionDelay time.Duration
	cancelled       bool
}

// NewModel creates the progress model for a run of total stages, the
// first of which is labelled first.
func NewModel(total int, first string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = lipgloss.NewStyle().Foreground(heartRed)

	// Heart gradient: crimson → blush
	p := progress.New(
		progress.WithGradient(string(heartCrimson), string(heartBlush)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	// Smaller bar for the timing breakdown
	summaryBar := progress.New(
		progress.WithGradient(string(heartCrimson), string(heartBlush)),
		progress.WithWidth(24),
		progress.WithoutPercentage(),
	)

	return &Model{
		spinner:         sp,
		progressBar:     p,
		summaryBar:      summaryBar,
		total:           total,
		current:         first,
		startTime:       time.Now(),
		completionDelay: 1500 * time.Millisecond,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = max(10, min(msg.Width-30, 50))
		return m, nil

	case spinner.TickMsg:
		if m.complete != nil || m.failed != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageDone:
		m.done = msg.Index + 1
		if msg.Total > 0 {
			m.total = msg.Total
		}
		m.current = msg.Next
		return m, nil

	case Analysis:
		m.analysis = &msg
		return m, nil

	case RunComplete:
		m.complete = &msg
		m.done = m.total
		return m, tea.Tick(m.completionDelay, func(time.Time) tea.Msg {
			return quitMsg{}
		})

	case RunFailed:
		m.failed = msg.Err
		return m, tea.Quit

	case quitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.complete != nil {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// Cancelled reports whether the user interrupted the run.
func (m *Model) Cancelled() bool {
	return m.cancelled
}

// View renders the UI
func (m *Model) View() string {
	if m.complete != nil {
		return m.CompletionSummary()
	}
	return m.renderProgress()
}

// CompletionSummary returns the final summary for printing after the
// program exits. Returns empty string if the run did not complete.
func (m *Model) CompletionSummary() string {
	if m.complete == nil {
		return ""
	}
	return m.renderProgress() + "\n" + m.renderComplete()
}

func (m *Model) renderProgress() string {
	var s strings.Builder

	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(heartRose).Render("Heart Beats Art ♥"))
	s.WriteString("\n")

	switch {
	case m.complete != nil:
		s.WriteString(lipgloss.NewStyle().Foreground(heartRed).Render("Complete"))
	case m.current != "":
		s.WriteString(m.spinner.View())
		s.WriteString(" ")
		s.WriteString(lipgloss.NewStyle().Foreground(heartRed).Render(m.current + "..."))
	default:
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Finishing..."))
	}
	s.WriteString("\n\n")

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	s.WriteString("Progress: ")
	s.WriteString(m.progressBar.ViewAs(percent))
	s.WriteString(fmt.Sprintf("  %d/%d", m.done, m.total))
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("Time: %s", formatDuration(time.Since(m.startTime).Truncate(time.Millisecond)))))
	s.WriteString("\n\n")

	m.renderAnalysis(&s)

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(heartRed).
		Padding(1, 2).
		Render(s.String())
}

func (m *Model) renderAnalysis(s *strings.Builder) {
	labelStyle := lipgloss.NewStyle().Faint(true)
	headerStyle := lipgloss.NewStyle().Faint(true).Bold(true)

	s.WriteString(headerStyle.Render("Heart"))
	s.WriteString(" │ ")

	if m.analysis == nil {
		s.WriteString(lipgloss.NewStyle().Faint(true).Italic(true).Render("Analysing..."))
		return
	}

	a := m.analysis
	s.WriteString(fmt.Sprintf("%d samples", a.Samples))
	s.WriteString("  ")
	s.WriteString(labelStyle.Render("Mean:"))
	s.WriteString(fmt.Sprintf(" %.1f BPM", a.Mean))
	s.WriteString("  ")
	s.WriteString(labelStyle.Render("SD:"))
	s.WriteString(fmt.Sprintf(" %.2f", a.StdDev))
	s.WriteString("  ")
	s.WriteString(labelStyle.Render("Range:"))
	s.WriteString(fmt.Sprintf(" %.0f to %.0f", a.Min, a.Max))
	if a.RhythmPeriod > 0 {
		s.WriteString("  ")
		s.WriteString(labelStyle.Render("Cycle:"))
		s.WriteString(fmt.Sprintf(" %.1f", a.RhythmPeriod))
	}
	s.WriteString("\n")

	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(a.ColorHex)).Render("●")
	s.WriteString(headerStyle.Render("Mood "))
	s.WriteString(" │ ")
	s.WriteString(fmt.Sprintf("%s %s  ", swatch, a.Color))
	s.WriteString(lipgloss.NewStyle().Foreground(warmGray).Render(
		fmt.Sprintf("%s · %s · %s", a.Energy, a.Volatility, a.Range)))
}

func (m *Model) renderComplete() string {
	var s strings.Builder

	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(heartRose).Render("✓ Artwork Complete!"))
	s.WriteString("\n\n")

	dimLabel := lipgloss.NewStyle().Faint(true)
	for i, out := range m.complete.Outputs {
		label := "          "
		if i == 0 {
			label = "Output:   "
		}
		s.WriteString(fmt.Sprintf("%s%s\n", dimLabel.Render(label), out))
	}
	if len(m.complete.Outputs) > 0 {
		s.WriteString("\n")
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(heartRed)
	labelStyle := lipgloss.NewStyle().Faint(true)
	valueStyle := lipgloss.NewStyle()

	s.WriteString(headerStyle.Render("Timing"))
	s.WriteString("\n")

	totalMs := m.complete.Total.Milliseconds()
	if totalMs == 0 {
		totalMs = 1
	}
	for _, st := range m.complete.Timings {
		ratio := float64(st.Elapsed.Milliseconds()) / float64(totalMs)
		s.WriteString(fmt.Sprintf("  %s%s (~%2d%%)  %s\n",
			labelStyle.Render(fmt.Sprintf("%-24s", st.Label+":")),
			valueStyle.Render(fmt.Sprintf("~%-6s", formatDuration(st.Elapsed))),
			int(ratio*100),
			m.summaryBar.ViewAs(min(ratio, 1))))
	}
	s.WriteString(fmt.Sprintf("  %s%s",
		labelStyle.Render(fmt.Sprintf("%-24s", "Total time:")),
		lipgloss.NewStyle().Foreground(heartRose).Render(formatDuration(m.complete.Total))))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(heartRose).
		Padding(1, 1).
		Render(s.String()) + "\n"
}

// Helper functions

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
