package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/prompt"
)

// Custom help styles - heart theme
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(HeartRose).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(HeartBlush).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(HeartRed).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(HeartRose).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(HeartRed).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(WarmGray).
				Italic(true)

	plainStyle = lipgloss.NewStyle()
)

// helpExamples are shown at the end of --help
var helpExamples = []helpEntry{
	{"heartbeatsart run.csv", "Blue artwork saved as run-art.jpg"},
	{"heartbeatsart run.csv art.png -c Red --card --pulse", "Artwork, card and heartbeat track"},
	{"heartbeatsart watch.csv -x ai --prompt-only", "Let the AI find the heart-rate column, then print the prompt"},
}

// helpEntry is one left/right row of a help section
type helpEntry struct {
	left  string
	right string
}

// StyledHelpPrinter creates a custom help printer with Lipgloss styling
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return kong.HelpPrinter(func(options kong.HelpOptions, ctx *kong.Context) error {
		fmt.Fprint(ctx.Stdout, renderHelp(ctx.Model.Name, ctx.Model.Node))
		return nil
	})
}

// renderHelp lays out the help page for the application rooted at node.
func renderHelp(name string, node *kong.Node) string {
	var sb strings.Builder

	sb.WriteString(helpTitleStyle.Render(AppTitle))
	sb.WriteString("\n")
	sb.WriteString(helpDescStyle.Render(AppDescription))
	sb.WriteString("\n")

	writeHelpSection(&sb, "Usage:", []helpEntry{{left: name + " <input.csv> [<output>] [flags]"}}, plainStyle)
	writeHelpSection(&sb, "Arguments:", positionals(node), helpArgStyle)
	writeHelpSection(&sb, "Flags:", flags(node), helpFlagStyle)
	writeHelpSection(&sb, "Colours:", swatches(), plainStyle)
	writeHelpSection(&sb, "Environment:", []helpEntry{
		{config.EnvGeminiAPIKey, "API key for gemini (falls back to " + config.EnvGoogleAPIKey + ")"},
		{config.EnvOpenAIAPIKey, "API key for openai"},
		{config.EnvProvider, "Provider used when --provider is not given"},
	}, helpArgStyle)
	writeHelpSection(&sb, "Examples:", helpExamples, helpDefaultStyle)

	sb.WriteString("\n")
	return sb.String()
}

// writeHelpSection prints entries with the right column aligned.
func writeHelpSection(sb *strings.Builder, title string, entries []helpEntry, style lipgloss.Style) {
	if len(entries) == 0 {
		return
	}

	width := 0
	for _, e := range entries {
		width = max(width, lipgloss.Width(e.left))
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(style.Render(e.left))
		if e.right != "" {
			sb.WriteString(strings.Repeat(" ", width-lipgloss.Width(e.left)+2))
			sb.WriteString(e.right)
		}
		sb.WriteString("\n")
	}
}

func positionals(node *kong.Node) []helpEntry {
	var entries []helpEntry
	for _, arg := range node.Positional {
		entries = append(entries, helpEntry{arg.Summary(), arg.Help})
	}
	return entries
}

func flags(node *kong.Node) []helpEntry {
	entries := []helpEntry{{"-h, --help", "Show context-sensitive help."}}

	for _, f := range node.Flags {
		if f.Name == "help" {
			continue
		}

		left := "--" + f.Name
		if f.Short != 0 {
			left = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			left += "=" + strings.ToUpper(f.PlaceHolder)
		}

		right := f.Help
		// zero and empty defaults say nothing useful
		if f.HasDefault && !f.IsBool() && f.Default != "" && f.Default != "0" {
			right += " " + helpDefaultStyle.Render("(default: "+f.Default+")")
		}

		entries = append(entries, helpEntry{left, right})
	}
	return entries
}

// swatches shows each mood colour in its own hue.
func swatches() []helpEntry {
	entries := make([]helpEntry, len(prompt.Colors))
	for i, c := range prompt.Colors {
		block := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("●")
		entries[i] = helpEntry{string(c), block + " " + c.Hex()}
	}
	return entries
}
