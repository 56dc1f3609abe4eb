package cli

import "github.com/charmbracelet/lipgloss"

// Heart colour palette ♥
// Shared heart theme colours for consistent branding across CLI and TUI
var (
	// Core heart colours (dark to bright)
	HeartCrimson = lipgloss.Color("#9F1239") // Dark crimson
	HeartRed     = lipgloss.Color("#E11D48") // Deep red
	HeartRose    = lipgloss.Color("#FB7185") // Rose
	HeartBlush   = lipgloss.Color("#FDA4AF") // Pale pink

	// Accent colours
	WarmGray = lipgloss.Color("#A8A29E") // Stone grey for subtle text
)
