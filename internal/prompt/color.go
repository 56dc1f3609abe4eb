package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Color is one of the seven emotion colours a user can pick.
type Color string

const (
	Blue   Color = "Blue"
	Green  Color = "Green"
	Red    Color = "Red"
	Yellow Color = "Yellow"
	Purple Color = "Purple"
	Orange Color = "Orange"
	Pink   Color = "Pink"
)

// ErrUnknownColor is returned for a label outside the palette.
var ErrUnknownColor = errors.New("unknown colour")

// Colors lists the palette in display order.
var Colors = []Color{Blue, Green, Red, Yellow, Purple, Orange, Pink}

// Swatches used for terminal styling and the card caption
var swatches = map[Color]string{
	Blue:   "#3B82F6",
	Green:  "#22C55E",
	Red:    "#EF4444",
	Yellow: "#EAB308",
	Purple: "#A855F7",
	Orange: "#F97316",
	Pink:   "#EC4899",
}

// ParseColor matches s against the palette, ignoring case and surrounding
// whitespace.
func ParseColor(s string) (Color, error) {
	want := strings.TrimSpace(s)
	for _, c := range Colors {
		if strings.EqualFold(string(c), want) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q (choose one of %s)", ErrUnknownColor, s, ColorNames())
}

// ColorNames returns the palette as a comma-separated list.
func ColorNames() string {
	names := make([]string, len(Colors))
	for i, c := range Colors {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Valid reports whether c is in the palette.
func (c Color) Valid() bool {
	_, ok := swatches[c]
	return ok
}

// Hex returns the colour's swatch as "#RRGGBB".
func (c Color) Hex() string {
	return swatches[c]
}

// Lower returns the label as it appears in prompts.
func (c Color) Lower() string {
	return strings.ToLower(string(c))
}
