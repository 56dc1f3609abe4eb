// Package prompt turns a heart-rate series and an emotion colour into an
// image-generation prompt. Summary statistics pick a band per aspect, each
// band contributes one randomly drawn word, and the words fill a fixed
// template.
package prompt

import (
	"fmt"
	"math/rand/v2"

	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
)

// template slots: colour, energy word, volatility word, range descriptor
const template = "An ultra-high quality, abstract image. A fluid and organic masterpiece, dominated by the essence of %s. \n" +
	"  It captures a %s feeling with %s forms. \n" +
	"  A strong, blown-out flash of pure light radiates from the center, creating %s. \n" +
	"  The entire composition is hazy and dreamlike. \n" +
	"  There are absolutely no lines, text, or numbers visible. Focus on pure color, light, and emotion."

// Picker chooses an index in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type Picker interface {
	IntN(n int) int
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(n int) int

// IntN calls f(n).
func (f PickerFunc) IntN(n int) int { return f(n) }

// globalPicker draws from the math/rand/v2 global source, which is safe
// for concurrent use.
type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Composition is a synthesized prompt together with the choices behind it.
type Composition struct {
	Color   Color
	Profile *heartrate.Profile

	EnergyBand     Band
	VolatilityBand Band
	RangeBand      Band

	EnergyWord     string
	VolatilityWord string
	RangeWord      string

	Text string
}

// Synthesizer builds prompts. The zero value is not usable; call
// NewSynthesizer.
type Synthesizer struct {
	picker Picker
}

// NewSynthesizer returns a Synthesizer drawing words with picker, or with
// the global random source when picker is nil. A *rand.Rand passed here is
// not safe for concurrent use; callers sharing one must serialise.
func NewSynthesizer(picker Picker) *Synthesizer {
	if picker == nil {
		picker = globalPicker{}
	}
	return &Synthesizer{picker: picker}
}

// Synthesize returns the prompt text for s in colour c.
func (sy *Synthesizer) Synthesize(s heartrate.Series, c Color) (string, error) {
	comp, err := sy.Compose(s, c)
	if err != nil {
		return "", err
	}
	return comp.Text, nil
}

// Compose classifies s and assembles the prompt. s must be non-empty.
func (sy *Synthesizer) Compose(s heartrate.Series, c Color) (*Composition, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownColor, string(c))
	}

	profile, err := heartrate.Analyze(s)
	if err != nil {
		return nil, err
	}

	comp := &Composition{
		Color:          c,
		Profile:        profile,
		EnergyBand:     bandFor(profile.Mean, scales[Energy]),
		VolatilityBand: bandFor(profile.StdDev, scales[Volatility]),
		RangeBand:      bandFor(profile.Range, scales[Spread]),
	}

	comp.EnergyWord = sy.pick(Energy, comp.EnergyBand)
	comp.VolatilityWord = sy.pick(Volatility, comp.VolatilityBand)
	comp.RangeWord = sy.pick(Spread, comp.RangeBand)

	comp.Text = fmt.Sprintf(template, c.Lower(), comp.EnergyWord, comp.VolatilityWord, comp.RangeWord)

	return comp, nil
}

// pick draws one word uniformly from the band's candidates
func (sy *Synthesizer) pick(aspect Aspect, band Band) string {
	words := vocabulary[aspect][band]
	i := sy.picker.IntN(len(words))
	if i < 0 || i >= len(words) {
		i = 0
	}
	return words[i]
}
