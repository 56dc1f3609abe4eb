package prompt

import (
	"slices"

	"github.com/linuxmatters/heartbeatsart/internal/config"
)

// Band is a named range a statistic falls into.
type Band string

const (
	Low   Band = "low"
	Mid   Band = "mid"
	High  Band = "high"
	Small Band = "small"
	Large Band = "large"
)

// Aspect identifies one of the three descriptive dimensions of a prompt.
type Aspect string

const (
	Energy     Aspect = "energy"     // keyed on mean BPM
	Volatility Aspect = "volatility" // keyed on standard deviation
	Spread     Aspect = "range"      // keyed on max-min
)

// scale is an ordered set of exclusive upper bounds; bands has one more
// entry than bounds, the last catching everything at or above the final bound.
type scale struct {
	bounds []float64
	bands  []Band
}

var scales = map[Aspect]scale{
	Energy: {
		bounds: []float64{config.EnergyLowMax, config.EnergyMidMax},
		bands:  []Band{Low, Mid, High},
	},
	Volatility: {
		bounds: []float64{config.VolatilityLowMax, config.VolatilityMidMax},
		bands:  []Band{Low, Mid, High},
	},
	Spread: {
		bounds: []float64{config.RangeSmallMax},
		bands:  []Band{Small, Large},
	},
}

// bandFor returns the first band whose bound exceeds value.
func bandFor(value float64, sc scale) Band {
	for i, bound := range sc.bounds {
		if value < bound {
			return sc.bands[i]
		}
	}
	return sc.bands[len(sc.bands)-1]
}

// vocabulary maps each aspect's bands to candidate words. Never mutated.
var vocabulary = map[Aspect]map[Band][]string{
	Energy: {
		Low:  {"serene", "tranquil", "gentle", "calm", "peaceful", "ethereal"},
		Mid:  {"balanced", "flowing", "harmonious", "steady", "rhythmic"},
		High: {"vibrant", "energetic", "intense", "powerful", "dynamic", "passionate"},
	},
	Volatility: {
		Low:  {"smooth", "soft", "blended", "seamless", "hazy", "misty"},
		Mid:  {"textured", "layered", "swirling", "interwoven", "undulating"},
		High: {"chaotic", "explosive", "turbulent", "sharp", "fragmented", "crystalline"},
	},
	Spread: {
		Small: {"subtle gradients", "monochromatic whispers", "nuanced tones"},
		Large: {"high-contrast depths", "dramatic tonal shifts", "a broad spectrum of light"},
	},
}

// Words returns a copy of the candidate words for an aspect's band.
func Words(aspect Aspect, band Band) []string {
	return slices.Clone(vocabulary[aspect][band])
}
