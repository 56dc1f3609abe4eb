package heartrate

import (
	"math"

	"github.com/argusdusty/gofft"
)

// minRhythmSamples is the shortest series worth a spectrum
const minRhythmSamples = 8

// RhythmProfile describes the strongest slow oscillation in a series,
// e.g. breathing-driven heart-rate variability.
type RhythmProfile struct {
	// Valid is false when the series is too short or perfectly flat
	Valid bool

	// Period of the dominant cycle, in samples
	Period float64

	// Strength is the dominant bin's share of total non-DC power (0.0-1.0)
	Strength float64
}

// Rhythm finds the dominant cycle of s with an FFT over the mean-removed
// series, zero-padded to the next power of two.
func Rhythm(s Series) RhythmProfile {
	if len(s) < minRhythmSamples {
		return RhythmProfile{}
	}

	var sum float64
	for _, v := range s {
		sum += v
	}
	mean := sum / float64(len(s))

	size := nextPowerOfTwo(len(s))
	centered := make([]float64, size)
	for i, v := range s {
		centered[i] = v - mean
	}

	coeffs := gofft.Float64ToComplex128Array(centered)
	if err := gofft.FFT(coeffs); err != nil {
		return RhythmProfile{}
	}

	// Positive frequencies only, skipping DC
	half := size / 2
	var total, peak float64
	peakBin := 0
	for k := 1; k <= half; k++ {
		power := real(coeffs[k])*real(coeffs[k]) + imag(coeffs[k])*imag(coeffs[k])
		total += power
		if power > peak {
			peak = power
			peakBin = k
		}
	}

	if total <= 1e-12 || peakBin == 0 {
		return RhythmProfile{}
	}

	return RhythmProfile{
		Valid:    true,
		Period:   float64(size) / float64(peakBin),
		Strength: peak / total,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << uint(math.Ceil(math.Log2(float64(n))))
}
