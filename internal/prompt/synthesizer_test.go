package prompt

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstPicker always chooses the first candidate
var firstPicker = PickerFunc(func(int) int { return 0 })

func TestCompose_RestingSeries(t *testing.T) {
	sy := NewSynthesizer(firstPicker)

	comp, err := sy.Compose(heartrate.Series{70, 72, 71, 69, 70}, Purple)
	require.NoError(t, err)

	assert.Equal(t, Low, comp.EnergyBand, "mean 70.4 < 75")
	assert.Equal(t, Low, comp.VolatilityBand, "stdDev ~1.02 < 5")
	assert.Equal(t, Small, comp.RangeBand, "range 3 < 20")

	assert.Equal(t, "serene", comp.EnergyWord)
	assert.Equal(t, "smooth", comp.VolatilityWord)
	assert.Equal(t, "subtle gradients", comp.RangeWord)

	want := "An ultra-high quality, abstract image. A fluid and organic masterpiece, dominated by the essence of purple. \n" +
		"  It captures a serene feeling with smooth forms. \n" +
		"  A strong, blown-out flash of pure light radiates from the center, creating subtle gradients. \n" +
		"  The entire composition is hazy and dreamlike. \n" +
		"  There are absolutely no lines, text, or numbers visible. Focus on pure color, light, and emotion."
	assert.Equal(t, want, comp.Text)
}

func TestCompose_AgitatedSeries(t *testing.T) {
	// mean 120, population stdDev 20, range 50
	d := math.Sqrt(175)
	series := heartrate.Series{95, 145, 120 + d, 120 - d}

	comp, err := NewSynthesizer(firstPicker).Compose(series, Red)
	require.NoError(t, err)

	assert.InDelta(t, 120, comp.Profile.Mean, 1e-9)
	assert.InDelta(t, 20, comp.Profile.StdDev, 1e-9)
	assert.InDelta(t, 50, comp.Profile.Range, 1e-9)

	assert.Equal(t, High, comp.EnergyBand)
	assert.Equal(t, High, comp.VolatilityBand)
	assert.Equal(t, Large, comp.RangeBand)
	assert.Contains(t, comp.Text, "essence of red.")
	assert.Contains(t, comp.Text, "vibrant feeling with chaotic forms")
	assert.Contains(t, comp.Text, "creating high-contrast depths.")
}

// TestCompose_Boundaries checks thresholds are exclusive upper bounds:
// a value equal to a bound belongs to the band above.
func TestCompose_Boundaries(t *testing.T) {
	testCases := []struct {
		name           string
		series         heartrate.Series
		wantEnergy     Band
		wantVolatility Band
		wantRange      Band
	}{
		{name: "mean exactly 75", series: heartrate.Series{75}, wantEnergy: Mid, wantVolatility: Low, wantRange: Small},
		{name: "mean just under 75", series: heartrate.Series{74.999}, wantEnergy: Low, wantVolatility: Low, wantRange: Small},
		{name: "mean exactly 110", series: heartrate.Series{110}, wantEnergy: High, wantVolatility: Low, wantRange: Small},
		{name: "stdDev exactly 5", series: heartrate.Series{70, 80}, wantEnergy: Mid, wantVolatility: Mid, wantRange: Small},
		{name: "stdDev exactly 15", series: heartrate.Series{60, 90}, wantEnergy: Mid, wantVolatility: High, wantRange: Large},
		{name: "range exactly 20", series: heartrate.Series{65, 85}, wantEnergy: Mid, wantVolatility: Mid, wantRange: Large},
	}

	sy := NewSynthesizer(firstPicker)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			comp, err := sy.Compose(tc.series, Blue)
			require.NoError(t, err)
			assert.Equal(t, tc.wantEnergy, comp.EnergyBand, "energy")
			assert.Equal(t, tc.wantVolatility, comp.VolatilityBand, "volatility")
			assert.Equal(t, tc.wantRange, comp.RangeBand, "range")
		})
	}
}

func TestBandFor(t *testing.T) {
	testCases := []struct {
		aspect Aspect
		value  float64
		want   Band
	}{
		{Energy, -10, Low},
		{Energy, 74.99, Low},
		{Energy, 75, Mid},
		{Energy, 109.99, Mid},
		{Energy, 110, High},
		{Energy, 220, High},
		{Volatility, 0, Low},
		{Volatility, 5, Mid},
		{Volatility, 15, High},
		{Spread, 19.99, Small},
		{Spread, 20, Large},
	}

	for _, tc := range testCases {
		if got := bandFor(tc.value, scales[tc.aspect]); got != tc.want {
			t.Errorf("bandFor(%s, %.2f) = %s, want %s", tc.aspect, tc.value, got, tc.want)
		}
	}
}

// TestCompose_PickerSeesBandSizes verifies each draw is over the full
// candidate list of the selected band.
func TestCompose_PickerSeesBandSizes(t *testing.T) {
	var sizes []int
	last := PickerFunc(func(n int) int {
		sizes = append(sizes, n)
		return n - 1
	})

	comp, err := NewSynthesizer(last).Compose(heartrate.Series{70, 72, 71, 69, 70}, Green)
	require.NoError(t, err)

	assert.Equal(t, []int{6, 6, 3}, sizes)
	assert.Equal(t, "ethereal", comp.EnergyWord)
	assert.Equal(t, "misty", comp.VolatilityWord)
	assert.Equal(t, "nuanced tones", comp.RangeWord)
}

func TestCompose_OutOfRangePickerFallsBack(t *testing.T) {
	wild := PickerFunc(func(n int) int { return n + 5 })

	comp, err := NewSynthesizer(wild).Compose(heartrate.Series{120}, Orange)
	require.NoError(t, err)
	assert.Equal(t, "vibrant", comp.EnergyWord)
}

// TestSynthesize_RandomStaysInBand runs the default random source many
// times: words vary, but always come from the same three bands.
func TestSynthesize_RandomStaysInBand(t *testing.T) {
	sy := NewSynthesizer(nil)
	series := heartrate.Series{70, 72, 71, 69, 70}

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		comp, err := sy.Compose(series, Yellow)
		require.NoError(t, err)

		assert.Contains(t, Words(Energy, Low), comp.EnergyWord)
		assert.Contains(t, Words(Volatility, Low), comp.VolatilityWord)
		assert.Contains(t, Words(Spread, Small), comp.RangeWord)
		assert.Contains(t, comp.Text, "essence of yellow.")
		seen[comp.EnergyWord] = true
	}

	assert.Greater(t, len(seen), 1, "expected more than one energy word across 200 draws")
}

func TestSynthesize_SeededSourceIsRepeatable(t *testing.T) {
	series := heartrate.Series{88, 96, 104, 91}

	a, err := NewSynthesizer(rand.New(rand.NewPCG(1, 2))).Synthesize(series, Pink)
	require.NoError(t, err)
	b, err := NewSynthesizer(rand.New(rand.NewPCG(1, 2))).Synthesize(series, Pink)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSynthesize_Errors(t *testing.T) {
	sy := NewSynthesizer(firstPicker)

	_, err := sy.Synthesize(nil, Blue)
	assert.True(t, errors.Is(err, heartrate.ErrEmptySeries), "empty series: %v", err)

	_, err = sy.Synthesize(heartrate.Series{}, Blue)
	assert.ErrorIs(t, err, heartrate.ErrEmptySeries)

	_, err = sy.Synthesize(heartrate.Series{70}, Color("Teal"))
	assert.ErrorIs(t, err, ErrUnknownColor)
}

func TestSynthesize_Concurrent(t *testing.T) {
	sy := NewSynthesizer(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(c Color) {
			defer wg.Done()
			text, err := sy.Synthesize(heartrate.Series{60, 80, 100}, c)
			assert.NoError(t, err)
			assert.Contains(t, text, c.Lower())
		}(Colors[i%len(Colors)])
	}
	wg.Wait()
}

func TestVocabulary_Immutable(t *testing.T) {
	words := Words(Energy, High)
	words[0] = "mutated"

	assert.False(t, slices.Contains(Words(Energy, High), "mutated"))
}

func TestVocabulary_EveryBandHasWords(t *testing.T) {
	for aspect, sc := range scales {
		for _, band := range sc.bands {
			words := Words(aspect, band)
			assert.NotEmpty(t, words, "%s/%s", aspect, band)
			for _, w := range words {
				assert.Equal(t, w, strings.TrimSpace(w))
			}
		}
	}
}
