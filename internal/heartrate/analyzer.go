package heartrate

import (
	"errors"
	"math"
)

// ErrEmptySeries is returned when statistics are requested for no samples.
var ErrEmptySeries = errors.New("heart-rate series is empty")

// Profile holds summary statistics of a series
type Profile struct {
	Count int

	Mean  float64
	Min   float64
	Max   float64
	Range float64 // Max - Min

	// Population standard deviation: squared deviations are divided by
	// Count, not Count-1
	StdDev float64
}

// Analyze computes the summary statistics of s.
func Analyze(s Series) (*Profile, error) {
	if len(s) == 0 {
		return nil, ErrEmptySeries
	}

	profile := &Profile{
		Count: len(s),
		Min:   s[0],
		Max:   s[0],
	}

	var sum float64
	for _, v := range s {
		sum += v
		if v < profile.Min {
			profile.Min = v
		}
		if v > profile.Max {
			profile.Max = v
		}
	}
	profile.Mean = sum / float64(len(s))
	profile.Range = profile.Max - profile.Min

	var sumSquares float64
	for _, v := range s {
		d := v - profile.Mean
		sumSquares += d * d
	}
	profile.StdDev = math.Sqrt(sumSquares / float64(len(s)))

	return profile, nil
}
