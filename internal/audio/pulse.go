// Package audio turns a heart-rate series into a heartbeat track: one
// synthesized "lub-dub" per recorded sample, played at that sample's rate.
package audio

import (
	"math"

	"github.com/linuxmatters/heartbeatsart/internal/config"
)

// BeatInterval returns the length in seconds of one beat at bpm, after
// clamping bpm to the playable range.
func BeatInterval(bpm float64) float64 {
	bpm = max(config.PulseMinBPM, min(config.PulseMaxBPM, bpm))
	return 60.0 / bpm
}

// Duration returns the length in seconds of the track for series.
func Duration(series []float64) float64 {
	var total float64
	for _, bpm := range series {
		total += BeatInterval(bpm)
	}
	return total
}

// Stream renders series beat by beat, calling emit with each beat's mono
// samples in [-1, 1]. The slice passed to emit is reused between calls, so
// memory stays at one beat however long the series is.
func Stream(series []float64, sampleRate int, emit func(beat []float64) error) error {
	if len(series) == 0 || sampleRate <= 0 {
		return ErrEmptyTrack
	}

	rate := float64(sampleRate)
	total := int(math.Ceil(Duration(series) * rate))

	// longest beat, plus rounding slack for the final one
	buf := make([]float64, int(math.Ceil(BeatInterval(config.PulseMinBPM)*rate))+2)

	var start float64
	pos := 0
	for i, bpm := range series {
		interval := BeatInterval(bpm)

		end := int((start + interval) * rate)
		if i == len(series)-1 {
			end = total
		}
		beat := buf[:end-pos]
		clear(beat)

		addTone(beat, rate, int(start*rate)-pos, config.PulseLubHz, config.PulseLubLength, config.PulseAmplitude)
		addTone(beat, rate, int((start+interval*config.PulseDubOffset)*rate)-pos,
			config.PulseDubHz, config.PulseDubLength, config.PulseAmplitude*0.7)

		for j, v := range beat {
			beat[j] = max(-1, min(1, v))
		}
		if err := emit(beat); err != nil {
			return err
		}

		start += interval
		pos = end
	}

	return nil
}

// addTone mixes a decaying sine burst into samples starting at index first.
func addTone(samples []float64, rate float64, first int, freq, length, amplitude float64) {
	n := int(length * rate)

	for i := 0; i < n; i++ {
		idx := first + i
		if idx >= len(samples) {
			return
		}
		t := float64(i) / rate

		// quick attack, exponential decay
		attack := min(1, float64(i)/(0.005*rate))
		envelope := attack * math.Exp(-5*t/length)

		samples[idx] += amplitude * envelope * math.Sin(2*math.Pi*freq*t)
	}
}
