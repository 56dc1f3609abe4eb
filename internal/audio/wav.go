package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
)

// ErrEmptyTrack is returned when there is nothing to write.
var ErrEmptyTrack = errors.New("no samples to write")

// WritePulse synthesizes series and writes it as a mono 16-bit WAV. Only
// the most recent config.PulseMaxBeats samples are played.
func WritePulse(path string, series []float64) error {
	return writePulse(path, series, config.PulseMaxBeats)
}

func writePulse(path string, series []float64, maxBeats int) error {
	if len(series) == 0 {
		return ErrEmptyTrack
	}
	series = heartrate.Tail(series, maxBeats)

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// 1 = PCM
	enc := wav.NewEncoder(f, config.PulseSampleRate, config.PulseBitDepth, 1, 1)

	maxVal := float64(audio.IntMaxSignedValue(config.PulseBitDepth))
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  config.PulseSampleRate,
		},
		SourceBitDepth: config.PulseBitDepth,
	}

	err = Stream(series, config.PulseSampleRate, func(beat []float64) error {
		buf.Data = buf.Data[:0]
		for _, s := range beat {
			buf.Data = append(buf.Data, int(math.Round(s*maxVal)))
		}
		return enc.Write(buf)
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to write PCM data: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalise WAV header: %w", err)
	}
	return f.Close()
}
