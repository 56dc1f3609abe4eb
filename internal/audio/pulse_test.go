package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/heartbeatsart/internal/config"
)

// synthesize collects the whole track for series.
func synthesize(t *testing.T, series []float64, rate int) []float64 {
	t.Helper()
	var samples []float64
	if err := Stream(series, rate, func(beat []float64) error {
		samples = append(samples, beat...)
		return nil
	}); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	return samples
}

// readWAV returns the samples of a WAV file as float64 with its sample rate.
func readWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	maxVal := float64(audio.IntMaxSignedValue(int(decoder.BitDepth)))
	samples := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float64(s) / maxVal
	}

	return samples, int(decoder.SampleRate), nil
}

func TestBeatInterval(t *testing.T) {
	testCases := []struct {
		bpm  float64
		want float64
	}{
		{60, 1.0},
		{120, 0.5},
		{75, 0.8},
		{10, 2.0}, // clamped to 30
		{300, 60.0 / 220},
		{-5, 2.0},
	}

	for _, tc := range testCases {
		if got := BeatInterval(tc.bpm); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("BeatInterval(%v) = %v, want %v", tc.bpm, got, tc.want)
		}
	}
}

func TestSynthesize_Length(t *testing.T) {
	const rate = 8000
	series := []float64{60, 120, 120}

	samples := synthesize(t, series, rate)

	want := int(math.Ceil(2.0 * rate))
	if len(samples) != want {
		t.Fatalf("len = %d, want %d", len(samples), want)
	}
	if d := Duration(series); math.Abs(d-2.0) > 1e-9 {
		t.Errorf("Duration = %v, want 2.0", d)
	}
}

func TestSynthesize_BeatsAtExpectedTimes(t *testing.T) {
	const rate = 8000
	samples := synthesize(t, []float64{60, 60}, rate)

	// energy in a window, in samples
	energy := func(from, to int) float64 {
		var sum float64
		for _, s := range samples[from:to] {
			sum += s * s
		}
		return sum
	}

	lub1 := energy(0, rate/10)
	lub2 := energy(rate, rate+rate/10)
	gap := energy(rate/2, rate/2+rate/10) // between dub and next lub

	if lub1 == 0 || lub2 == 0 {
		t.Fatalf("expected sound at each beat, got %v and %v", lub1, lub2)
	}
	if gap > lub1/100 {
		t.Errorf("expected near silence between beats: gap=%v lub=%v", gap, lub1)
	}

	dubStart := int(config.PulseDubOffset * rate)
	if dub := energy(dubStart, dubStart+rate/20); dub == 0 {
		t.Error("expected a second heart sound after the first")
	}
}

func TestSynthesize_Bounded(t *testing.T) {
	// fast beats overlap lub and dub; output must stay in range
	samples := synthesize(t, []float64{220, 220, 220, 220}, 44100)
	for i, s := range samples {
		if s < -1 || s > 1 {
			t.Fatalf("sample %d = %v out of range", i, s)
		}
	}
}

func TestStream_Empty(t *testing.T) {
	emit := func([]float64) error {
		t.Error("emit called for an empty track")
		return nil
	}
	if err := Stream(nil, 44100, emit); !errors.Is(err, ErrEmptyTrack) {
		t.Errorf("Stream(nil) error = %v, want ErrEmptyTrack", err)
	}
	if err := Stream([]float64{70}, 0, emit); !errors.Is(err, ErrEmptyTrack) {
		t.Errorf("Stream with zero rate error = %v, want ErrEmptyTrack", err)
	}
}

func TestStream_ChunksStayBeatSized(t *testing.T) {
	const rate = 8000

	// a day of 1 Hz samples; the whole track would be ~70M samples
	series := make([]float64, 86400)
	for i := range series {
		series[i] = 60 + float64(i%40)
	}

	longest := int(math.Ceil(BeatInterval(config.PulseMinBPM)*rate)) + 2
	var total, beats int
	var first []float64

	err := Stream(series, rate, func(beat []float64) error {
		if len(beat) > longest {
			return fmt.Errorf("beat %d has %d samples, want at most %d", beats, len(beat), longest)
		}
		if first == nil {
			first = beat
		} else if &beat[0] != &first[0] {
			return fmt.Errorf("beat %d uses a fresh buffer", beats)
		}
		total += len(beat)
		beats++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if beats != len(series) {
		t.Errorf("emitted %d beats, want %d", beats, len(series))
	}
	if want := int(math.Ceil(Duration(series) * rate)); total != want {
		t.Errorf("total = %d samples, want %d", total, want)
	}
}

func TestStream_EmitErrorStops(t *testing.T) {
	stop := errors.New("disk full")
	calls := 0

	err := Stream([]float64{70, 70, 70}, 8000, func([]float64) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("error = %v, want %v", err, stop)
	}
	if calls != 1 {
		t.Errorf("emit called %d times after failing, want 1", calls)
	}
}

func TestWritePulse_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.wav")
	series := []float64{72, 75, 80}

	if err := WritePulse(path, series); err != nil {
		t.Fatalf("WritePulse failed: %v", err)
	}

	samples, rate, err := readWAV(path)
	if err != nil {
		t.Fatalf("readWAV failed: %v", err)
	}
	if rate != config.PulseSampleRate {
		t.Errorf("sample rate = %d, want %d", rate, config.PulseSampleRate)
	}

	want := synthesize(t, series, config.PulseSampleRate)
	if len(samples) != len(want) {
		t.Fatalf("read %d samples, want %d", len(samples), len(want))
	}

	// 16-bit quantisation
	for i := range want {
		if math.Abs(samples[i]-want[i]) > 1.0/16000 {
			t.Fatalf("sample %d = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestWritePulse_KeepsMostRecentBeats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.wav")

	// 50 slow beats followed by 4 fast ones
	series := make([]float64, 0, 54)
	for range 50 {
		series = append(series, 30)
	}
	series = append(series, 120, 120, 120, 120)

	if err := writePulse(path, series, 4); err != nil {
		t.Fatalf("writePulse failed: %v", err)
	}

	samples, _, err := readWAV(path)
	if err != nil {
		t.Fatalf("readWAV failed: %v", err)
	}
	if want := int(math.Ceil(2.0 * config.PulseSampleRate)); len(samples) != want {
		t.Errorf("read %d samples, want %d (four beats at 120 BPM)", len(samples), want)
	}
}

func TestWritePulse_Empty(t *testing.T) {
	err := WritePulse(filepath.Join(t.TempDir(), "empty.wav"), nil)
	if !errors.Is(err, ErrEmptyTrack) {
		t.Errorf("error = %v, want ErrEmptyTrack", err)
	}
}

func TestWritePulse_BadPath(t *testing.T) {
	err := WritePulse(filepath.Join(t.TempDir(), "missing", "pulse.wav"), []float64{70})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}
