package pipeline

import (
	"context"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/heartbeatsart/internal/audio"
	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/prompt"
	"github.com/linuxmatters/heartbeatsart/internal/provider"
)

func runMock(t *testing.T, g *Generator) *Result {
	t.Helper()
	path := writeCSV(t, "time,BPM\n1,70\n2,72\n3,71\n4,69\n5,70\n6,74\n7,76\n8,73\n")
	res, err := g.Run(context.Background(), Request{InputPath: path, Color: prompt.Orange})
	require.NoError(t, err)
	return res
}

func TestSave_AllArtifacts(t *testing.T) {
	rec := &stageRecorder{}
	g := New(provider.NewMockProvider(), Options{
		Synthesizer: prompt.NewSynthesizer(firstWord),
		Progress:    rec.record,
		Card:        config.CardConfig{Title: "Morning Run"},
	})
	res := runMock(t, g)

	dir := t.TempDir()
	out := OutputsFor(res, filepath.Join(dir, "art.png"), true, true, true)
	assert.Equal(t, filepath.Join(dir, "art.jpg"), out.Image, "extension follows the image encoding")
	assert.Equal(t, filepath.Join(dir, "art-card.png"), out.Card)
	assert.Equal(t, filepath.Join(dir, "art-pulse.wav"), out.Pulse)
	assert.Equal(t, filepath.Join(dir, "art.html"), out.Report)

	require.NoError(t, g.Save(context.Background(), res, out))

	raw, err := os.ReadFile(out.Image)
	require.NoError(t, err)
	assert.Equal(t, res.Image.Data, raw)

	f, err := os.Open(out.Card)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, config.CardSize, cfg.Width)

	wf, err := os.Open(out.Pulse)
	require.NoError(t, err)
	defer wf.Close()
	dec := wav.NewDecoder(wf)
	pcm, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, config.PulseSampleRate, int(dec.SampleRate))
	assert.Len(t, pcm.Data, int(math.Ceil(audio.Duration(res.Series)*config.PulseSampleRate)))

	page, err := os.ReadFile(out.Report)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>Morning Run</h1>")
	assert.Contains(t, string(page), `src="art-card.png"`)
	assert.Contains(t, string(page), res.RunID)

	assert.Equal(t, []Stage{StageRead, StageExtract, StagePrompt, StageImage, StageSave}, rec.seen())
	assert.Len(t, out.Paths(), 4)
}

func TestSave_PromptOnlyCannotWriteImage(t *testing.T) {
	g := New(nil, Options{})
	res, err := g.Run(context.Background(), Request{
		InputPath:  writeCSV(t, "BPM\n70\n"),
		Color:      prompt.Blue,
		PromptOnly: true,
	})
	require.NoError(t, err)

	out := OutputsFor(res, filepath.Join(t.TempDir(), "art"), true, true, false)
	assert.Empty(t, out.Image)
	assert.Empty(t, out.Card)
	assert.NotEmpty(t, out.Pulse)
	require.NoError(t, g.Save(context.Background(), res, out))

	err = g.Save(context.Background(), res, Outputs{Card: filepath.Join(t.TempDir(), "c.png")})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestSave_FailureReported(t *testing.T) {
	g := New(provider.NewMockProvider(), Options{})
	res := runMock(t, g)

	missing := filepath.Join(t.TempDir(), "no", "such", "dir")
	err := g.Save(context.Background(), res, Outputs{
		Image: filepath.Join(missing, "art.jpg"),
		Pulse: filepath.Join(t.TempDir(), "pulse.wav"),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "writing image")
}

func TestSave_CancelledContext(t *testing.T) {
	g := New(provider.NewMockProvider(), Options{})
	res := runMock(t, g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Save(ctx, res, Outputs{Pulse: filepath.Join(t.TempDir(), "pulse.wav")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputsFor_DefaultsToInputName(t *testing.T) {
	res := &Result{
		Request: Request{InputPath: filepath.Join("data", "run.csv")},
		Image:   &provider.Image{MIMEType: "image/png"},
	}

	out := OutputsFor(res, "", false, false, true)
	assert.Equal(t, filepath.Join("data", "run-art.png"), out.Image)
	assert.Empty(t, out.Card)
	assert.Empty(t, out.Pulse)
	assert.Equal(t, filepath.Join("data", "run-art.html"), out.Report)
}

func TestSummary(t *testing.T) {
	g := New(provider.NewMockProvider(), Options{Synthesizer: prompt.NewSynthesizer(firstWord)})
	res := runMock(t, g)

	s := g.Summary(res, Outputs{Card: "art-card.png", Pulse: "art-pulse.wav"})
	assert.Equal(t, config.CardTitle, s.Title)
	assert.Equal(t, "heart.csv", s.Source)
	assert.Equal(t, "Orange", s.Color)
	assert.Equal(t, "#F97316", s.ColorHex)
	assert.Equal(t, 8, s.Count)
	assert.Equal(t, "low", s.EnergyBand)
	assert.Equal(t, "serene", s.EnergyWord)
	assert.Equal(t, res.Prompt(), s.Prompt)
	require.Len(t, s.Artifacts, 2)
	assert.True(t, s.Artifacts[0].Image)
}

func TestCardInfo(t *testing.T) {
	g := New(provider.NewMockProvider(), Options{
		Synthesizer: prompt.NewSynthesizer(firstWord),
		Card:        config.CardConfig{TextColor: "#102030"},
	})
	res := runMock(t, g)

	info := g.cardInfo(res)
	assert.Equal(t, config.CardTitle, info.Title)
	assert.Equal(t, uint8(0xF9), info.Accent.R)
	assert.Equal(t, uint8(0x10), info.Text.R)
	assert.Equal(t, uint8(0x30), info.Text.B)
	assert.Contains(t, info.Stats, "Orange")
	assert.Contains(t, info.Stats, "serene, smooth, subtle gradients")
}
