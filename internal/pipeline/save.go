package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linuxmatters/heartbeatsart/internal/audio"
	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/renderer"
	"github.com/linuxmatters/heartbeatsart/internal/report"
)

// Outputs names the files Save writes. Empty paths are skipped.
type Outputs struct {
	Image  string
	Card   string
	Pulse  string
	Report string
}

// Paths returns the non-empty output paths.
func (o Outputs) Paths() []string {
	var paths []string
	for _, p := range []string{o.Image, o.Card, o.Pulse, o.Report} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// OutputsFor derives output paths from output, or from the input file name
// when output is empty. The image keeps the extension of its encoding.
func OutputsFor(res *Result, output string, card, pulse, html bool) Outputs {
	stem := output
	if stem == "" {
		in := res.Request.InputPath
		stem = strings.TrimSuffix(in, filepath.Ext(in)) + "-art"
	} else {
		stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	}

	var out Outputs
	if res.Image != nil {
		out.Image = stem + res.Image.Extension()
		if card {
			out.Card = stem + "-card.png"
		}
	}
	if pulse {
		out.Pulse = stem + "-pulse.wav"
	}
	if html {
		out.Report = stem + ".html"
	}
	return out
}

// Save writes the requested artifacts concurrently. The first failure
// cancels the remaining writes.
func (g *Generator) Save(ctx context.Context, res *Result, out Outputs) error {
	if (out.Image != "" || out.Card != "") && res.Image == nil {
		return ErrNoImage
	}

	log := g.logger.With(zap.String("run_id", res.RunID))

	return g.stage(log, res, StageSave, func() error {
		eg, egCtx := errgroup.WithContext(ctx)

		if out.Image != "" {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if err := os.WriteFile(out.Image, res.Image.Data, 0o644); err != nil {
					return fmt.Errorf("writing image: %w", err)
				}
				log.Debug("artifact written", zap.String("kind", "image"), zap.String("path", out.Image))
				return nil
			})
		}

		if out.Card != "" {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if err := renderer.WriteCard(out.Card, res.Image.Data, g.cardInfo(res)); err != nil {
					return fmt.Errorf("rendering card: %w", err)
				}
				log.Debug("artifact written", zap.String("kind", "card"), zap.String("path", out.Card))
				return nil
			})
		}

		if out.Pulse != "" {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if err := audio.WritePulse(out.Pulse, res.Series); err != nil {
					return fmt.Errorf("writing pulse track: %w", err)
				}
				log.Debug("artifact written", zap.String("kind", "pulse"), zap.String("path", out.Pulse))
				return nil
			})
		}

		if out.Report != "" {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				page, err := report.HTML(g.Summary(res, out), filepath.Dir(out.Report))
				if err != nil {
					return err
				}
				if err := os.WriteFile(out.Report, page, 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				log.Debug("artifact written", zap.String("kind", "report"), zap.String("path", out.Report))
				return nil
			})
		}

		return eg.Wait()
	})
}

// cardInfo builds the caption for res.
func (g *Generator) cardInfo(res *Result) renderer.CardInfo {
	comp := res.Composition
	info := renderer.CardInfo{
		Title:  g.card.GetTitle(),
		Series: res.Series,
		Accent: color.RGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	}

	r, gr, b := g.card.GetTextColor()
	info.Text = color.RGBA{R: r, G: gr, B: b, A: 0xFF}

	if comp == nil {
		return info
	}

	if ar, ag, ab, err := config.ParseHexColor(comp.Color.Hex()); err == nil {
		info.Accent = color.RGBA{R: ar, G: ag, B: ab, A: 0xFF}
	}
	info.Stats = fmt.Sprintf("%s  ·  %.0f BPM avg  ·  %.0f to %.0f  ·  %s, %s, %s",
		comp.Color, comp.Profile.Mean, comp.Profile.Min, comp.Profile.Max,
		comp.EnergyWord, comp.VolatilityWord, comp.RangeWord)

	return info
}
