// Package pipeline runs a generation end to end: read the CSV, obtain the
// heart-rate series, compose the prompt, generate the image, and save the
// artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
	"github.com/linuxmatters/heartbeatsart/internal/logging"
	"github.com/linuxmatters/heartbeatsart/internal/prompt"
	"github.com/linuxmatters/heartbeatsart/internal/provider"
)

// Pipeline errors
var (
	ErrEmptyInput  = errors.New("The selected CSV file is empty.")
	ErrNoProvider  = errors.New("this run needs an AI provider, but none is configured")
	ErrUnknownMode = errors.New("unknown extract mode")
	ErrNoImage     = errors.New("no image was generated for this run")
)

// Stage identifies a step of a run.
type Stage int

const (
	StageRead Stage = iota
	StageExtract
	StagePrompt
	StageImage
	StageSave
)

// NumStages is the number of stages a full run reports.
const NumStages = int(StageSave) + 1

var stageNames = [NumStages]string{
	"Reading CSV",
	"Extracting heart rate",
	"Composing prompt",
	"Generating image",
	"Saving artifacts",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= NumStages {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// ProgressCallback is called after each stage finishes with the time it took
type ProgressCallback func(stage Stage, elapsed time.Duration)

// ComposedCallback receives the run once the series is analysed and the
// prompt composed, before any image is requested.
type ComposedCallback func(res *Result)

// Request describes one generation.
type Request struct {
	InputPath string
	Color     prompt.Color

	// Extract is config.ExtractLocal or config.ExtractAI. Empty means local.
	Extract string

	// Last keeps only the most recent samples when positive.
	Last int

	// PromptOnly stops after composing the prompt.
	PromptOnly bool
}

// Result is the outcome of Run.
type Result struct {
	RunID   string
	Request Request
	Started time.Time

	Series      heartrate.Series
	Composition *prompt.Composition
	Rhythm      heartrate.RhythmProfile

	// Image is nil for prompt-only runs.
	Image    *provider.Image
	Provider string

	Timings map[Stage]time.Duration
}

// Prompt returns the composed prompt text.
func (r *Result) Prompt() string {
	if r.Composition == nil {
		return ""
	}
	return r.Composition.Text
}

// Options configures a Generator. Zero values select defaults.
type Options struct {
	Synthesizer    *prompt.Synthesizer
	Logger         *zap.Logger
	ExtractTimeout time.Duration
	ImageTimeout   time.Duration
	Progress       ProgressCallback
	Composed       ComposedCallback
	Card           config.CardConfig
}

// Generator runs generations against one provider.
type Generator struct {
	provider       provider.Provider
	synth          *prompt.Synthesizer
	logger         *zap.Logger
	extractTimeout time.Duration
	imageTimeout   time.Duration
	progress       ProgressCallback
	composed       ComposedCallback
	card           config.CardConfig
}

// New returns a Generator. p may be nil for local, prompt-only runs.
func New(p provider.Provider, opts Options) *Generator {
	g := &Generator{
		provider:       p,
		synth:          opts.Synthesizer,
		logger:         logging.OrNop(opts.Logger),
		extractTimeout: opts.ExtractTimeout,
		imageTimeout:   opts.ImageTimeout,
		progress:       opts.Progress,
		composed:       opts.Composed,
		card:           opts.Card,
	}
	if g.synth == nil {
		g.synth = prompt.NewSynthesizer(nil)
	}
	if g.extractTimeout <= 0 {
		g.extractTimeout = config.DefaultExtractTimeout
	}
	if g.imageTimeout <= 0 {
		g.imageTimeout = config.DefaultImageTimeout
	}
	return g
}

// Run performs a generation. Cancelling ctx aborts any provider call.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Extract == "" {
		req.Extract = config.ExtractLocal
	}
	if req.Extract != config.ExtractLocal && req.Extract != config.ExtractAI {
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, req.Extract)
	}
	if !req.Color.Valid() {
		return nil, fmt.Errorf("%w %q", prompt.ErrUnknownColor, string(req.Color))
	}
	if g.provider == nil && (req.Extract == config.ExtractAI || !req.PromptOnly) {
		return nil, ErrNoProvider
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Request: req,
		Started: time.Now(),
		Timings: make(map[Stage]time.Duration, NumStages),
	}
	if g.provider != nil {
		res.Provider = g.provider.Name()
	}

	log := g.logger.With(zap.String("run_id", res.RunID))
	log.Info("generation started",
		zap.String("input", req.InputPath),
		zap.String("color", string(req.Color)),
		zap.String("extract", req.Extract),
		zap.String("provider", res.Provider),
		zap.Bool("prompt_only", req.PromptOnly))

	var raw string
	err := g.stage(log, res, StageRead, func() error {
		data, err := os.ReadFile(req.InputPath)
		if err != nil {
			return fmt.Errorf("reading csv: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return ErrEmptyInput
		}
		raw = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = g.stage(log, res, StageExtract, func() error {
		series, err := g.extract(ctx, req.Extract, raw)
		if err != nil {
			return err
		}
		if req.Last > 0 {
			series = heartrate.Tail(series, req.Last)
		}
		res.Series = series
		res.Rhythm = heartrate.Rhythm(series)
		log.Debug("series extracted", zap.Int("samples", len(series)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = g.stage(log, res, StagePrompt, func() error {
		comp, err := g.synth.Compose(res.Series, req.Color)
		if err != nil {
			return err
		}
		res.Composition = comp
		log.Debug("prompt composed",
			zap.String("energy", comp.EnergyWord),
			zap.String("volatility", comp.VolatilityWord),
			zap.String("range", comp.RangeWord))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if g.composed != nil {
		g.composed(res)
	}

	if req.PromptOnly {
		return res, nil
	}

	err = g.stage(log, res, StageImage, func() error {
		imgCtx, cancel := context.WithTimeout(ctx, g.imageTimeout)
		defer cancel()

		img, err := g.provider.GenerateImage(imgCtx, res.Composition.Text)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("image generation timed out after %s: %w", g.imageTimeout, err)
			}
			return err
		}
		res.Image = img
		log.Debug("image generated", zap.Int("bytes", len(img.Data)), zap.String("mime", img.MIMEType))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// extract obtains the series from raw CSV text.
func (g *Generator) extract(ctx context.Context, mode, raw string) (heartrate.Series, error) {
	if mode == config.ExtractLocal {
		return heartrate.ParseCSV(raw)
	}

	extractCtx, cancel := context.WithTimeout(ctx, g.extractTimeout)
	defer cancel()

	series, err := g.provider.ExtractSeries(extractCtx, raw)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("heart-rate extraction timed out after %s: %w", g.extractTimeout, err)
		}
		return nil, err
	}
	return series, nil
}

// stage runs fn, records its duration and reports progress.
func (g *Generator) stage(log *zap.Logger, res *Result, s Stage, fn func() error) error {
	start := time.Now()
	log.Debug("stage started", zap.Stringer("stage", s))

	if err := fn(); err != nil {
		log.Warn("stage failed", zap.Stringer("stage", s), zap.Error(err))
		return err
	}

	elapsed := time.Since(start)
	res.Timings[s] = elapsed
	log.Info("stage complete", zap.Stringer("stage", s), zap.Duration("elapsed", elapsed))

	if g.progress != nil {
		g.progress(s, elapsed)
	}
	return nil
}
