package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linuxmatters/heartbeatsart/internal/cli"
	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/logging"
	"github.com/linuxmatters/heartbeatsart/internal/pipeline"
	"github.com/linuxmatters/heartbeatsart/internal/prompt"
	"github.com/linuxmatters/heartbeatsart/internal/provider"
	"github.com/linuxmatters/heartbeatsart/internal/report"
	"github.com/linuxmatters/heartbeatsart/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Input      string `arg:"" name:"input" help:"Heart-rate CSV file" optional:""`
	Output     string `arg:"" name:"output" help:"Output image path (extension follows the image format)" optional:""`
	Color      string `short:"c" help:"Mood colour: ${colors}"`
	Extract    string `short:"x" help:"Heart-rate extraction: local (BPM column) or ai"`
	Provider   string `short:"p" help:"AI provider: gemini, openai or mock"`
	Last       int    `help:"Use only the most recent N samples" default:"0"`
	PromptOnly bool   `help:"Compose and print the prompt without generating an image"`
	Card       bool   `help:"Also render a shareable card with caption and sparkline"`
	Pulse      bool   `help:"Also write a WAV heartbeat track synthesised from the series"`
	Report     bool   `help:"Also write an HTML report of the run"`
	Config     string `help:"YAML config file" type:"path"`
	NoProgress bool   `help:"Disable the progress display"`
	Verbose    bool   `short:"v" help:"Enable debug logging"`
	Version    bool   `help:"Show version information"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("heartbeatsart"),
		kong.Description(cli.AppDescription),
		cliVars(),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if CLI.Input == "" {
		cli.PrintError("<input> is required")
		os.Exit(1)
	}

	// Validate input file exists
	if _, err := os.Stat(CLI.Input); os.IsNotExist(err) {
		cli.PrintError(fmt.Sprintf("input file does not exist: %s", CLI.Input))
		os.Exit(1)
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	cfg.Override(config.Overrides{
		Provider: CLI.Provider,
		Color:    CLI.Color,
		Extract:  CLI.Extract,
		Last:     CLI.Last,
		Verbose:  CLI.Verbose,
	})
	if err := cfg.Validate(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	color, err := prompt.ParseColor(cfg.Generate.Color)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	showProgress := !CLI.NoProgress && !CLI.PromptOnly

	// The progress display owns the terminal, so stderr logging is
	// switched off while it runs. A log file still receives everything.
	var logger *zap.Logger
	if showProgress && cfg.Log.Output == "stderr" {
		logger = zap.NewNop()
	} else if logger, err = logging.New(cfg.Log); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	req := pipeline.Request{
		InputPath:  CLI.Input,
		Color:      color,
		Extract:    cfg.Generate.Extract,
		Last:       cfg.Generate.Last,
		PromptOnly: CLI.PromptOnly,
	}

	var p provider.Provider
	if req.Extract == config.ExtractAI || !req.PromptOnly {
		if p, err = provider.New(cfg.Provider); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		Synthesizer:    prompt.NewSynthesizer(nil),
		Logger:         logger,
		ExtractTimeout: cfg.Provider.ExtractTimeout,
		ImageTimeout:   cfg.Provider.ImageTimeout,
		Card:           cfg.Card,
	}

	if showProgress {
		err = generateWithProgress(ctx, p, opts, req)
	} else {
		err = generate(ctx, p, opts, req)
	}
	if err != nil {
		stop()
		_ = logger.Sync()
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// generate runs without the progress display, printing each stage as it
// completes.
func generate(ctx context.Context, p provider.Provider, opts pipeline.Options, req pipeline.Request) error {
	if !req.PromptOnly {
		opts.Progress = func(stage pipeline.Stage, elapsed time.Duration) {
			cli.PrintSuccess(fmt.Sprintf("%s (%s)", stage, cli.FormatDuration(elapsed)))
		}
	}
	gen := pipeline.New(p, opts)

	res, err := gen.Run(ctx, req)
	if err != nil {
		return err
	}

	out := pipeline.OutputsFor(res, CLI.Output, CLI.Card, CLI.Pulse, CLI.Report)
	if err := gen.Save(ctx, res, out); err != nil {
		return err
	}

	if req.PromptOnly {
		printPromptOnly(gen, res, out)
		return nil
	}

	cli.PrintSwatch(string(res.Request.Color), res.Request.Color.Hex())
	cli.PrintPrompt(res.Prompt())
	printOutputs(out.Paths())
	return nil
}

// printPromptOnly shows the heart-rate summary and prompt for a run that
// stopped before image generation.
func printPromptOnly(gen *pipeline.Generator, res *pipeline.Result, out pipeline.Outputs) {
	cli.PrintBanner()

	rendered, err := report.Terminal(gen.Summary(res, out), 0)
	if err != nil {
		cli.PrintWarning(fmt.Sprintf("rendering summary: %v", err))
		cli.PrintPrompt(res.Prompt())
		return
	}
	fmt.Print(rendered)

	printOutputs(out.Paths())
}

// printOutputs lists the written files with their sizes.
func printOutputs(paths []string) {
	if len(paths) == 0 {
		return
	}
	cli.PrintSection("Files")
	for _, path := range paths {
		cli.PrintInfo("Output", outputLine(path))
	}
}

func outputLine(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	return fmt.Sprintf("%s (%s)", path, cli.FormatBytes(info.Size()))
}

// generateWithProgress runs the pipeline in a goroutine while the
// Bubbletea program shows stage progress.
func generateWithProgress(ctx context.Context, p provider.Provider, opts pipeline.Options, req pipeline.Request) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := pipeline.NumStages
	model := ui.NewModel(total, pipeline.StageRead.String())
	prog := tea.NewProgram(model)

	opts.Progress = func(stage pipeline.Stage, elapsed time.Duration) {
		next := ""
		if int(stage)+1 < total {
			next = (stage + 1).String()
		}
		prog.Send(ui.StageDone{
			Index:   int(stage),
			Total:   total,
			Label:   stage.String(),
			Next:    next,
			Elapsed: elapsed,
		})
	}
	opts.Composed = func(res *pipeline.Result) {
		prog.Send(analysisFor(res))
	}
	gen := pipeline.New(p, opts)

	var runErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		start := time.Now()

		res, err := gen.Run(ctx, req)
		if err != nil {
			runErr = err
			prog.Send(ui.RunFailed{Err: err})
			return
		}
		out := pipeline.OutputsFor(res, CLI.Output, CLI.Card, CLI.Pulse, CLI.Report)
		if err := gen.Save(ctx, res, out); err != nil {
			runErr = err
			prog.Send(ui.RunFailed{Err: err})
			return
		}

		prog.Send(ui.RunComplete{
			Outputs: out.Paths(),
			Prompt:  res.Prompt(),
			Timings: timingsFor(res),
			Total:   time.Since(start),
		})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("running UI: %w", err)
	}

	// ctrl+c inside the UI arrives as a key press, not a signal
	if model.Cancelled() {
		cancel()
	}
	<-done

	if model.Cancelled() && errors.Is(runErr, context.Canceled) {
		return errors.New("cancelled")
	}
	return runErr
}

func analysisFor(res *pipeline.Result) ui.Analysis {
	comp := res.Composition
	a := ui.Analysis{
		Samples:    comp.Profile.Count,
		Mean:       comp.Profile.Mean,
		StdDev:     comp.Profile.StdDev,
		Min:        comp.Profile.Min,
		Max:        comp.Profile.Max,
		Color:      string(comp.Color),
		ColorHex:   comp.Color.Hex(),
		Energy:     comp.EnergyWord,
		Volatility: comp.VolatilityWord,
		Range:      comp.RangeWord,
	}
	if res.Rhythm.Valid {
		a.RhythmPeriod = res.Rhythm.Period
	}
	return a
}

func timingsFor(res *pipeline.Result) []ui.StageTiming {
	var timings []ui.StageTiming
	for s := pipeline.StageRead; int(s) < pipeline.NumStages; s++ {
		if d, ok := res.Timings[s]; ok {
			timings = append(timings, ui.StageTiming{Label: s.String(), Elapsed: d})
		}
	}
	return timings
}

// cliVars supplies the values interpolated into flag help.
func cliVars() kong.Vars {
	return kong.Vars{
		"version": version,
		"colors":  prompt.ColorNames(),
	}
}
