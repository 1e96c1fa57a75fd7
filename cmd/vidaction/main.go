// Package main provides the CLI entry point for vidaction.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/vidaction/pkg/adapters/consolesink"
	"github.com/user/vidaction/pkg/adapters/ffmpegsource"
	"github.com/user/vidaction/pkg/adapters/filesink"
	"github.com/user/vidaction/pkg/adapters/ggrenderer"
	"github.com/user/vidaction/pkg/adapters/logger"
	"github.com/user/vidaction/pkg/adapters/memsource"
	"github.com/user/vidaction/pkg/adapters/motionclassifier"
	"github.com/user/vidaction/pkg/adapters/nullsink"
	"github.com/user/vidaction/pkg/adapters/osfilesystem"
	"github.com/user/vidaction/pkg/adapters/workerclassifier"
	"github.com/user/vidaction/pkg/config"
	"github.com/user/vidaction/pkg/display"
	"github.com/user/vidaction/pkg/labelmap"
	"github.com/user/vidaction/pkg/orchestrator"
	"github.com/user/vidaction/pkg/ports"
	"github.com/user/vidaction/pkg/stages/sample"
	"github.com/user/vidaction/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Classify ClassifyCmd `cmd:"" help:"Classify the actions in a video."`
	Labels   LabelsCmd   `cmd:"" help:"List the labels of a model."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// ClassifyCmd defines the classify subcommand.
type ClassifyCmd struct {
	Video  string `arg:"" help:"Video file or image-sequence directory."`
	Config string `short:"c" help:"YAML configuration file."`

	// Sampling
	FPS          *int    `help:"Frames sampled per second (1-1000, default: 5)."`
	MaxResults   *int    `short:"n" help:"Categories kept per result (default: 3)."`
	ResetAfterMs *int    `name:"reset-after" help:"Milliseconds between classifier resets (default: 15000)."`
	Rotation     *string `help:"Rotation hint policy (ignore, apply)."`

	// Classifier
	Classifier *string  `short:"k" help:"Classifier kind (builtin, worker)."`
	Model      *string  `short:"m" help:"Model asset path."`
	LabelsPath *string  `name:"labels" help:"Label list path."`
	Threads    *int     `short:"t" help:"Inference threads (default: 1)."`
	Worker     *string  `help:"Worker classifier executable."`
	WorkerArgs []string `help:"Extra worker arguments."`
	InputSize  *int     `help:"Frame size sent to the worker (default: 172)."`

	// Source
	FFmpegPath   *string `name:"ffmpeg" help:"Path to ffmpeg."`
	FFprobePath  *string `name:"ffprobe" help:"Path to ffprobe."`
	KeyframeSeek bool    `help:"Seek to the nearest keyframe instead of the exact frame."`
	SequenceFPS  *int    `help:"Frame rate of image-sequence directories (default: 30)."`

	// Output
	Output   *string `short:"o" help:"Directory for preview and detections files (default: ./out)."`
	NoFiles  bool    `help:"Do not write preview and detections files."`
	Annotate bool    `help:"Also write a preview annotated with the categories."`
	FontPath *string `help:"TrueType font for annotations."`
	Summary  *string `short:"s" help:"Output run summary to file (Markdown format)."`

	// Logging
	LogLevel *string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool    `short:"Q" help:"Suppress all log output."`
}

// LabelsCmd lists the labels of a label file.
type LabelsCmd struct {
	Path string `arg:"" optional:"" help:"Label list path (default: models/labels.txt)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("vidaction"),
		kong.Description(l10n.T("Classify human actions in videos with a streaming model.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the classify command.
func (cmd *ClassifyCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	opener, err := newOpener(cfg, fs, renderer, log)
	if err != nil {
		return err
	}

	classifier, err := newClassifier(cfg, log)
	if err != nil {
		return fmt.Errorf("create classifier: %w", err)
	}

	console := consolesink.New(os.Stdout, log)
	var files ports.DisplaySink = nullsink.New()
	if !cmd.NoFiles && cfg.OutputDir != "" {
		files = filesink.New(cfg.OutputDir, fs, renderer, log, cfg.FileSinkOptions())
	}
	dispatcher := display.NewDispatcher(display.Tee(console, files), console, log)

	stage := sample.New(classifier, dispatcher, dispatcher, log)
	orch := orchestrator.New(stage, opener, classifier, dispatcher, log)

	result, runErr := orch.Run(ctx, cfg.ToOrchestratorConfig())
	dispatcher.Close()

	if err := orch.Close(); err != nil {
		log.Warn(l10n.F("Failed to close classifier: %s", err))
	}

	if cfg.Summary != "" && !errors.Is(runErr, orchestrator.ErrSourceUnavailable) {
		writeSummary(cfg, result, fs, log)
	}

	if runErr != nil {
		if result.Cancelled {
			return nil
		}
		return runErr
	}
	if !cmd.NoFiles && cfg.OutputDir != "" {
		log.Info(l10n.F("Output saved to %s", cfg.OutputDir))
	}
	return nil
}

// buildConfig loads the config file, if any, and applies flag overrides.
func (cmd *ClassifyCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	cfg.Video = cmd.Video

	if cmd.FPS != nil {
		cfg.FPS = *cmd.FPS
	}
	if cmd.MaxResults != nil {
		cfg.MaxResults = *cmd.MaxResults
	}
	if cmd.ResetAfterMs != nil {
		cfg.ResetAfterMs = *cmd.ResetAfterMs
	}
	if cmd.Rotation != nil {
		cfg.Rotation = *cmd.Rotation
	}

	if cmd.Classifier != nil {
		cfg.Classifier.Kind = *cmd.Classifier
	}
	if cmd.Model != nil {
		cfg.Classifier.Model = *cmd.Model
	}
	if cmd.LabelsPath != nil {
		cfg.Classifier.Labels = *cmd.LabelsPath
	}
	if cmd.Threads != nil {
		cfg.Classifier.NumThreads = *cmd.Threads
	}
	if cmd.Worker != nil {
		cfg.Classifier.Worker.Command = *cmd.Worker
		if cmd.Classifier == nil {
			cfg.Classifier.Kind = config.ClassifierWorker
		}
	}
	if len(cmd.WorkerArgs) > 0 {
		cfg.Classifier.Worker.Args = cmd.WorkerArgs
	}
	if cmd.InputSize != nil {
		cfg.Classifier.Worker.InputSize = *cmd.InputSize
	}

	if cmd.FFmpegPath != nil {
		cfg.Source.FFmpegPath = *cmd.FFmpegPath
	}
	if cmd.FFprobePath != nil {
		cfg.Source.FFprobePath = *cmd.FFprobePath
	}
	if cmd.KeyframeSeek {
		cfg.Source.KeyframeSeek = true
	}
	if cmd.SequenceFPS != nil {
		cfg.Source.SequenceFPS = *cmd.SequenceFPS
	}

	if cmd.Output != nil {
		cfg.OutputDir = *cmd.Output
	}
	if cmd.Annotate {
		cfg.Annotate = true
	}
	if cmd.FontPath != nil {
		cfg.FontPath = *cmd.FontPath
	}
	if cmd.Summary != nil {
		cfg.Summary = *cmd.Summary
	}
	if cmd.LogLevel != nil {
		cfg.LogLevel = *cmd.LogLevel
	}

	return cfg, nil
}

// newOpener picks an image-sequence opener for directories and ffmpeg otherwise.
func newOpener(cfg config.Config, fs ports.FileSystem, renderer ports.Renderer, log ports.Logger) (ports.SourceOpener, error) {
	if st, err := os.Stat(cfg.Video); err == nil && st.IsDir() {
		return &memsource.Opener{FS: fs, Renderer: renderer, FPS: cfg.Source.SequenceFPS}, nil
	}
	return ffmpegsource.NewOpener(ffmpegsource.Options{
		FFmpegPath:   cfg.Source.FFmpegPath,
		FFprobePath:  cfg.Source.FFprobePath,
		KeyframeSeek: cfg.Source.KeyframeSeek,
	}, renderer, log)
}

func newClassifier(cfg config.Config, log ports.Logger) (ports.Classifier, error) {
	switch cfg.Classifier.Kind {
	case config.ClassifierWorker:
		return workerclassifier.Start(workerclassifier.Options{
			Command:           cfg.Classifier.Worker.Command,
			Args:              cfg.Classifier.Worker.Args,
			ModelPath:         cfg.Classifier.Model,
			LabelPath:         cfg.Classifier.Labels,
			InputSize:         cfg.Classifier.Worker.InputSize,
			ClassifierOptions: cfg.ClassifierOptions(),
		}, log)
	default:
		return motionclassifier.New(cfg.Classifier.Model, cfg.Classifier.Labels, cfg.ClassifierOptions())
	}
}

func writeSummary(cfg config.Config, result orchestrator.RunResult, fs ports.FileSystem, log ports.Logger) {
	builder := summarizer.NewBuilder().
		WithRunResult(result).
		WithClassifier(cfg.Classifier.Kind, cfg.Classifier.NumThreads)
	if st, err := os.Stat(cfg.Video); err == nil && !st.IsDir() {
		builder.WithFileSize(st.Size())
	}

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(func(s string) string { return l10n.T(s) }),
		summarizer.WithVersion(version),
	)
	if err := summarizer.NewWriter(formatter, fs).Write(cfg.Summary, builder.Build()); err != nil {
		log.Warn(l10n.F("Failed to write summary: %s", err))
		return
	}
	log.Info(l10n.F("Summary saved to %s", cfg.Summary))
}

// Run lists the labels one per line with their index.
func (cmd *LabelsCmd) Run() error {
	path := cmd.Path
	if path == "" {
		path = config.Defaults().Classifier.Labels
	}
	labels, err := labelmap.LoadFile(path)
	if err != nil {
		return err
	}
	for i, label := range labels {
		fmt.Printf("%4d  %s\n", i, label)
	}
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("vidaction version %s", version))
	return nil
}
