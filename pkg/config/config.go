// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/vidaction/pkg/adapters/filesink"
	"github.com/user/vidaction/pkg/orchestrator"
	"github.com/user/vidaction/pkg/pipeline"
	"github.com/user/vidaction/pkg/ports"
)

// Classifier kinds.
const (
	ClassifierBuiltin = "builtin"
	ClassifierWorker  = "worker"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config represents the full configuration for vidaction.
type Config struct {
	// Input/Output
	Video     string `yaml:"video"`
	OutputDir string `yaml:"output_dir"`
	Summary   string `yaml:"summary"`

	// Sampling
	FPS          int    `yaml:"fps"`
	MaxResults   int    `yaml:"max_results"`
	ResetAfterMs int    `yaml:"reset_after_ms"`
	Rotation     string `yaml:"rotation"`

	Classifier ClassifierConfig `yaml:"classifier"`
	Source     SourceConfig     `yaml:"source"`

	// Display
	Annotate bool        `yaml:"annotate"`
	FontPath string      `yaml:"font_path"`
	Theme    ThemeConfig `yaml:"theme"`

	LogLevel string `yaml:"log_level"`
}

// ClassifierConfig selects and configures the classifier.
type ClassifierConfig struct {
	Kind       string       `yaml:"kind"`
	Model      string       `yaml:"model"`
	Labels     string       `yaml:"labels"`
	NumThreads int          `yaml:"num_threads"`
	Worker     WorkerConfig `yaml:"worker"`
}

// WorkerConfig configures an out-of-process classifier.
type WorkerConfig struct {
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	InputSize int      `yaml:"input_size"`
}

// SourceConfig configures how videos are opened.
type SourceConfig struct {
	FFmpegPath   string `yaml:"ffmpeg_path"`
	FFprobePath  string `yaml:"ffprobe_path"`
	KeyframeSeek bool   `yaml:"keyframe_seek"`
	// SequenceFPS is the frame rate of image-sequence directories.
	SequenceFPS int `yaml:"sequence_fps"`
}

// ThemeConfig represents annotation colors.
type ThemeConfig struct {
	BackgroundColor string `yaml:"background_color"`
	BarColor        string `yaml:"bar_color"`
	TextColor       string `yaml:"text_color"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	d := pipeline.DefaultSampleInput()
	return Config{
		OutputDir: "./out",

		FPS:          d.FPS,
		MaxResults:   d.MaxResults,
		ResetAfterMs: d.ResetAfterMs,
		Rotation:     string(d.Rotation),

		Classifier: ClassifierConfig{
			Kind:       ClassifierBuiltin,
			Model:      "models/motion.yaml",
			Labels:     "models/labels.txt",
			NumThreads: 1,
			Worker: WorkerConfig{
				InputSize: 172,
			},
		},

		Source: SourceConfig{
			SequenceFPS: 30,
		},

		Theme: ThemeConfig{
			BackgroundColor: "#181818",
			BarColor:        "#2e7d32",
			TextColor:       "#ffffff",
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if c.FPS < 1 || c.FPS > 1000 {
		return fmt.Errorf("%w: fps must be between 1 and 1000, got %d", ErrInvalidConfig, c.FPS)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("%w: max_results must be positive, got %d", ErrInvalidConfig, c.MaxResults)
	}
	if c.ResetAfterMs < 0 {
		return fmt.Errorf("%w: reset_after_ms must not be negative, got %d", ErrInvalidConfig, c.ResetAfterMs)
	}
	if _, err := pipeline.ParseRotationPolicy(c.Rotation); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Classifier.NumThreads < 1 {
		return fmt.Errorf("%w: num_threads must be positive, got %d", ErrInvalidConfig, c.Classifier.NumThreads)
	}
	switch c.Classifier.Kind {
	case ClassifierBuiltin:
	case ClassifierWorker:
		if c.Classifier.Worker.Command == "" {
			return fmt.Errorf("%w: worker classifier needs a command", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown classifier kind %q", ErrInvalidConfig, c.Classifier.Kind)
	}
	if c.Source.SequenceFPS < 1 {
		return fmt.Errorf("%w: sequence_fps must be positive, got %d", ErrInvalidConfig, c.Source.SequenceFPS)
	}
	return nil
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 {
		return color.Black
	}

	var r, g, b uint8
	for i, c := range []byte{hex[0], hex[1]} {
		v := hexValue(c)
		if i == 0 {
			r = v << 4
		} else {
			r |= v
		}
	}
	for i, c := range []byte{hex[2], hex[3]} {
		v := hexValue(c)
		if i == 0 {
			g = v << 4
		} else {
			g |= v
		}
	}
	for i, c := range []byte{hex[4], hex[5]} {
		v := hexValue(c)
		if i == 0 {
			b = v << 4
		} else {
			b |= v
		}
	}

	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	rotation, err := pipeline.ParseRotationPolicy(c.Rotation)
	if err != nil {
		rotation = pipeline.RotationIgnore
	}
	return orchestrator.Config{
		VideoPath:    c.Video,
		FPS:          c.FPS,
		ResetAfterMs: c.ResetAfterMs,
		MaxResults:   c.MaxResults,
		Rotation:     rotation,
	}
}

// ClassifierOptions returns the options every classifier is built with.
func (c Config) ClassifierOptions() ports.ClassifierOptions {
	return ports.ClassifierOptions{
		MaxResults: c.MaxResults,
		NumThreads: c.Classifier.NumThreads,
	}
}

// FileSinkOptions returns options for the file display sink.
func (c Config) FileSinkOptions() filesink.Options {
	return filesink.Options{
		Annotate: c.Annotate,
		FontPath: c.FontPath,
		Theme: filesink.Theme{
			Background: parseOptionalColor(c.Theme.BackgroundColor),
			Bar:        parseOptionalColor(c.Theme.BarColor),
			Text:       parseOptionalColor(c.Theme.TextColor),
		},
	}
}

func parseOptionalColor(hex string) color.Color {
	if hex == "" {
		return nil
	}
	return ParseColor(hex)
}
