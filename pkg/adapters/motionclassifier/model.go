package motionclassifier

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Architecture is the only architecture name this package can run.
const Architecture = "motion-energy"

// NumFeatures is the length of every weight row.
const NumFeatures = 7

// Feature indices.
const (
	featMeanR = iota
	featMeanG
	featMeanB
	featLumaSpread
	featMotion
	featMotionEMA
	featLumaEMA
)

// ErrInvalidModel is returned when a model asset does not match its labels
// or has out-of-range parameters.
var ErrInvalidModel = errors.New("motionclassifier: invalid model")

// Model is the YAML model asset.
type Model struct {
	Architecture string      `yaml:"architecture"`
	InputSize    int         `yaml:"input_size"` // Square input edge in pixels
	Decay        float32     `yaml:"decay"`      // EMA decay for temporal features, [0,1)
	Weights      [][]float32 `yaml:"weights"`    // One row of NumFeatures per label
	Bias         []float32   `yaml:"bias"`       // One entry per label, optional
}

// LoadModel reads a model asset from a YAML file.
func LoadModel(path string) (Model, error) {
	var m Model

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read model: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse model: %w", err)
	}
	return m, nil
}

// Validate checks the model against the number of labels it will score.
func (m Model) Validate(numLabels int) error {
	if m.Architecture != Architecture {
		return fmt.Errorf("%w: architecture %q, want %q", ErrInvalidModel, m.Architecture, Architecture)
	}
	if m.InputSize <= 0 {
		return fmt.Errorf("%w: input_size must be positive", ErrInvalidModel)
	}
	if m.Decay < 0 || m.Decay >= 1 {
		return fmt.Errorf("%w: decay %.3f outside [0,1)", ErrInvalidModel, m.Decay)
	}
	if len(m.Weights) != numLabels {
		return fmt.Errorf("%w: %d weight rows for %d labels", ErrInvalidModel, len(m.Weights), numLabels)
	}
	for i, row := range m.Weights {
		if len(row) != NumFeatures {
			return fmt.Errorf("%w: weight row %d has %d values, want %d", ErrInvalidModel, i, len(row), NumFeatures)
		}
	}
	if len(m.Bias) != 0 && len(m.Bias) != numLabels {
		return fmt.Errorf("%w: %d bias values for %d labels", ErrInvalidModel, len(m.Bias), numLabels)
	}
	return nil
}
