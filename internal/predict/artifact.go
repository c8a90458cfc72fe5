// Package predict implements the carbon dot toxicity models: feature
// preparation, logistic scoring, and per-feature attribution. The
// functions are pure; model parameters come from JSON artifacts exported
// by the training pipeline.
package predict

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Artifact holds one trained model's parameters and feature metadata.
type Artifact struct {
	ModelName       string             `json:"model_name"`
	FeatureColumns  []string           `json:"feature_columns"`
	CategoricalCols []string           `json:"categorical_cols"`
	NumCols         []string           `json:"num_cols"`
	NumericMedians  map[string]float64 `json:"numeric_medians"`
	FeatureMeans    map[string]float64 `json:"feature_means"`
	Coefficients    map[string]float64 `json:"coefficients"`
	Intercept       float64            `json:"intercept"`
}

// LoadArtifact reads and validates a model artifact from a JSON file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	if len(a.FeatureColumns) == 0 {
		return fmt.Errorf("no feature columns")
	}
	for _, col := range a.FeatureColumns {
		if _, ok := a.Coefficients[col]; !ok {
			return fmt.Errorf("missing coefficient for feature %q", col)
		}
	}
	return nil
}

// prepareFeatures transforms raw input into a row aligned with the
// training columns: numeric values coerced (median fill on missing or
// unparseable), categoricals one-hot encoded, unknown columns zero.
func (a *Artifact) prepareFeatures(input map[string]any) []float64 {
	row := make([]float64, len(a.FeatureColumns))

	numeric := make(map[string]float64, len(a.NumCols))
	for _, col := range a.NumCols {
		v, ok := toFloat(input[col])
		if !ok {
			v = a.NumericMedians[col]
		}
		numeric[col] = v
	}

	oneHot := make(map[string]bool)
	for _, col := range a.CategoricalCols {
		if s, ok := toString(input[col]); ok && s != "" {
			oneHot[col+"_"+s] = true
		}
	}

	for i, col := range a.FeatureColumns {
		if v, ok := numeric[col]; ok {
			row[i] = v
		} else if oneHot[col] {
			row[i] = 1
		}
	}
	return row
}

// score returns the linear model output for a prepared row.
func (a *Artifact) score(row []float64) float64 {
	s := a.Intercept
	for i, col := range a.FeatureColumns {
		s += a.Coefficients[col] * row[i]
	}
	return s
}

// baseScore is the model output at the training feature means, the
// reference point for attributions.
func (a *Artifact) baseScore() float64 {
	s := a.Intercept
	for _, col := range a.FeatureColumns {
		s += a.Coefficients[col] * a.FeatureMeans[col]
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
