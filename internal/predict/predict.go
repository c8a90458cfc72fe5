package predict

import (
	"fmt"
	"math"
)

// Class labels returned to callers.
const (
	LabelToxic    = "TOXIC"
	LabelNonToxic = "NON-TOXIC"
)

// Prediction is the outcome of one toxicity classification.
type Prediction struct {
	Prediction          int     `json:"prediction"`
	ClassLabel          string  `json:"class_label"`
	ProbabilityToxic    float64 `json:"probability_toxic"`
	ProbabilityNonToxic float64 `json:"probability_non_toxic"`
	Confidence          float64 `json:"confidence"`
	ModelUsed           string  `json:"model_used"`
}

// Predictor serves both model variants: with and without plant family.
type Predictor struct {
	basic  *Artifact
	family *Artifact
}

// NewPredictor creates a predictor from the two loaded artifacts.
func NewPredictor(basic, family *Artifact) *Predictor {
	return &Predictor{basic: basic, family: family}
}

func (p *Predictor) artifact(withFamily bool) (*Artifact, error) {
	if withFamily {
		if p.family == nil {
			return nil, fmt.Errorf("with-family model not loaded")
		}
		return p.family, nil
	}
	if p.basic == nil {
		return nil, fmt.Errorf("without-family model not loaded")
	}
	return p.basic, nil
}

// Predict classifies one sample. Input keys follow the training schema
// (ParticleSize, ZetaPotential, Dose, Time, Solvent, CellType,
// CellOrigin, and Family for the with-family variant).
func (p *Predictor) Predict(input map[string]any, withFamily bool) (*Prediction, error) {
	a, err := p.artifact(withFamily)
	if err != nil {
		return nil, err
	}

	row := a.prepareFeatures(input)
	probToxic := sigmoid(a.score(row))

	pred := 0
	label := LabelNonToxic
	if probToxic >= 0.5 {
		pred = 1
		label = LabelToxic
	}

	return &Prediction{
		Prediction:          pred,
		ClassLabel:          label,
		ProbabilityToxic:    probToxic,
		ProbabilityNonToxic: 1 - probToxic,
		Confidence:          math.Max(probToxic, 1-probToxic),
		ModelUsed:           a.ModelName,
	}, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
