package predict

import (
	"fmt"
	"math"
	"sort"
)

// DefaultTopN is the default number of top contributing features.
const DefaultTopN = 10

// FeatureContribution is one feature's pull on the model output,
// measured against the training-mean baseline.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
	AbsValue     float64 `json:"abs_contribution"`
	Impact       string  `json:"impact"`
}

// Explanation is a prediction plus its per-feature attribution.
type Explanation struct {
	Prediction
	BaseValue   float64               `json:"base_value"`
	TopFeatures []FeatureContribution `json:"top_features"`
	AllFeatures []FeatureContribution `json:"all_features"`
	Summary     string                `json:"explanation"`
}

// Explain classifies a sample and attributes the outcome to individual
// features. For the linear model the attribution is exact:
// coefficient × (value − training mean).
func (p *Predictor) Explain(input map[string]any, withFamily bool, topN int) (*Explanation, error) {
	a, err := p.artifact(withFamily)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	pred, err := p.Predict(input, withFamily)
	if err != nil {
		return nil, err
	}

	row := a.prepareFeatures(input)
	contributions := make([]FeatureContribution, len(a.FeatureColumns))
	for i, col := range a.FeatureColumns {
		c := a.Coefficients[col] * (row[i] - a.FeatureMeans[col])
		impact := "decreases risk"
		if c > 0 {
			impact = "increases risk"
		}
		contributions[i] = FeatureContribution{
			Feature:      col,
			Value:        row[i],
			Contribution: c,
			AbsValue:     math.Abs(c),
			Impact:       impact,
		}
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].AbsValue > contributions[j].AbsValue
	})

	if topN > len(contributions) {
		topN = len(contributions)
	}
	top := contributions[:topN]

	summary := ""
	if len(top) > 0 {
		summary = fmt.Sprintf(
			"The model predicts %s with %.1f%% confidence. The most important factor is %s (contribution: %.3f), which %s.",
			pred.ClassLabel, pred.Confidence*100, top[0].Feature, top[0].Contribution, top[0].Impact,
		)
	}

	return &Explanation{
		Prediction:  *pred,
		BaseValue:   a.baseScore(),
		TopFeatures: top,
		AllFeatures: contributions,
		Summary:     summary,
	}, nil
}
