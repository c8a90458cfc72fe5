package predict

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testArtifact is a small logistic model over two numeric and one
// categorical column, enough to exercise alignment and attribution.
func testArtifact() *Artifact {
	return &Artifact{
		ModelName:       "logreg_test",
		FeatureColumns:  []string{"Dose", "Time", "Solvent_Water", "Solvent_DMSO"},
		CategoricalCols: []string{"Solvent"},
		NumCols:         []string{"Dose", "Time"},
		NumericMedians:  map[string]float64{"Dose": 50, "Time": 24},
		FeatureMeans:    map[string]float64{"Dose": 40, "Time": 24, "Solvent_Water": 0.6, "Solvent_DMSO": 0.3},
		Coefficients:    map[string]float64{"Dose": 0.05, "Time": 0.01, "Solvent_Water": -0.5, "Solvent_DMSO": 0.8},
		Intercept:       -2.5,
	}
}

func TestPredict_ToxicAndNonToxic(t *testing.T) {
	p := NewPredictor(testArtifact(), nil)

	// High dose in DMSO: score = -2.5 + 0.05*100 + 0.01*24 + 0.8 = 3.54
	toxic, err := p.Predict(map[string]any{"Dose": 100.0, "Time": 24.0, "Solvent": "DMSO"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toxic.Prediction != 1 || toxic.ClassLabel != LabelToxic {
		t.Errorf("expected TOXIC, got %+v", toxic)
	}
	if toxic.ProbabilityToxic < 0.9 {
		t.Errorf("expected high toxic probability, got %f", toxic.ProbabilityToxic)
	}

	// Low dose in water: score = -2.5 + 0.05*5 + 0.01*24 - 0.5 = -2.51
	safe, err := p.Predict(map[string]any{"Dose": 5.0, "Time": 24.0, "Solvent": "Water"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if safe.Prediction != 0 || safe.ClassLabel != LabelNonToxic {
		t.Errorf("expected NON-TOXIC, got %+v", safe)
	}
	if math.Abs(safe.ProbabilityToxic+safe.ProbabilityNonToxic-1) > 1e-9 {
		t.Errorf("probabilities must sum to 1")
	}
	if safe.Confidence != safe.ProbabilityNonToxic {
		t.Errorf("confidence should be the winning class probability")
	}
}

func TestPredict_MedianFillAndCoercion(t *testing.T) {
	a := testArtifact()
	p := NewPredictor(a, nil)

	// Missing Dose falls back to the training median; Time arrives as a
	// string, as function-call args sometimes do.
	got, err := p.Predict(map[string]any{"Time": "24", "Solvent": "Water"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, err := p.Predict(map[string]any{"Dose": 50.0, "Time": 24.0, "Solvent": "Water"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProbabilityToxic != want.ProbabilityToxic {
		t.Errorf("median fill mismatch: %f vs %f", got.ProbabilityToxic, want.ProbabilityToxic)
	}
}

func TestPredict_UnknownCategoryAllZero(t *testing.T) {
	p := NewPredictor(testArtifact(), nil)

	unknown, err := p.Predict(map[string]any{"Dose": 50.0, "Time": 24.0, "Solvent": "Ethanol"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	missing, err := p.Predict(map[string]any{"Dose": 50.0, "Time": 24.0}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unknown.ProbabilityToxic != missing.ProbabilityToxic {
		t.Errorf("unseen category should encode as all-zero dummies")
	}
}

func TestPredict_MissingVariant(t *testing.T) {
	p := NewPredictor(testArtifact(), nil)
	if _, err := p.Predict(map[string]any{"Dose": 1.0}, true); err == nil {
		t.Fatal("expected error when with-family model is not loaded")
	}
}

func TestExplain_ContributionsAndOrdering(t *testing.T) {
	a := testArtifact()
	p := NewPredictor(a, nil)

	exp, err := p.Explain(map[string]any{"Dose": 100.0, "Time": 24.0, "Solvent": "DMSO"}, false, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(exp.TopFeatures) != 2 {
		t.Fatalf("expected 2 top features, got %d", len(exp.TopFeatures))
	}
	if len(exp.AllFeatures) != len(a.FeatureColumns) {
		t.Fatalf("expected all %d features, got %d", len(a.FeatureColumns), len(exp.AllFeatures))
	}

	// Dose: 0.05 * (100-40) = 3.0, the dominant contribution.
	if exp.TopFeatures[0].Feature != "Dose" {
		t.Errorf("expected Dose as top feature, got %s", exp.TopFeatures[0].Feature)
	}
	if math.Abs(exp.TopFeatures[0].Contribution-3.0) > 1e-9 {
		t.Errorf("expected Dose contribution 3.0, got %f", exp.TopFeatures[0].Contribution)
	}
	if exp.TopFeatures[0].Impact != "increases risk" {
		t.Errorf("positive contribution should increase risk")
	}

	for i := 1; i < len(exp.AllFeatures); i++ {
		if exp.AllFeatures[i].AbsValue > exp.AllFeatures[i-1].AbsValue {
			t.Errorf("contributions not sorted by magnitude at %d", i)
		}
	}

	// base = intercept + sum(coef*mean) = -2.5 + 2 + 0.24 - 0.3 + 0.24 = -0.32
	if math.Abs(exp.BaseValue-(-0.32)) > 1e-9 {
		t.Errorf("unexpected base value %f", exp.BaseValue)
	}

	if !strings.Contains(exp.Summary, "TOXIC") || !strings.Contains(exp.Summary, "Dose") {
		t.Errorf("summary should name the class and top feature: %q", exp.Summary)
	}
}

func TestExplain_DefaultTopN(t *testing.T) {
	p := NewPredictor(testArtifact(), nil)
	exp, err := p.Explain(map[string]any{"Dose": 10.0}, false, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only 4 features exist, so top is everything.
	if len(exp.TopFeatures) != 4 {
		t.Errorf("expected topN clamped to feature count, got %d", len(exp.TopFeatures))
	}
}

func TestLoadArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	content := `{
		"model_name": "logreg_v1",
		"feature_columns": ["Dose", "Solvent_Water"],
		"categorical_cols": ["Solvent"],
		"num_cols": ["Dose"],
		"numeric_medians": {"Dose": 50},
		"feature_means": {"Dose": 40, "Solvent_Water": 0.5},
		"coefficients": {"Dose": 0.05, "Solvent_Water": -0.5},
		"intercept": -1.0
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ModelName != "logreg_v1" || len(a.FeatureColumns) != 2 {
		t.Errorf("unexpected artifact: %+v", a)
	}
}

func TestLoadArtifact_Invalid(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "nope.json")
	if _, err := LoadArtifact(missing); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"feature_columns":["Dose"],"coefficients":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArtifact(bad); err == nil {
		t.Error("expected error for missing coefficient")
	}
}
