// Package tools exposes the toxicity models as Gemini function
// declarations and dispatches function calls back into the predictor.
package tools

import (
	"fmt"

	"github.com/vietddude/toxichat/internal/core/domain"
	"github.com/vietddude/toxichat/internal/predict"
)

// Tool names as declared to the model.
const (
	PredictWithFamily    = "predict_toxicity_with_family"
	PredictWithoutFamily = "predict_toxicity_without_family"
	ExplainWithFamily    = "explain_toxicity_with_family"
	ExplainWithoutFamily = "explain_toxicity_without_family"
)

type tool struct {
	decl     domain.FunctionDeclaration
	required []string
	run      func(args map[string]any) (any, error)
}

// Registry is the closed set of functions the chat model may call.
type Registry struct {
	tools map[string]tool
	order []string
}

// NewRegistry builds the registry over a predictor.
func NewRegistry(p *predict.Predictor) *Registry {
	r := &Registry{tools: make(map[string]tool)}

	baseRequired := []string{"ParticleSize", "ZetaPotential", "Dose", "Time", "Solvent", "CellType", "CellOrigin"}
	familyRequired := append(append([]string{}, baseRequired...), "Family")

	r.add(tool{
		decl: domain.FunctionDeclaration{
			Name:        PredictWithoutFamily,
			Description: "Predict carbon dot toxicity (TOXIC or NON-TOXIC) from synthesis and assay parameters, without the plant family.",
			Parameters:  paramsSchema(false),
		},
		required: baseRequired,
		run: func(args map[string]any) (any, error) {
			return p.Predict(args, false)
		},
	})
	r.add(tool{
		decl: domain.FunctionDeclaration{
			Name:        PredictWithFamily,
			Description: "Predict carbon dot toxicity (TOXIC or NON-TOXIC) from synthesis and assay parameters, including the source plant family.",
			Parameters:  paramsSchema(true),
		},
		required: familyRequired,
		run: func(args map[string]any) (any, error) {
			return p.Predict(args, true)
		},
	})
	r.add(tool{
		decl: domain.FunctionDeclaration{
			Name:        ExplainWithoutFamily,
			Description: "Predict carbon dot toxicity and explain which input features drove the prediction, without the plant family.",
			Parameters:  paramsSchema(false),
		},
		required: baseRequired,
		run: func(args map[string]any) (any, error) {
			return p.Explain(args, false, predict.DefaultTopN)
		},
	})
	r.add(tool{
		decl: domain.FunctionDeclaration{
			Name:        ExplainWithFamily,
			Description: "Predict carbon dot toxicity and explain which input features drove the prediction, including the source plant family.",
			Parameters:  paramsSchema(true),
		},
		required: familyRequired,
		run: func(args map[string]any) (any, error) {
			return p.Explain(args, true, predict.DefaultTopN)
		},
	})

	return r
}

func (r *Registry) add(t tool) {
	r.tools[t.decl.Name] = t
	r.order = append(r.order, t.decl.Name)
}

// Declarations returns the tool set in the form the chat request wants.
func (r *Registry) Declarations() []domain.Tool {
	decls := make([]domain.FunctionDeclaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].decl)
	}
	return []domain.Tool{{FunctionDeclarations: decls}}
}

// Execute runs a named function. The result map always carries a
// "success" flag so the model can recover from bad calls.
func (r *Registry) Execute(name string, args map[string]any) map[string]any {
	t, ok := r.tools[name]
	if !ok {
		return map[string]any{"success": false, "error": fmt.Sprintf("unknown function %q", name)}
	}

	for _, key := range t.required {
		if _, present := args[key]; !present {
			return map[string]any{"success": false, "error": fmt.Sprintf("missing required parameter %q", key)}
		}
	}

	result, err := t.run(args)
	if err != nil {
		return map[string]any{"success": false, "error": err.Error()}
	}
	return map[string]any{"success": true, "result": result}
}

func paramsSchema(withFamily bool) map[string]any {
	props := map[string]any{
		"ParticleSize":  map[string]any{"type": "number", "description": "Particle size in nanometres"},
		"ZetaPotential": map[string]any{"type": "number", "description": "Zeta potential in millivolts"},
		"Dose":          map[string]any{"type": "number", "description": "Dose in micrograms per millilitre"},
		"Time":          map[string]any{"type": "number", "description": "Exposure time in hours"},
		"Solvent":       map[string]any{"type": "string", "description": "Synthesis solvent, e.g. Water, DMSO, Ethanol"},
		"CellType":      map[string]any{"type": "string", "description": "Assay cell line, e.g. HeLa, HEK293, MCF-7, A549"},
		"CellOrigin":    map[string]any{"type": "string", "description": "Cell line origin species, e.g. Human, Mouse, Rat"},
	}
	required := []string{"ParticleSize", "ZetaPotential", "Dose", "Time", "Solvent", "CellType", "CellOrigin"}
	if withFamily {
		props["Family"] = map[string]any{"type": "string", "description": "Botanical family of the carbon source plant, e.g. Rutaceae"}
		required = append(required, "Family")
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
