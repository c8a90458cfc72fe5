package domain

import "strings"

// generationAction is the catalog capability required for text generation.
const generationAction = "generateContent"

// skipKeywords excludes model families that cannot serve chat requests.
var skipKeywords = []string{"embedding", "imagen", "veo", "tts", "audio"}

// textKeywords marks the model families that serve text generation.
var textKeywords = []string{"gemini", "gemma"}

// Catalog holds the models discovered at startup, in discovery order.
// It is populated once and read-only afterward.
type Catalog struct {
	models []ModelInfo
	byID   map[ModelID]ModelInfo
}

// NewCatalog builds a catalog from discovered models, preserving order.
func NewCatalog(models []ModelInfo) *Catalog {
	byID := make(map[ModelID]ModelInfo, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	return &Catalog{models: models, byID: byID}
}

// Models returns all discovered models in discovery order.
func (c *Catalog) Models() []ModelInfo {
	out := make([]ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// Len returns the number of discovered models.
func (c *Catalog) Len() int {
	return len(c.models)
}

// Eligible reports whether a model can serve the given request kind.
// Models present in the catalog are checked against their supported
// actions; models only known by name (e.g. a configured primary that was
// not discovered) fall back to the name heuristic alone.
func (c *Catalog) Eligible(id ModelID, kind RequestKind) bool {
	if kind != KindTextGeneration {
		return false
	}
	if !nameLooksGenerative(id.DisplayName()) {
		return false
	}
	info, ok := c.byID[id]
	if !ok {
		return true
	}
	if len(info.SupportedActions) == 0 {
		return true
	}
	for _, a := range info.SupportedActions {
		if a == generationAction {
			return true
		}
	}
	return false
}

func nameLooksGenerative(name string) bool {
	lower := strings.ToLower(name)
	for _, skip := range skipKeywords {
		if strings.Contains(lower, skip) {
			return false
		}
	}
	for _, keep := range textKeywords {
		if strings.Contains(lower, keep) {
			return true
		}
	}
	return false
}
