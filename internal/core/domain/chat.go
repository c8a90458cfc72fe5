package domain

// Content is one conversation turn.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a fragment of a turn: plain text, a tool call requested by the
// model, or a tool result sent back to it. Exactly one field is set.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// FunctionDeclaration describes one callable tool to the model.
// Parameters is a JSON-schema object.
type FunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Tool groups function declarations for the generation request.
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// GenerateRequest is one logical generation request, independent of which
// model ends up serving it.
type GenerateRequest struct {
	Contents          []Content
	SystemInstruction string
	Temperature       float64
	Tools             []Tool
}

// GenerateResponse is the model's reply.
type GenerateResponse struct {
	Candidates []Candidate
}

// Candidate is one generated reply variant.
type Candidate struct {
	Content Content
}

// Text concatenates all text parts of the first candidate.
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// FunctionCalls returns every tool call across all candidates.
func (r *GenerateResponse) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if p.FunctionCall != nil {
				calls = append(calls, *p.FunctionCall)
			}
		}
	}
	return calls
}
