package domain

import "strings"

type ModelID string

// DisplayName returns the model name without the "models/" prefix.
func (m ModelID) DisplayName() string {
	s := string(m)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ModelInfo describes a model discovered from the provider's catalog.
type ModelInfo struct {
	ID               ModelID
	DisplayName      string
	SupportedActions []string
}

// RequestKind identifies what a request needs from a model.
type RequestKind string

const (
	KindTextGeneration RequestKind = "text_generation"
)
