package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vietddude/toxichat/internal/core/domain"
	"github.com/vietddude/toxichat/internal/failover"
)

// systemPrompt frames the assistant for the chat model. The model is
// told to reach for the registered functions instead of guessing.
const systemPrompt = `You are a research assistant for plant-derived carbon dot toxicology.
You help researchers assess the cytotoxicity of carbon dots synthesised from plant material.
When the user provides experimental parameters (particle size, zeta potential, dose, exposure time, solvent, cell type, cell origin, and optionally the plant family), call the matching prediction or explanation function instead of guessing.
Use the with-family variants only when the plant family is given.
Report predictions with their confidence, explain the driving factors when an explanation was requested, and answer in plain language.
If a function reports an error, tell the user which parameter was missing or invalid.`

// MessageRequest is the chat endpoint input.
type MessageRequest struct {
	Message string           `json:"message"`
	History []domain.Content `json:"history,omitempty"`
}

// MessageResponse is the chat endpoint output.
type MessageResponse struct {
	Reply     string           `json:"reply"`
	ModelUsed string           `json:"model_used"`
	Attempts  []domain.Attempt `json:"failed_attempts,omitempty"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	contents := append(append([]domain.Content{}, req.History...), domain.Content{
		Role:  "user",
		Parts: []domain.Part{{Text: req.Message}},
	})

	var (
		lastModel domain.ModelID
		attempts  []domain.Attempt
	)

	// Tool-call loop: each round sends the conversation, executes any
	// function calls the model makes, and feeds the results back.
	for round := 0; round < s.cfg.MaxToolRounds; round++ {
		result, err := s.engine.Invoke(r.Context(), &domain.GenerateRequest{
			Contents:          contents,
			SystemInstruction: systemPrompt,
			Temperature:       0.2,
			Tools:             s.registry.Declarations(),
		})
		if err != nil {
			s.writeInvokeError(w, err)
			return
		}

		lastModel = result.Model
		attempts = append(attempts, result.Attempts...)

		calls := result.Response.FunctionCalls()
		if len(calls) == 0 {
			writeJSON(w, http.StatusOK, MessageResponse{
				Reply:     result.Response.Text(),
				ModelUsed: lastModel.DisplayName(),
				Attempts:  attempts,
			})
			return
		}

		parts := make([]domain.Part, 0, len(calls))
		responses := make([]domain.Part, 0, len(calls))
		for _, call := range calls {
			slog.Info("Executing function call", "function", call.Name)
			parts = append(parts, domain.Part{FunctionCall: &call})
			responses = append(responses, domain.Part{FunctionResponse: &domain.FunctionResponse{
				Name:     call.Name,
				Response: s.registry.Execute(call.Name, call.Args),
			}})
		}
		contents = append(contents,
			domain.Content{Role: "model", Parts: parts},
			domain.Content{Role: "user", Parts: responses},
		)
	}

	writeError(w, http.StatusBadGateway, "model did not produce a final answer")
}

func (s *Server) writeInvokeError(w http.ResponseWriter, err error) {
	var exhausted *failover.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":           "all models are currently unavailable",
			"failed_attempts": exhausted.Attempts,
		})
	case errors.Is(err, failover.ErrNoEligibleModels):
		writeError(w, http.StatusServiceUnavailable, "no eligible models available")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.CacheSnapshot()
	counts := make(map[domain.FailureKind]int, len(snap.Failures))
	for kind, entries := range snap.Failures {
		counts[kind] = len(entries)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"models_discovered": s.engine.Catalog().Len(),
		"primary_model":     s.engine.Primary().DisplayName(),
		"fallback_model":    s.engine.Fallback().DisplayName(),
		"working_models":    len(snap.Working),
		"failure_counts":    counts,
	})
}

func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.CacheSnapshot())
}

func (s *Server) handleCacheReset(w http.ResponseWriter, r *http.Request) {
	s.engine.ResetCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseFailureKind(r.PathValue("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown failure kind "+r.PathValue("kind"))
		return
	}
	s.engine.ResetCacheKind(kind)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "kind": string(kind)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
