// Package gemini implements the model transport against the Gemini REST
// API: model discovery and content generation. Failures are surfaced as
// *domain.CallError so the failover engine can classify and cache them.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vietddude/toxichat/internal/core/domain"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Client is an HTTP client for the Gemini API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gemini client. An empty baseURL uses the public
// endpoint.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type generateContentRequest struct {
	Contents          []domain.Content   `json:"contents"`
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig  `json:"generationConfig,omitempty"`
	Tools             []domain.Tool      `json:"tools,omitempty"`
}

type systemInstruction struct {
	Parts []domain.Part `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateContentResponse struct {
	Candidates []domain.Candidate `json:"candidates"`
}

// Generate calls {model}:generateContent. Provider failures come back as
// *domain.CallError with kind and any server-suggested retry delay.
func (c *Client) Generate(ctx context.Context, model domain.ModelID, req *domain.GenerateRequest) (*domain.GenerateResponse, error) {
	payload := generateContentRequest{
		Contents: req.Contents,
		Tools:    req.Tools,
	}
	if req.SystemInstruction != "" {
		payload.SystemInstruction = &systemInstruction{Parts: []domain.Part{{Text: req.SystemInstruction}}}
	}
	if req.Temperature != 0 {
		payload.GenerationConfig = &generationConfig{Temperature: req.Temperature}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, Classify(resp.StatusCode, body, resp.Header.Get("Retry-After"))
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &domain.GenerateResponse{Candidates: genResp.Candidates}, nil
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		DisplayName                string   `json:"displayName"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

// ListModels discovers every available model, following pagination.
// Called once at startup; a failure here is fatal to engine init.
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var models []domain.ModelInfo
	pageToken := ""

	for {
		q := url.Values{"pageSize": {"100"}}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		endpoint := fmt.Sprintf("%s/v1beta/models?%s", c.baseURL, q.Encode())

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("list models: http %d: %s", resp.StatusCode, truncate(string(body), 200))
		}

		var page listModelsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parse models page: %w", err)
		}

		for _, m := range page.Models {
			id := domain.ModelID(m.Name)
			models = append(models, domain.ModelInfo{
				ID:               id,
				DisplayName:      id.DisplayName(),
				SupportedActions: m.SupportedGenerationMethods,
			})
		}

		if page.NextPageToken == "" {
			return models, nil
		}
		pageToken = page.NextPageToken
	}
}

// Close cleans up idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
