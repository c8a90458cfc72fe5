package gemini

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/toxichat/internal/core/domain"
)

// notFoundPatterns mark a model that does not exist. Permanent.
var notFoundPatterns = []string{"404", "not_found", "not found"}

// rateLimitPatterns mark throttling or quota pressure at the provider.
var rateLimitPatterns = []string{
	"429",
	"resource_exhausted",
	"quota",
	"rate limit",
	"too many requests",
}

// quotaExhaustedPattern distinguishes "no quota left at all" from plain
// rate limiting inside a RESOURCE_EXHAUSTED response.
const quotaExhaustedPattern = "limit: 0"

// apiError is the Google error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

// Classify converts a non-200 provider response into a structured
// failure. Precedence mirrors the provider's observed behaviour: not
// found beats quota-exhausted beats rate-limited beats everything else.
func Classify(status int, body []byte, retryAfterHeader string) *domain.CallError {
	var parsed apiError
	_ = json.Unmarshal(body, &parsed)

	message := parsed.Error.Message
	if message == "" {
		message = string(body)
	}
	message = truncate(message, 200)

	haystack := strings.ToLower(strconv.Itoa(status) + " " + parsed.Error.Status + " " + string(body))

	switch {
	case status == 404 || containsAny(haystack, notFoundPatterns):
		return &domain.CallError{Kind: domain.FailureNotFound, Message: message}

	case strings.Contains(haystack, quotaExhaustedPattern):
		return &domain.CallError{Kind: domain.FailureQuotaExhausted, Message: message}

	case status == 429 || containsAny(haystack, rateLimitPatterns):
		return &domain.CallError{
			Kind:       domain.FailureRateLimited,
			RetryAfter: suggestedDelay(parsed, retryAfterHeader),
			Message:    message,
		}

	default:
		return &domain.CallError{Kind: domain.FailureOther, Message: message}
	}
}

// suggestedDelay extracts the server-suggested retry delay, preferring
// the structured RetryInfo detail over the Retry-After header.
func suggestedDelay(parsed apiError, retryAfterHeader string) time.Duration {
	for _, d := range parsed.Error.Details {
		if !strings.HasSuffix(d.Type, "RetryInfo") || d.RetryDelay == "" {
			continue
		}
		if delay, err := time.ParseDuration(d.RetryDelay); err == nil && delay > 0 {
			return delay
		}
	}

	if retryAfterHeader != "" {
		if secs, err := strconv.Atoi(retryAfterHeader); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}

	return 0
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
