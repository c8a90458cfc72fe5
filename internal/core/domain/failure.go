package domain

import (
	"fmt"
	"time"
)

// FailureKind classifies why a model call failed.
type FailureKind string

const (
	// FailureNotFound means the model does not exist. Permanent for the
	// process lifetime.
	FailureNotFound FailureKind = "not_found"

	// FailureQuotaExhausted means the model's allocation is fully consumed.
	FailureQuotaExhausted FailureKind = "quota_exhausted"

	// FailureRateLimited means the provider is throttling us right now.
	FailureRateLimited FailureKind = "rate_limited"

	// FailureOther covers any other error worth a cool-down.
	FailureOther FailureKind = "other_error"
)

// FailureKinds lists all kinds, in reporting order.
var FailureKinds = []FailureKind{
	FailureNotFound,
	FailureQuotaExhausted,
	FailureRateLimited,
	FailureOther,
}

// ParseFailureKind converts a string to a FailureKind.
func ParseFailureKind(s string) (FailureKind, bool) {
	for _, k := range FailureKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// CallError is the structured failure surfaced by the transport boundary.
// RetryAfter is the server-suggested delay, zero if none was given.
type CallError struct {
	Kind       FailureKind
	RetryAfter time.Duration
	Message    string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("model call failed (%s): %s", e.Kind, e.Message)
}

// Attempt records one model tried during a failover pass and its outcome.
type Attempt struct {
	Model   ModelID     `json:"model"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message,omitempty"`
}
