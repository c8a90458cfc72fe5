// Package failover implements the resilient model-selection and
// invocation engine.
//
// This package offers robust model connectivity with:
//   - Prioritized selection across every discovered model
//   - A per-model failure cache with kind-specific TTLs
//   - A global outbound-call throttle
//   - Automatic failover until a model succeeds or all are exhausted
//
// # Quick Start
//
//	catalog := domain.NewCatalog(models)
//	engine := failover.New(catalog, transport, failover.Config{
//	    Primary:  "models/gemini-2.5-flash",
//	    Fallback: "models/gemini-2.0-flash",
//	})
//
//	result, err := engine.Invoke(ctx, req)
//
// # Package Structure
//
// The package is organized into sub-packages for maintainability:
//
//   - cache/    - Failure cache and working set (state + TTL logic)
//   - selector/ - Prioritized, de-duplicated attempt ordering
//   - throttle/ - Global outbound rate limiting
//
// The engine itself lives at the root level and drives one attempt per
// selected model until success or exhaustion.
package failover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/toxichat/internal/core/domain"
	"github.com/vietddude/toxichat/internal/failover/cache"
	"github.com/vietddude/toxichat/internal/failover/throttle"
)

// Re-exported types from the sub-packages.
type (
	// Snapshot is a consistent view of the failure cache.
	Snapshot = cache.Snapshot

	// CacheEntry describes one active failure record.
	CacheEntry = cache.Entry

	// TTLConfig holds failure-record expiry durations.
	TTLConfig = cache.TTLConfig

	// ThrottleConfig holds the global rate limiting parameters.
	ThrottleConfig = throttle.Config
)

// Transport performs the actual model call. Implementations surface
// failures as *domain.CallError so the engine can classify them.
type Transport interface {
	Generate(ctx context.Context, model domain.ModelID, req *domain.GenerateRequest) (*domain.GenerateResponse, error)
}

// Config holds the engine parameters. Zero values fall back to defaults.
type Config struct {
	// Primary and Fallback are the preferred models, tried ahead of the
	// rest of the catalog when not blacklisted.
	Primary  domain.ModelID
	Fallback domain.ModelID

	// RateLimitCooldown is the pause after a rate-limited attempt before
	// moving on to the next model. Distinct from the throttle interval.
	RateLimitCooldown time.Duration

	// MaxWait caps any single in-process wait (cooldown included) so a
	// pass never stalls on an extreme server-suggested delay.
	MaxWait time.Duration

	TTLs     TTLConfig
	Throttle ThrottleConfig
}

// DefaultConfig provides the free-tier-safe defaults.
var DefaultConfig = Config{
	RateLimitCooldown: 10 * time.Second,
	MaxWait:           120 * time.Second,
	TTLs:              cache.DefaultTTLs,
	Throttle:          throttle.DefaultConfig,
}

// ErrNoEligibleModels means selection produced an empty attempt list:
// every model is blacklisted or filtered out. A discovery/configuration
// problem rather than a transient one.
var ErrNoEligibleModels = errors.New("no eligible models to try")

// ExhaustedError means every selected model was attempted and failed.
// Attempts lists each model tried, in order, with its failure kind.
type ExhaustedError struct {
	Attempts []domain.Attempt
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d eligible models failed", len(e.Attempts))
}

// Result is a successful invocation outcome.
type Result struct {
	Response *domain.GenerateResponse
	Model    domain.ModelID

	// Attempts lists the models that failed before the winning one.
	Attempts []domain.Attempt
}
