package failover

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vietddude/toxichat/internal/core/domain"
	"github.com/vietddude/toxichat/internal/failover/cache"
	"github.com/vietddude/toxichat/internal/failover/selector"
	"github.com/vietddude/toxichat/internal/failover/throttle"
	"github.com/vietddude/toxichat/internal/metrics"
)

// Engine drives one invocation across the selected model order until a
// model succeeds or the order is exhausted. It owns the process-wide
// failure cache and throttle; concurrent passes share both.
type Engine struct {
	catalog   *domain.Catalog
	cache     *cache.Cache
	limiter   *throttle.Limiter
	transport Transport
	cfg       Config
}

// New creates an engine with an empty failure cache.
func New(catalog *domain.Catalog, transport Transport, cfg Config) *Engine {
	if cfg.RateLimitCooldown == 0 {
		cfg.RateLimitCooldown = DefaultConfig.RateLimitCooldown
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = DefaultConfig.MaxWait
	}
	if cfg.TTLs == (TTLConfig{}) {
		cfg.TTLs = DefaultConfig.TTLs
	}

	return &Engine{
		catalog:   catalog,
		cache:     cache.New(cfg.TTLs),
		limiter:   throttle.New(cfg.Throttle),
		transport: transport,
		cfg:       cfg,
	}
}

// Invoke runs one failover pass: select the model order, attempt each
// model exactly once, and return the first success. Resilience comes
// from advancing to the next model, never from re-trying the same one.
func (e *Engine) Invoke(ctx context.Context, req *domain.GenerateRequest) (*Result, error) {
	order := selector.Order(time.Now(), e.catalog, e.cache, domain.KindTextGeneration, selector.Options{
		Primary:  e.cfg.Primary,
		Fallback: e.cfg.Fallback,
	})
	if len(order) == 0 {
		slog.Warn("No eligible models to try", "catalog_size", e.catalog.Len())
		return nil, ErrNoEligibleModels
	}

	slog.Debug("Starting failover pass", "models", len(order), "first", order[0].DisplayName())

	var attempts []domain.Attempt
	for i, id := range order {
		resp, err := e.attempt(ctx, id, req)
		if err == nil {
			slog.Info("Model succeeded", "model", id.DisplayName(), "failed_before", len(attempts))
			return &Result{Response: resp, Model: id, Attempts: attempts}, nil
		}

		// Cancellation propagates untouched: no cache write, no cooldown.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		callErr := classify(err)
		e.cache.Record(id, callErr.Kind, time.Now(), callErr.RetryAfter, callErr.Message)
		e.publishCacheMetrics()
		attempts = append(attempts, domain.Attempt{Model: id, Kind: callErr.Kind, Message: callErr.Message})
		metrics.ModelAttemptsTotal.WithLabelValues(id.DisplayName(), string(callErr.Kind)).Inc()

		slog.Warn("Model attempt failed",
			"model", id.DisplayName(),
			"kind", callErr.Kind,
			"remaining", len(order)-i-1,
		)

		if callErr.Kind == domain.FailureRateLimited && i < len(order)-1 {
			if err := e.cooldown(ctx); err != nil {
				return nil, err
			}
		}
	}

	metrics.PassesExhaustedTotal.Inc()
	slog.Error("All eligible models failed", "attempted", len(attempts))
	return nil, &ExhaustedError{Attempts: attempts}
}

// attempt runs exactly one model call: throttle, call, record outcome.
func (e *Engine) attempt(ctx context.Context, id domain.ModelID, req *domain.GenerateRequest) (*domain.GenerateResponse, error) {
	waited, err := e.limiter.Wait(ctx)
	metrics.ThrottleWaitSeconds.Observe(waited.Seconds())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := e.transport.Generate(ctx, id, req)
	metrics.ModelAttemptLatency.WithLabelValues(id.DisplayName()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	e.cache.Clear(id)
	e.publishCacheMetrics()
	metrics.ModelAttemptsTotal.WithLabelValues(id.DisplayName(), "success").Inc()
	return resp, nil
}

// classify converts a transport error into a structured failure. The
// transport already classifies provider responses; anything else is a
// transient error worth a cool-down.
func classify(err error) *domain.CallError {
	var callErr *domain.CallError
	if errors.As(err, &callErr) {
		return callErr
	}
	return &domain.CallError{Kind: domain.FailureOther, Message: err.Error()}
}

// cooldown pauses after a rate-limited attempt so iterating to the next
// model does not hammer the provider.
func (e *Engine) cooldown(ctx context.Context) error {
	wait := e.cfg.RateLimitCooldown
	if wait > e.cfg.MaxWait {
		wait = e.cfg.MaxWait
	}
	if wait <= 0 {
		return nil
	}

	slog.Debug("Rate limit cooldown before next model", "wait", wait)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) publishCacheMetrics() {
	counts := e.cache.Counts(time.Now())
	for _, kind := range domain.FailureKinds {
		metrics.FailureCacheEntries.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
}

// CacheSnapshot exposes the failure cache for observability endpoints.
func (e *Engine) CacheSnapshot() Snapshot {
	return e.cache.Snapshot(time.Now())
}

// ResetCache clears all failure records and the working set.
func (e *Engine) ResetCache() {
	e.cache.Reset()
	e.publishCacheMetrics()
}

// ResetCacheKind clears only the failure records of one kind.
func (e *Engine) ResetCacheKind(kind domain.FailureKind) {
	e.cache.ResetKind(kind)
	e.publishCacheMetrics()
}

// Primary returns the configured primary model.
func (e *Engine) Primary() domain.ModelID { return e.cfg.Primary }

// Fallback returns the configured fallback model.
func (e *Engine) Fallback() domain.ModelID { return e.cfg.Fallback }

// Catalog returns the discovered model catalog.
func (e *Engine) Catalog() *domain.Catalog { return e.catalog }
