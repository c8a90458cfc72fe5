// Package throttle enforces a global outbound call rate: a minimum
// spacing between consecutive calls plus a sliding-window ceiling on
// calls per interval. The ceiling is global across all models.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Config holds the rate limiting parameters.
type Config struct {
	// MinInterval is the minimum spacing between two outbound calls.
	MinInterval time.Duration

	// MaxCalls bounds the number of calls inside Window.
	MaxCalls int

	// Window is the trailing period the MaxCalls ceiling applies to.
	Window time.Duration
}

// DefaultConfig matches the provider's free-tier limits with headroom.
var DefaultConfig = Config{
	MinInterval: 5 * time.Second,
	MaxCalls:    15,
	Window:      time.Minute,
}

// Limiter schedules outbound calls. Reserve is a single critical
// section, so two concurrent callers can never both observe "no wait
// needed" and violate the minimum interval.
type Limiter struct {
	cfg Config

	mu        sync.Mutex
	scheduled []time.Time // granted slots inside the window, oldest first
	last      time.Time   // most recently granted slot
}

// New creates a limiter. Zero config fields fall back to defaults.
func New(cfg Config) *Limiter {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultConfig.MinInterval
	}
	if cfg.MaxCalls <= 0 {
		cfg.MaxCalls = DefaultConfig.MaxCalls
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig.Window
	}
	return &Limiter{cfg: cfg}
}

// Reserve atomically claims the next call slot and returns how long the
// caller must wait before making the call. The slot is recorded as part
// of the same critical section.
func (l *Limiter) Reserve(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	target := now
	if !l.last.IsZero() {
		if next := l.last.Add(l.cfg.MinInterval); target.Before(next) {
			target = next
		}
	}

	// Drop slots that have slid out of the window by the target time.
	cutoff := target.Add(-l.cfg.Window)
	kept := l.scheduled[:0]
	for _, ts := range l.scheduled {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.scheduled = kept

	// If the window is full, wait until its oldest slot slides out.
	if len(l.scheduled) >= l.cfg.MaxCalls {
		oldest := l.scheduled[len(l.scheduled)-l.cfg.MaxCalls]
		if next := oldest.Add(l.cfg.Window); target.Before(next) {
			target = next
		}
	}

	l.scheduled = append(l.scheduled, target)
	if len(l.scheduled) > l.cfg.MaxCalls {
		l.scheduled = l.scheduled[len(l.scheduled)-l.cfg.MaxCalls:]
	}
	l.last = target

	return target.Sub(now)
}

// Wait reserves a slot and sleeps until it is due, or until the context
// is cancelled. It returns the waited duration.
func (l *Limiter) Wait(ctx context.Context) (time.Duration, error) {
	delay := l.Reserve(time.Now())
	if delay <= 0 {
		return 0, ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return delay, ctx.Err()
	case <-timer.C:
		return delay, nil
	}
}
