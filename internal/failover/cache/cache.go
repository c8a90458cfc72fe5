// Package cache tracks per-model failure state and the working set.
//
// Each model has at most one active failure record; recording a new one
// replaces any prior one. Records expire by TTL, checked at read time —
// there is no background sweep. A success clears the failure record and
// moves the model to the front of the working set, so failure state and
// working-set membership never coexist for the same model.
package cache

import (
	"sync"
	"time"

	"github.com/vietddude/toxichat/internal/core/domain"
)

// TTLConfig holds the expiry durations per failure kind.
// NotFound records never expire within the process lifetime.
type TTLConfig struct {
	QuotaExhausted time.Duration
	RateLimited    time.Duration
	Other          time.Duration

	// MaxSuggested caps a server-suggested rate-limit delay when it is
	// used as a TTL. Zero means no cap.
	MaxSuggested time.Duration
}

// DefaultTTLs mirrors the provider's observed reset behaviour: quota may
// reset hourly, rate limits are short-lived, other errors get a medium
// cool-down.
var DefaultTTLs = TTLConfig{
	QuotaExhausted: time.Hour,
	RateLimited:    5 * time.Minute,
	Other:          30 * time.Minute,
	MaxSuggested:   30 * time.Minute,
}

type record struct {
	kind       domain.FailureKind
	recordedAt time.Time
	ttl        time.Duration // 0 = never expires
	message    string
}

func (r record) expired(now time.Time) bool {
	if r.kind == domain.FailureNotFound {
		return false
	}
	return !now.Before(r.recordedAt.Add(r.ttl))
}

// Entry describes one active failure record for observability.
type Entry struct {
	Model            domain.ModelID `json:"model"`
	Message          string         `json:"message,omitempty"`
	ExpiresIn        time.Duration  `json:"-"`
	ExpiresInSeconds float64        `json:"expires_in_seconds,omitempty"`
}

// Snapshot is a consistent view of the cache for observability endpoints.
type Snapshot struct {
	Working  []domain.ModelID               `json:"working"`
	Failures map[domain.FailureKind][]Entry `json:"failures"`
}

// Cache is the process-wide failure cache and working set. Safe for
// concurrent use; every mutation is a single critical section.
type Cache struct {
	mu       sync.Mutex
	ttls     TTLConfig
	failures map[domain.ModelID]record
	working  []domain.ModelID // most recently succeeded first
}

// New creates an empty cache with the given TTL configuration.
func New(ttls TTLConfig) *Cache {
	return &Cache{
		ttls:     ttls,
		failures: make(map[domain.ModelID]record),
	}
}

// Status returns the active failure kind for a model, if any. Expired
// records are evicted on the way out.
func (c *Cache) Status(id domain.ModelID, now time.Time) (domain.FailureKind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.failures[id]
	if !ok {
		return "", false
	}
	if r.expired(now) {
		delete(c.failures, id)
		return "", false
	}
	return r.kind, true
}

// Blacklisted reports whether a model currently has an active failure
// record and must be skipped by selection.
func (c *Cache) Blacklisted(id domain.ModelID, now time.Time) bool {
	_, ok := c.Status(id, now)
	return ok
}

// Record stores a failure for a model, replacing any prior record. For
// rate limits, a server-suggested delay larger than the default TTL wins,
// subject to the configured cap.
func (c *Cache) Record(id domain.ModelID, kind domain.FailureKind, now time.Time, suggested time.Duration, message string) {
	ttl := c.ttlFor(kind, suggested)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures[id] = record{kind: kind, recordedAt: now, ttl: ttl, message: message}
	c.removeWorking(id)
}

func (c *Cache) ttlFor(kind domain.FailureKind, suggested time.Duration) time.Duration {
	switch kind {
	case domain.FailureNotFound:
		return 0
	case domain.FailureQuotaExhausted:
		return c.ttls.QuotaExhausted
	case domain.FailureRateLimited:
		if c.ttls.MaxSuggested > 0 && suggested > c.ttls.MaxSuggested {
			suggested = c.ttls.MaxSuggested
		}
		if suggested > c.ttls.RateLimited {
			return suggested
		}
		return c.ttls.RateLimited
	default:
		return c.ttls.Other
	}
}

// Clear removes any failure record for a model and moves it to the front
// of the working set. Called on a successful invocation.
func (c *Cache) Clear(id domain.ModelID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.failures, id)
	c.removeWorking(id)
	c.working = append([]domain.ModelID{id}, c.working...)
}

// Working returns the working set, most recently succeeded first.
func (c *Cache) Working() []domain.ModelID {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.ModelID, len(c.working))
	copy(out, c.working)
	return out
}

// Reset clears all failure records and the working set.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = make(map[domain.ModelID]record)
	c.working = nil
}

// ResetKind clears only the failure records of one kind.
func (c *Cache) ResetKind(kind domain.FailureKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, r := range c.failures {
		if r.kind == kind {
			delete(c.failures, id)
		}
	}
}

// Snapshot returns a consistent view of working models and active
// failures, evicting anything already expired.
func (c *Cache) Snapshot(now time.Time) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Working:  make([]domain.ModelID, len(c.working)),
		Failures: make(map[domain.FailureKind][]Entry),
	}
	copy(snap.Working, c.working)

	for id, r := range c.failures {
		if r.expired(now) {
			delete(c.failures, id)
			continue
		}
		e := Entry{Model: id, Message: r.message}
		if r.ttl > 0 {
			e.ExpiresIn = r.recordedAt.Add(r.ttl).Sub(now)
			e.ExpiresInSeconds = e.ExpiresIn.Seconds()
		}
		snap.Failures[r.kind] = append(snap.Failures[r.kind], e)
	}
	return snap
}

// Counts returns the number of active records per kind plus the working
// set size, for the health endpoint.
func (c *Cache) Counts(now time.Time) map[domain.FailureKind]int {
	counts := make(map[domain.FailureKind]int)
	for kind, entries := range c.Snapshot(now).Failures {
		counts[kind] = len(entries)
	}
	return counts
}

// removeWorking drops id from the working set. Caller holds the lock.
func (c *Cache) removeWorking(id domain.ModelID) {
	for i, w := range c.working {
		if w == id {
			c.working = append(c.working[:i], c.working[i+1:]...)
			return
		}
	}
}
