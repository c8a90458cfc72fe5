// Package selector orders the models to attempt for one request.
//
// Priority: recently working models first (most recent success first),
// then the configured primary and fallback, then the remaining eligible
// catalog models in discovery order. Blacklisted models are excluded from
// every tier; the capability filter applies to the catalog-derived tiers.
// The output never lists a model twice.
package selector

import (
	"time"

	"github.com/vietddude/toxichat/internal/core/domain"
)

// Source exposes the failure-cache state the selector reads. It performs
// no I/O; the selector is a pure function of its inputs.
type Source interface {
	Blacklisted(id domain.ModelID, now time.Time) bool
	Working() []domain.ModelID
}

// Options carries the configured model preferences.
type Options struct {
	Primary  domain.ModelID
	Fallback domain.ModelID
}

// Order produces the de-duplicated attempt sequence for one request.
// An empty result is a valid outcome, not an error.
func Order(now time.Time, cat *domain.Catalog, src Source, kind domain.RequestKind, opts Options) []domain.ModelID {
	var order []domain.ModelID
	seen := make(map[domain.ModelID]bool)

	add := func(id domain.ModelID) {
		if id == "" || seen[id] || src.Blacklisted(id, now) {
			return
		}
		seen[id] = true
		order = append(order, id)
	}

	// Tier 1: known working models, most recent success first.
	for _, id := range src.Working() {
		add(id)
	}

	// Tiers 2-3: configured primary and fallback, capability-checked.
	if cat.Eligible(opts.Primary, kind) {
		add(opts.Primary)
	}
	if cat.Eligible(opts.Fallback, kind) {
		add(opts.Fallback)
	}

	// Tier 4: the rest of the catalog in discovery order.
	for _, m := range cat.Models() {
		if cat.Eligible(m.ID, kind) {
			add(m.ID)
		}
	}

	return order
}
