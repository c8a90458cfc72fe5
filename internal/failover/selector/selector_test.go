package selector

import (
	"testing"
	"time"

	"github.com/vietddude/toxichat/internal/core/domain"
	"github.com/vietddude/toxichat/internal/failover/cache"
)

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func catalogOf(ids ...domain.ModelID) *domain.Catalog {
	models := make([]domain.ModelInfo, len(ids))
	for i, id := range ids {
		models[i] = domain.ModelInfo{
			ID:               id,
			DisplayName:      id.DisplayName(),
			SupportedActions: []string{"generateContent"},
		}
	}
	return domain.NewCatalog(models)
}

func assertOrder(t *testing.T, got []domain.ModelID, want ...domain.ModelID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestOrder_CatalogDiscoveryOrder(t *testing.T) {
	cat := catalogOf("models/gemini-a", "models/gemini-b", "models/gemini-c")
	c := cache.New(cache.DefaultTTLs)

	got := Order(now, cat, c, domain.KindTextGeneration, Options{})
	assertOrder(t, got, "models/gemini-a", "models/gemini-b", "models/gemini-c")
}

func TestOrder_PrimaryAndFallbackFirst(t *testing.T) {
	cat := catalogOf("models/gemini-a", "models/gemini-b", "models/gemini-c")
	c := cache.New(cache.DefaultTTLs)

	got := Order(now, cat, c, domain.KindTextGeneration, Options{
		Primary:  "models/gemini-c",
		Fallback: "models/gemini-b",
	})
	assertOrder(t, got, "models/gemini-c", "models/gemini-b", "models/gemini-a")
}

func TestOrder_WorkingSetOutranksPrimary(t *testing.T) {
	cat := catalogOf("models/gemini-a", "models/gemini-b", "models/gemini-c")
	c := cache.New(cache.DefaultTTLs)
	c.Clear("models/gemini-b")

	got := Order(now, cat, c, domain.KindTextGeneration, Options{Primary: "models/gemini-a"})
	assertOrder(t, got, "models/gemini-b", "models/gemini-a", "models/gemini-c")
}

func TestOrder_WorkingSetRecency(t *testing.T) {
	cat := catalogOf("models/gemini-a", "models/gemini-b")
	c := cache.New(cache.DefaultTTLs)
	c.Clear("models/gemini-a")
	c.Clear("models/gemini-b") // most recent success ranks first

	got := Order(now, cat, c, domain.KindTextGeneration, Options{})
	assertOrder(t, got, "models/gemini-b", "models/gemini-a")
}

func TestOrder_NoDoubleListing(t *testing.T) {
	cat := catalogOf("models/gemini-a", "models/gemini-b")
	c := cache.New(cache.DefaultTTLs)
	c.Clear("models/gemini-a")

	// a appears via working set, primary, and catalog; must be listed once.
	got := Order(now, cat, c, domain.KindTextGeneration, Options{Primary: "models/gemini-a"})

	seen := make(map[domain.ModelID]int)
	for _, id := range got {
		seen[id]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Fatalf("%s listed %d times: %v", id, n, got)
		}
	}
	assertOrder(t, got, "models/gemini-a", "models/gemini-b")
}

func TestOrder_BlacklistExcludesEveryTier(t *testing.T) {
	cat := catalogOf("models/gemini-a", "models/gemini-b")
	c := cache.New(cache.DefaultTTLs)
	c.Clear("models/gemini-a")
	c.Record("models/gemini-a", domain.FailureQuotaExhausted, now, 0, "")

	got := Order(now, cat, c, domain.KindTextGeneration, Options{Primary: "models/gemini-a"})
	assertOrder(t, got, "models/gemini-b")
}

func TestOrder_NotFoundPermanentExclusion(t *testing.T) {
	cat := catalogOf("models/gemini-a", "models/gemini-b")
	c := cache.New(cache.DefaultTTLs)
	c.Record("models/gemini-a", domain.FailureNotFound, now, 0, "")

	got := Order(now.Add(1000*time.Hour), cat, c, domain.KindTextGeneration, Options{})
	assertOrder(t, got, "models/gemini-b")
}

func TestOrder_TTLReinclusion(t *testing.T) {
	cat := catalogOf("models/gemini-a", "models/gemini-b")
	c := cache.New(cache.DefaultTTLs)
	c.Record("models/gemini-a", domain.FailureQuotaExhausted, now, 0, "")

	before := Order(now.Add(59*time.Minute), cat, c, domain.KindTextGeneration, Options{})
	assertOrder(t, before, "models/gemini-b")

	after := Order(now.Add(61*time.Minute), cat, c, domain.KindTextGeneration, Options{})
	assertOrder(t, after, "models/gemini-a", "models/gemini-b")
}

func TestOrder_CapabilityFilter(t *testing.T) {
	cat := domain.NewCatalog([]domain.ModelInfo{
		{ID: "models/gemini-a", DisplayName: "gemini-a", SupportedActions: []string{"generateContent"}},
		{ID: "models/text-embedding-004", DisplayName: "text-embedding-004", SupportedActions: []string{"embedContent"}},
		{ID: "models/imagen-3", DisplayName: "imagen-3", SupportedActions: []string{"generateContent"}},
		{ID: "models/gemma-3-4b-it", DisplayName: "gemma-3-4b-it", SupportedActions: []string{"generateContent"}},
	})
	c := cache.New(cache.DefaultTTLs)

	got := Order(now, cat, c, domain.KindTextGeneration, Options{})
	assertOrder(t, got, "models/gemini-a", "models/gemma-3-4b-it")
}

func TestOrder_IneligiblePrimarySkipped(t *testing.T) {
	cat := catalogOf("models/gemini-a")
	c := cache.New(cache.DefaultTTLs)

	got := Order(now, cat, c, domain.KindTextGeneration, Options{Primary: "models/imagen-3"})
	assertOrder(t, got, "models/gemini-a")
}

func TestOrder_Empty(t *testing.T) {
	cat := catalogOf("models/gemini-a")
	c := cache.New(cache.DefaultTTLs)
	c.Record("models/gemini-a", domain.FailureRateLimited, now, 0, "")

	if got := Order(now, cat, c, domain.KindTextGeneration, Options{}); len(got) != 0 {
		t.Fatalf("expected empty order, got %v", got)
	}
}
