package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache records what got cached and with which TTL, and honors expiry
// against a controllable clock.
type fakeCache struct {
	now     time.Time
	entries map[string]fakeEntry
}

type fakeEntry struct {
	value     any
	expiresAt time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{now: time.Now(), entries: map[string]fakeEntry{}}
}

func (f *fakeCache) Get(key string) (any, bool) {
	entry, ok := f.entries[key]
	if !ok || f.now.After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (f *fakeCache) Set(key string, value any, ttl time.Duration) {
	f.entries[key] = fakeEntry{value: value, expiresAt: f.now.Add(ttl)}
}

func (f *fakeCache) advance(d time.Duration) { f.now = f.now.Add(d) }

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hades", "Hades"},
		{"Baldur's Gate 3", "Baldurs Gate 3"},
		{"NieR:Automata™", "NieRAutomata"},
		{"  spaced   out  ", "spaced out"},
		{"™©®", ""},
		{"éclair", "clair"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuery(tt.in), "input %q", tt.in)
	}
}

func TestTrustedStudio(t *testing.T) {
	assert.True(t, TrustedStudio("Larian Studios"))
	assert.False(t, TrustedStudio(""))
	assert.False(t, TrustedStudio("   "))
	assert.False(t, TrustedStudio("Unknown Studio"))
	assert.False(t, TrustedStudio("unknown publisher"))
}

func TestNeedsEnrichment(t *testing.T) {
	assert.False(t, NeedsEnrichment("Larian Studios", "Aug 2023"))
	assert.True(t, NeedsEnrichment("", "Aug 2023"))
	assert.True(t, NeedsEnrichment("Unknown Studio", "Aug 2023"))
	assert.True(t, NeedsEnrichment("Larian Studios", ""))
}

func searchServer(t *testing.T, hits *atomic.Int64, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestEnrichHappyPath(t *testing.T) {
	var hits atomic.Int64
	srv := searchServer(t, &hits, http.StatusOK, `{
		"links": [
			{"name": "Baldur's Gate 3", "provider_name": "Larian Studios", "release_date": "2023-08-03T00:00:00Z"},
			{"name": "Wrong Match", "provider_name": "Other Corp", "release_date": "2001-01-01T00:00:00Z"}
		]
	}`)
	defer srv.Close()

	cache := newFakeCache()
	coord := NewCoordinator(srv.URL, cache)

	res := coord.Enrich(context.Background(), "Baldur's Gate 3", "us", "en", "999")
	require.NotNil(t, res.Publisher)
	require.NotNil(t, res.ReleaseDate)
	assert.Equal(t, "Larian Studios", *res.Publisher)
	assert.Equal(t, "Aug 2023", *res.ReleaseDate)

	// Second call is served from cache.
	coord.Enrich(context.Background(), "Baldur's Gate 3", "us", "en", "999")
	assert.EqualValues(t, 1, hits.Load())

	// Success result carries the long TTL.
	entry := cache.entries["Baldurs Gate 3|us|en|999"]
	assert.Equal(t, cache.now.Add(SuccessTTL), entry.expiresAt)
}

func TestEnrichPublisherFromDefaultSKU(t *testing.T) {
	var hits atomic.Int64
	srv := searchServer(t, &hits, http.StatusOK, `{
		"links": [{"name": "Bloodborne", "default_sku": {"provider_name": "SIE"}, "release_date": "2015-03-24"}]
	}`)
	defer srv.Close()

	coord := NewCoordinator(srv.URL, newFakeCache())
	res := coord.Enrich(context.Background(), "Bloodborne", "us", "en", "999")

	require.NotNil(t, res.Publisher)
	assert.Equal(t, "SIE", *res.Publisher)
	require.NotNil(t, res.ReleaseDate)
	assert.Equal(t, "Mar 2015", *res.ReleaseDate)
}

func TestEnrichUnparsableDateIsAbsent(t *testing.T) {
	var hits atomic.Int64
	srv := searchServer(t, &hits, http.StatusOK, `{
		"links": [{"name": "X", "provider_name": "Y", "release_date": "soon"}]
	}`)
	defer srv.Close()

	coord := NewCoordinator(srv.URL, newFakeCache())
	res := coord.Enrich(context.Background(), "X", "us", "en", "999")

	require.NotNil(t, res.Publisher)
	assert.Nil(t, res.ReleaseDate)
}

func TestEnrichEmptyAfterNormalizationSkipsProvider(t *testing.T) {
	var hits atomic.Int64
	srv := searchServer(t, &hits, http.StatusOK, `{}`)
	defer srv.Close()

	coord := NewCoordinator(srv.URL, newFakeCache())
	res := coord.Enrich(context.Background(), "™©®", "us", "en", "999")

	assert.Nil(t, res.Publisher)
	assert.Nil(t, res.ReleaseDate)
	assert.EqualValues(t, 0, hits.Load())
}

func TestEnrichProviderErrorDegradesToEmpty(t *testing.T) {
	var hits atomic.Int64
	srv := searchServer(t, &hits, http.StatusInternalServerError, `boom`)
	defer srv.Close()

	cache := newFakeCache()
	coord := NewCoordinator(srv.URL, cache)

	res := coord.Enrich(context.Background(), "Hades", "us", "en", "999")
	assert.Nil(t, res.Publisher)
	assert.Nil(t, res.ReleaseDate)

	// Miss result carries the short TTL.
	entry := cache.entries["Hades|us|en|999"]
	assert.Equal(t, cache.now.Add(MissTTL), entry.expiresAt)
}

func TestEnrichMissIsRetryableAfterTTL(t *testing.T) {
	var hits atomic.Int64
	srv := searchServer(t, &hits, http.StatusOK, `{"links": []}`)
	defer srv.Close()

	cache := newFakeCache()
	coord := NewCoordinator(srv.URL, cache)
	ctx := context.Background()

	coord.Enrich(ctx, "Obscure Title", "us", "en", "999")
	assert.EqualValues(t, 1, hits.Load())

	// Within the hour the cached miss is returned without a provider call.
	cache.advance(30 * time.Minute)
	coord.Enrich(ctx, "Obscure Title", "us", "en", "999")
	assert.EqualValues(t, 1, hits.Load())

	// After expiry the provider is consulted again.
	cache.advance(31 * time.Minute)
	coord.Enrich(ctx, "Obscure Title", "us", "en", "999")
	assert.EqualValues(t, 2, hits.Load())
}

func TestEnrichCacheKeyIncludesLocale(t *testing.T) {
	var hits atomic.Int64
	srv := searchServer(t, &hits, http.StatusOK, `{"links": [{"provider_name": "P"}]}`)
	defer srv.Close()

	coord := NewCoordinator(srv.URL, newFakeCache())
	ctx := context.Background()

	coord.Enrich(ctx, "Hades", "us", "en", "999")
	coord.Enrich(ctx, "Hades", "de", "de", "999")
	assert.EqualValues(t, 2, hits.Load())
}

func TestFormatReleaseDate(t *testing.T) {
	assert.Equal(t, "Aug 2023", formatReleaseDate("2023-08-03T00:00:00Z"))
	assert.Equal(t, "Mar 2015", formatReleaseDate("2015-03-24"))
	assert.Equal(t, "", formatReleaseDate(""))
	assert.Equal(t, "", formatReleaseDate("not a date"))
}
