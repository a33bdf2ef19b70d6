// Package enrichment fills in missing game metadata (publisher, release
// date) from the PlayStation store search API. Lookups are best-effort: any
// provider failure degrades to an empty result and the caller proceeds
// without it.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// Cache lifetimes. A hit is kept for a week; a miss is kept just long enough
// to avoid hammering the provider while still allowing a retry.
const (
	SuccessTTL = 7 * 24 * time.Hour
	MissTTL    = time.Hour
)

const requestTimeout = 5 * time.Second

// Placeholder studio values that count as "no data" for trust purposes.
var placeholderStudios = map[string]struct{}{
	"unknown studio":    {},
	"unknown publisher": {},
}

// Result is what a lookup produced. Either field may be nil when the
// provider had nothing usable.
type Result struct {
	Publisher   *string `json:"publisher"`
	ReleaseDate *string `json:"releaseDate"`
}

func (r Result) empty() bool {
	return r.Publisher == nil && r.ReleaseDate == nil
}

// TrustedStudio reports whether a studio value was supplied by the user or a
// source import, as opposed to being empty or a placeholder.
func TrustedStudio(studio string) bool {
	s := strings.ToLower(strings.TrimSpace(studio))
	if s == "" {
		return false
	}
	_, placeholder := placeholderStudios[s]
	return !placeholder
}

// NeedsEnrichment reports whether a candidate is missing metadata a lookup
// could supply.
func NeedsEnrichment(studio, releaseDate string) bool {
	return !TrustedStudio(studio) || strings.TrimSpace(releaseDate) == ""
}

// NormalizeQuery reduces a game name to the provider's required query
// format: ASCII letters, digits and spaces only, single-spaced.
func NormalizeQuery(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Coordinator performs metadata lookups against the store search endpoint,
// memoizing results in the injected TTL cache.
type Coordinator struct {
	baseURL string
	client  *http.Client
	cache   Cache
	logger  *slog.Logger
}

// NewCoordinator builds a coordinator for a search endpoint of the form
// {baseURL}/{country}/{language}/{ageGroup}/{query}.
func NewCoordinator(baseURL string, cache Cache) *Coordinator {
	return &Coordinator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
		cache:   cache,
		logger:  slog.Default().With("component", "enrichment"),
	}
}

// Enrich looks up publisher and release date for a game name. It never
// returns an error: provider failures are logged and yield an empty result,
// which is cached with the short miss TTL so the next attempt after expiry
// hits the provider again.
func (c *Coordinator) Enrich(ctx context.Context, name, country, language, ageGroup string) Result {
	query := NormalizeQuery(name)
	if query == "" {
		return Result{}
	}

	key := strings.Join([]string{query, country, language, ageGroup}, "|")
	if v, ok := c.cache.Get(key); ok {
		if res, ok := v.(Result); ok {
			return res
		}
	}

	res := c.fetch(ctx, country, language, ageGroup, query)

	ttl := MissTTL
	if !res.empty() {
		ttl = SuccessTTL
	}
	c.cache.Set(key, res, ttl)

	return res
}

func (c *Coordinator) fetch(ctx context.Context, country, language, ageGroup, query string) Result {
	endpoint := fmt.Sprintf("%s/%s/%s/%s/%s",
		c.baseURL, country, language, ageGroup, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("building search request failed", "query", query, "error", err)
		return Result{}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("search request failed", "query", query, "error", err)
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("search returned non-2xx", "query", query, "status", resp.StatusCode)
		return Result{}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("decoding search response failed", "query", query, "error", err)
		return Result{}
	}
	if len(body.Links) == 0 {
		return Result{}
	}

	// First entry is taken as the best match; the provider already ranks.
	entry := body.Links[0]

	var res Result
	if p := entry.publisher(); p != "" {
		res.Publisher = &p
	}
	if d := formatReleaseDate(entry.ReleaseDate); d != "" {
		res.ReleaseDate = &d
	}
	return res
}

type searchResponse struct {
	Links []searchEntry `json:"links"`
}

type searchEntry struct {
	Name         string `json:"name"`
	ProviderName string `json:"provider_name"`
	ReleaseDate  string `json:"release_date"`
	DefaultSKU   *struct {
		ProviderName string `json:"provider_name"`
	} `json:"default_sku"`
}

func (e searchEntry) publisher() string {
	if e.ProviderName != "" {
		return e.ProviderName
	}
	if e.DefaultSKU != nil {
		return e.DefaultSKU.ProviderName
	}
	return ""
}

var releaseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

// formatReleaseDate reformats the provider's ISO-ish date string to a short
// "Mon YYYY" form. Unparsable dates are treated as absent.
func formatReleaseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2006")
		}
	}
	return ""
}
