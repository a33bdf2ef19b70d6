// Package steam wraps the Steam Web API (owned games) and the storefront
// API (search, per-app details) behind a small client.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout = 10 * time.Second
	detailCacheTTL = 24 * time.Hour

	// Upper bound on concurrent appdetails requests during a batch fetch.
	detailConcurrency = 10
)

// Client talks to the Steam Web and store APIs.
type Client struct {
	apiKey    string
	apiBase   string
	storeBase string
	client    *http.Client
	details   *gocache.Cache
	logger    *slog.Logger
}

// NewClient builds a client. apiBase is the Web API host, storeBase the
// storefront host.
func NewClient(apiKey, apiBase, storeBase string) *Client {
	return &Client{
		apiKey:    apiKey,
		apiBase:   apiBase,
		storeBase: storeBase,
		client:    &http.Client{Timeout: requestTimeout},
		details:   gocache.New(detailCacheTTL, time.Hour),
		logger:    slog.Default().With("component", "steam"),
	}
}

// OwnedGame is one entry of a user's Steam library.
type OwnedGame struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"` // minutes
	RTimeLastPlayed int64  `json:"rtime_last_played"`
}

// OwnedGames fetches the full library of a SteamID64, including app names
// and played free games.
func (c *Client) OwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	endpoint := fmt.Sprintf(
		"%s/IPlayerService/GetOwnedGames/v1/?key=%s&steamid=%s&include_appinfo=1&include_played_free_games=1",
		c.apiBase, url.QueryEscape(c.apiKey), url.QueryEscape(steamID))

	var body struct {
		Response struct {
			GameCount int         `json:"game_count"`
			Games     []OwnedGame `json:"games"`
		} `json:"response"`
	}
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("steam: fetching owned games: %w", err)
	}
	return body.Response.Games, nil
}

// SearchResult is one storefront search hit.
type SearchResult struct {
	AppID int    `json:"id"`
	Name  string `json:"name"`
}

// Search queries the storefront by term.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("%s/api/storesearch/?term=%s&cc=us&l=en",
		c.storeBase, url.QueryEscape(term))

	var body struct {
		Items []SearchResult `json:"items"`
	}
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("steam: searching store: %w", err)
	}
	return body.Items, nil
}

// ReleaseDate is the storefront's release-date object.
type ReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

// Price is the storefront's price overview; Final is in cents.
type Price struct {
	Currency string `json:"currency"`
	Final    int    `json:"final"`
}

// AppDetail is the subset of storefront app details the library cares about.
type AppDetail struct {
	Name        string      `json:"name"`
	Developers  []string    `json:"developers"`
	Publishers  []string    `json:"publishers"`
	ReleaseDate ReleaseDate `json:"release_date"`
	Price       *Price      `json:"price_overview"`
}

// AppDetails fetches storefront details for a batch of app ids. The
// storefront's multi-id form is unreliable upstream, so one request is
// issued per id, bounded to detailConcurrency in flight. Partial success is
// preferred: the returned map holds every id that succeeded, and a non-nil
// error lists the ids that did not.
func (c *Client) AppDetails(ctx context.Context, appIDs []int) (map[int]AppDetail, error) {
	var (
		mu      sync.Mutex
		results = make(map[int]AppDetail, len(appIDs))
		failed  []int
	)

	g := &errgroup.Group{}
	g.SetLimit(detailConcurrency)

	for _, id := range appIDs {
		id := id
		g.Go(func() error {
			detail, err := c.appDetail(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Warn("appdetails fetch failed", "appid", id, "error", err)
				failed = append(failed, id)
				return nil
			}
			results[id] = *detail
			return nil
		})
	}
	g.Wait()

	if len(failed) > 0 {
		sort.Ints(failed)
		return results, fmt.Errorf("steam: appdetails failed for %d of %d apps: %v",
			len(failed), len(appIDs), failed)
	}
	return results, nil
}

func (c *Client) appDetail(ctx context.Context, appID int) (*AppDetail, error) {
	key := strconv.Itoa(appID)
	if v, ok := c.details.Get(key); ok {
		detail := v.(AppDetail)
		return &detail, nil
	}

	endpoint := fmt.Sprintf("%s/api/appdetails?appids=%d", c.storeBase, appID)

	var body map[string]struct {
		Success bool      `json:"success"`
		Data    AppDetail `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, err
	}

	entry, ok := body[key]
	if !ok || !entry.Success {
		return nil, fmt.Errorf("no details for app %d", appID)
	}

	c.details.Set(key, entry.Data, gocache.DefaultExpiration)
	return &entry.Data, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
