package psn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	titlesTimeout  = 10 * time.Second
	titlesPageSize = 250
)

// TokenSource provides a valid PSN access token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client reads a user's trophy-title list, which is the PSN equivalent of a
// game library.
type Client struct {
	tokens  TokenSource
	baseURL string
	client  *http.Client
}

// NewClient builds a client against the trophy API base URL.
func NewClient(tokens TokenSource, baseURL string) *Client {
	return &Client{
		tokens:  tokens,
		baseURL: baseURL,
		client:  &http.Client{Timeout: titlesTimeout},
	}
}

// Title is one trophy title; its np communication id serves as the PSN game
// identifier, and the platform field carries one or more labels like
// "PS4,PS5".
type Title struct {
	NPCommunicationID   string `json:"npCommunicationId"`
	TrophyTitleName     string `json:"trophyTitleName"`
	TrophyTitlePlatform string `json:"trophyTitlePlatform"`
}

type titlesPage struct {
	TrophyTitles   []Title `json:"trophyTitles"`
	TotalItemCount int     `json:"totalItemCount"`
}

// UserTitles pages through the authenticated user's full trophy-title list.
func (c *Client) UserTitles(ctx context.Context) ([]Title, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var titles []Title
	for offset := 0; ; offset += titlesPageSize {
		page, err := c.titlesPage(ctx, token, offset)
		if err != nil {
			return nil, err
		}
		titles = append(titles, page.TrophyTitles...)
		if len(titles) >= page.TotalItemCount || len(page.TrophyTitles) == 0 {
			break
		}
	}
	return titles, nil
}

func (c *Client) titlesPage(ctx context.Context, token string, offset int) (*titlesPage, error) {
	endpoint := fmt.Sprintf("%s/v1/users/me/trophyTitles?limit=%d&offset=%d",
		c.baseURL, titlesPageSize, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("psn: fetching trophy titles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("psn: trophy titles returned %d", resp.StatusCode)
	}

	var page titlesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("psn: decoding trophy titles: %w", err)
	}
	return &page, nil
}
