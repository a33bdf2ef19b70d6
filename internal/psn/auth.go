// Package psn talks to the PlayStation Network: OAuth token exchange from a
// long-lived NPSSO cookie, and the trophy-title listing used for library
// sync.
package psn

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	authTimeout = 10 * time.Second

	// Standard client id/secret of the PlayStation Android app, required by
	// the authorize/token endpoints.
	oauthClientAuth = "MDk1MTUxNTktNzIzNy00MzcwLTliNDAtMzgwNmU2N2MwODkxOnVjUGprYTV0bnRCMktxc1A="
	oauthRedirect   = "com.scee.psxandroid.scecompcall://redirect"
	oauthScope      = "psn:mobile.v2.core psn:clientapp"
)

const (
	accessTokenKey  = "psn:access_token"
	refreshTokenKey = "psn:refresh_token"
)

// Authenticator exchanges an NPSSO cookie for access tokens and keeps them
// fresh. Tokens are held in a TTL cache so concurrent syncs share one token
// and expiry is handled by the cache, not by callers.
type Authenticator struct {
	npsso   string
	baseURL string
	client  *http.Client
	tokens  *gocache.Cache
	logger  *slog.Logger
}

// NewAuthenticator builds an authenticator against the given OAuth base URL.
func NewAuthenticator(npsso, baseURL string) *Authenticator {
	return &Authenticator{
		npsso:   npsso,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: authTimeout,
			// The authorize endpoint answers with a redirect carrying the
			// code; following it would lose the Location header.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		tokens: gocache.New(gocache.NoExpiration, 10*time.Minute),
		logger: slog.Default().With("component", "psn"),
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AccessToken returns a valid access token, exchanging or refreshing as
// needed.
func (a *Authenticator) AccessToken(ctx context.Context) (string, error) {
	if v, ok := a.tokens.Get(accessTokenKey); ok {
		return v.(string), nil
	}

	if v, ok := a.tokens.Get(refreshTokenKey); ok {
		token, err := a.requestToken(ctx, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {v.(string)},
			"scope":         {oauthScope},
			"token_format":  {"jwt"},
		})
		if err == nil {
			return token, nil
		}
		a.logger.Warn("token refresh failed, falling back to npsso exchange", "error", err)
	}

	code, err := a.authorizationCode(ctx)
	if err != nil {
		return "", err
	}
	return a.requestToken(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {oauthRedirect},
		"token_format": {"jwt"},
	})
}

// authorizationCode drives the NPSSO-cookie authorize step and pulls the
// code out of the redirect location.
func (a *Authenticator) authorizationCode(ctx context.Context) (string, error) {
	params := url.Values{
		"access_type":   {"offline"},
		"client_id":     {"09515159-7237-4370-9b40-3806e67c0891"},
		"redirect_uri":  {oauthRedirect},
		"response_type": {"code"},
		"scope":         {oauthScope},
	}
	endpoint := a.baseURL + "/authorize?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cookie", "npsso="+a.npsso)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("psn: authorize request: %w", err)
	}
	defer resp.Body.Close()

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil || location.Query().Get("code") == "" {
		return "", fmt.Errorf("psn: authorize did not yield a code; npsso may be expired")
	}
	return location.Query().Get("code"), nil
}

func (a *Authenticator) requestToken(ctx context.Context, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+oauthClientAuth)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("psn: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("psn: token endpoint returned %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("psn: decoding token response: %w", err)
	}

	// Keep the access token a minute short of its real expiry.
	ttl := time.Duration(body.ExpiresIn)*time.Second - time.Minute
	if ttl <= 0 {
		ttl = time.Minute
	}
	a.tokens.Set(accessTokenKey, body.AccessToken, ttl)
	if body.RefreshToken != "" {
		a.tokens.Set(refreshTokenKey, body.RefreshToken, gocache.NoExpiration)
	}
	return body.AccessToken, nil
}
