package psn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) AccessToken(ctx context.Context) (string, error) {
	return string(s), nil
}

func TestUserTitlesPagination(t *testing.T) {
	// 300 titles across two pages of 250.
	const total = 300

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		fmt.Fprint(w, `{"totalItemCount": `+strconv.Itoa(total)+`, "trophyTitles": [`)
		for i := offset; i < offset+limit && i < total; i++ {
			if i > offset {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"npCommunicationId": "NPWR%05d_00", "trophyTitleName": "Game %d", "trophyTitlePlatform": "PS5"}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	client := NewClient(staticTokens("token-1"), srv.URL)
	titles, err := client.UserTitles(context.Background())

	require.NoError(t, err)
	require.Len(t, titles, total)
	assert.Equal(t, "NPWR00000_00", titles[0].NPCommunicationID)
	assert.Equal(t, "Game 299", titles[total-1].TrophyTitleName)
}

func TestUserTitlesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(staticTokens("expired"), srv.URL)
	_, err := client.UserTitles(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestAuthenticatorTokenFlow(t *testing.T) {
	var tokenRequests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authorize":
			assert.Contains(t, r.Header.Get("Cookie"), "npsso=test-npsso")
			w.Header().Set("Location", "com.scee.psxandroid.scecompcall://redirect?code=v3.ABCDEF")
			w.WriteHeader(http.StatusFound)
		case "/token":
			tokenRequests++
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
			assert.Equal(t, "v3.ABCDEF", r.Form.Get("code"))
			fmt.Fprint(w, `{"access_token": "at-1", "refresh_token": "rt-1", "expires_in": 3600}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	auth := NewAuthenticator("test-npsso", srv.URL)
	ctx := context.Background()

	token, err := auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at-1", token)

	// Second call is served from the token cache.
	token, err = auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at-1", token)
	assert.Equal(t, 1, tokenRequests)
}

func TestAuthenticatorExpiredNpsso(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No code in the redirect location.
		w.Header().Set("Location", "https://example.com/error")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	auth := NewAuthenticator("stale", srv.URL)
	_, err := auth.AccessToken(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "npsso")
}
