package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGithubOAuth_GetAuthURL(t *testing.T) {
	g := NewGithubOAuth("test-client-id", "test-secret", "http://example.com/callback")

	url := g.GetAuthURL("test-state")

	assert.Contains(t, url, "github.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "redirect_uri=")
}

func newGithubServer(t *testing.T, user map[string]interface{}, emails []map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_test", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testOAuth(srv *httptest.Server) *GithubOAuth {
	g := NewGithubOAuth("id", "secret", "http://localhost/callback")
	g.config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	g.apiBase = srv.URL
	return g
}

func TestGithubOAuth_FetchUser(t *testing.T) {
	srv := newGithubServer(t, map[string]interface{}{
		"id": 12345, "login": "lifter", "email": "lifter@example.com", "avatar_url": "https://a/x.png",
	}, nil)

	user, err := testOAuth(srv).FetchUser(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.ID)
	assert.Equal(t, "lifter", user.Login)
	assert.Equal(t, "lifter@example.com", user.Email)
}

func TestGithubOAuth_FetchUser_PrimaryEmailFallback(t *testing.T) {
	srv := newGithubServer(t, map[string]interface{}{"id": 1, "login": "runner"}, []map[string]interface{}{
		{"email": "old@example.com", "primary": false, "verified": true},
		{"email": "main@example.com", "primary": true, "verified": true},
	})

	user, err := testOAuth(srv).FetchUser(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", user.Email)
}
