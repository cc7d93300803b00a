package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServer mimics the auth service: admin/secret logs in, refresh
// token "r1" yields access "a2".
func authServer(t *testing.T, refreshes *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/auth":
			if body["login"] != "admin" || body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"tokens":{"accessToken":"a1","refreshToken":"r1","tokenType":"Bearer"},
				"user":{"id":"u-1","username":"admin","email":null,"role":"admin"}}`)
		case "/users/auth/refresh":
			if refreshes != nil {
				refreshes.Add(1)
			}
			if body["refreshToken"] != "r1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"tokens":{"accessToken":"a2","refreshToken":"r2","tokenType":"Bearer"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Login(t *testing.T) {
	c := NewClient(authServer(t, nil).URL+"/", time.Second)

	creds, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a1", creds.Tokens.AccessToken)
	assert.Equal(t, "admin", creds.User.Role)
	assert.Nil(t, creds.User.Email)

	_, err = c.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestClient_Refresh(t *testing.T) {
	c := NewClient(authServer(t, nil).URL, time.Second)

	tok, err := c.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", tok.AccessToken)

	_, err = c.Refresh(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

// catalogServer accepts only access token "a2" and echoes the request body.
func catalogServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer a2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.Copy(w, r.Body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTransport_RefreshesAndReplays(t *testing.T) {
	var refreshes, hits atomic.Int32
	ac := NewClient(authServer(t, &refreshes).URL, time.Second)
	cat := catalogServer(t, &hits)

	st := &MemoryStore{}
	require.NoError(t, st.Set(Credentials{
		Tokens: Tokens{AccessToken: "a1", RefreshToken: "r1"},
		User:   User{ID: "u-1", Username: "admin"},
	}))
	hc := &http.Client{Transport: &Transport{Refresher: ac}}

	ctx := WithStore(context.Background(), st)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, cat.URL, strings.NewReader(`{"name":"Milk"}`))
	resp, err := hc.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"Milk"}`, string(body), "body must be replayed intact")
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(1), refreshes.Load())

	got, ok := st.Get()
	require.True(t, ok)
	assert.Equal(t, "a2", got.Tokens.AccessToken)
	assert.Equal(t, "admin", got.User.Username, "refresh keeps the user")
}

func TestTransport_FailedRefreshClearsStore(t *testing.T) {
	var hits atomic.Int32
	ac := NewClient(authServer(t, nil).URL, time.Second)
	cat := catalogServer(t, &hits)

	st := &MemoryStore{}
	require.NoError(t, st.Set(Credentials{Tokens: Tokens{AccessToken: "a0", RefreshToken: "revoked"}}))
	hc := &http.Client{Transport: &Transport{Refresher: ac, Store: st}}

	_, err := hc.Get(cat.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionExpired), "got %v", err)
	_, ok := st.Get()
	assert.False(t, ok, "credentials must be cleared")
}

func TestTransport_NoCredentialsPassesThrough(t *testing.T) {
	var hits atomic.Int32
	cat := catalogServer(t, &hits)
	hc := &http.Client{Transport: &Transport{}}

	resp, err := hc.Get(cat.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	fs := NewFileStore(path)

	_, ok := fs.Get()
	assert.False(t, ok)

	want := Credentials{Tokens: Tokens{AccessToken: "a", RefreshToken: "r"}, User: User{Username: "admin"}}
	require.NoError(t, fs.Set(want))
	got, ok := NewFileStore(path).Get()
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear(), "clearing twice is fine")
	_, ok = fs.Get()
	assert.False(t, ok)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, StoreFrom(ctx))
	_, ok := UserFrom(ctx)
	assert.False(t, ok)

	st := &MemoryStore{}
	ctx = WithUser(WithStore(ctx, st), User{Username: "admin"})
	assert.Same(t, st, StoreFrom(ctx))
	u, ok := UserFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "admin", u.Username)
}
