package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/component"
	"github.com/yanizio/catalog-console/internal/config"
	"github.com/yanizio/catalog-console/internal/form"
	"github.com/yanizio/catalog-console/internal/session"
)

const secret = "0123456789abcdef0123456789abcdef"

func newApp(t *testing.T) http.Handler {
	t.Helper()
	require.NoError(t, form.LoadEmbedded())

	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Login, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"tokens":{"accessToken":"a","refreshToken":"r"},"user":{"id":"1","username":"`+in.Login+`","role":"admin"}}`)
	}))
	t.Cleanup(authSrv.Close)

	sessions := session.NewManager(config.Session{Secret: secret, CookieName: "console_session", TTL: time.Hour, MaxEntries: 10})
	c := &Component{}
	require.NoError(t, c.Init(component.Deps{
		Auth:     authsvc.NewClient(authSrv.URL, time.Second),
		Sessions: sessions,
		CSRF:     form.NewCSRF(secret),
	}))
	r := chi.NewRouter()
	r.Use(sessions.Middleware)
	c.Routes(r)
	return r
}

func post(h http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogin_Flow(t *testing.T) {
	h := newApp(t)

	rec := post(h, "/api/session/login", `{"login":"ann","password":"right"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view sessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.LoggedIn)
	assert.Equal(t, "ann", view.User.Username)
	assert.NotEmpty(t, view.CSRFToken)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/session/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.LoggedIn)

	rec = post(h, "/api/session/logout", "", cookies[0])
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/session/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.False(t, view.LoggedIn)
	assert.Nil(t, view.User)
}

func TestLogin_Rejections(t *testing.T) {
	h := newApp(t)

	rec := post(h, "/api/session/login", `{"login":"ann","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_credentials")
	assert.Empty(t, rec.Result().Cookies())

	rec = post(h, "/api/session/login", `{"login":"ann"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"password"`)
}
