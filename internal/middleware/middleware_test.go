package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/catalog-console/internal/logger"
)

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestForceHTTPS(t *testing.T) {
	cases := []struct {
		name   string
		on     bool
		host   string
		tls    bool
		xfp    string
		status int
	}{
		{"disabled", false, "console.example.com", false, "", http.StatusOK},
		{"plain redirects", true, "console.example.com", false, "", http.StatusPermanentRedirect},
		{"tls passes", true, "console.example.com", true, "", http.StatusOK},
		{"proxy tls passes", true, "console.example.com", false, "https", http.StatusOK},
		{"localhost passes", true, "localhost:8080", false, "", http.StatusOK},
		{"loopback ip passes", true, "127.0.0.1:8080", false, "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://"+tc.host+"/products?x=1", nil)
			req.Host = tc.host
			if tc.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tc.xfp != "" {
				req.Header.Set("X-Forwarded-Proto", tc.xfp)
			}
			rr := httptest.NewRecorder()
			ForceHTTPS(tc.on)(ok()).ServeHTTP(rr, req)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			if tc.status == http.StatusPermanentRedirect {
				if loc := rr.Header().Get("Location"); loc != "https://console.example.com/products?x=1" {
					t.Fatalf("Location = %q", loc)
				}
			}
		})
	}
}

func TestSecurity_SetsHeadersWithoutOverriding(t *testing.T) {
	h := Security(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Fatalf("handler value overridden: %q", got)
	}
	if rr.Header().Get("Content-Security-Policy") == "" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing: %v", rr.Header())
	}
}

func TestRequestLog_AttachesLoggerAndLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	var scoped bool
	h := chimw.RequestID(RequestLog(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Infow("inside")
		scoped = true
		w.WriteHeader(http.StatusTeapot)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/session", nil))

	if !scoped {
		t.Fatal("handler not called")
	}
	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if id, _ := e.ContextMap()["request_id"].(string); id == "" {
			t.Fatalf("entry %q lacks request_id", e.Message)
		}
	}
	if got := entries[1].ContextMap()["status"]; got != int64(http.StatusTeapot) {
		t.Fatalf("status field = %v", got)
	}
}
