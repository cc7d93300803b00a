// internal/proxy/proxy.go
//
// Same-origin pass-through to the backend services.
//
// Context
// -------
// The browser talks only to the console.  Requests under a proxy prefix are
// forwarded unchanged (method, path below the prefix, query, body) to the
// configured upstream:
//
//	/api/catalog/*  → backends.catalog_url
//	/api/auth/*     → backends.auth_url
//	/api/images/*   → backends.image_url
//
// When the browser sends no Authorization header, the access token of the
// session bound to the request is injected.  An unreachable upstream answers
// 500 {"error":"Proxy error"}.  Nothing is retried, cached, or rewritten.

package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/metrics"
)

// Upstream is one proxied backend.
type Upstream struct {
	Name   string // metrics label, e.g. "catalog"
	Prefix string // console path prefix, e.g. "/api/catalog"
	Target string // backend base URL
}

// New returns a handler forwarding prefix/* to target.
func New(u Upstream, rt http.RoundTripper) (http.Handler, error) {
	target, err := url.Parse(u.Target)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy %s: invalid target %q", u.Name, u.Target)
	}
	prefix := strings.TrimRight(u.Prefix, "/")

	rp := &httputil.ReverseProxy{
		Transport: rt,
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, prefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.Out.Header.Del("Cookie")
			if pr.Out.Header.Get("Authorization") != "" {
				return
			}
			if st := auth.StoreFrom(pr.In.Context()); st != nil {
				if creds, ok := st.Get(); ok {
					pr.Out.Header.Set("Authorization", "Bearer "+creds.Tokens.AccessToken)
				}
			}
		},
		ModifyResponse: func(resp *http.Response) error {
			metrics.ProxyRequests.WithLabelValues(u.Name, metrics.StatusClass(resp.StatusCode)).Inc()
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			metrics.ProxyRequests.WithLabelValues(u.Name, "error").Inc()
			logger.FromContext(r.Context()).Errorw("proxy upstream failed",
				"upstream", u.Name, "method", r.Method, "path", r.URL.Path, "err", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Proxy error"})
		},
	}
	return rp, nil
}

// Mount registers every upstream on r under its prefix.
func Mount(r chi.Router, rt http.RoundTripper, ups ...Upstream) error {
	for _, u := range ups {
		h, err := New(u, rt)
		if err != nil {
			return err
		}
		r.Handle(strings.TrimRight(u.Prefix, "/")+"/*", h)
	}
	return nil
}
