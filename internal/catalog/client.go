// internal/catalog/client.go
//
// Catalog service client.
//
// Context
// -------
// The catalog service owns categories, products, branches, and branch
// bindings.  The console reads and writes them through this client; the
// browser may also reach the same service through the pass-through proxy.
// Authentication is not handled here: the *http.Client is expected to carry
// an auth.Transport, and the request context the session's token store.
//
// Notes
// -----
//   • Lists come in two shapes: categories are paged `{items, meta}`,
//     everything else is a bare array.  A non-array body is read as empty.
//   • Create responses are either the entity or `{data: entity}`.
//   • Every write is counted in metrics.BackendSaves by entity and outcome.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/metrics"
)

// DefaultScanLimit is the page size used to list every category slug.
const DefaultScanLimit = 5000

const maxErrorBody = 64 << 10

// Client is safe for concurrent use.
type Client struct {
	base      string
	http      *http.Client
	scanLimit int
}

// Option tunes a Client.
type Option func(*Client)

// WithScanLimit sets the page size used by Slugs.
func WithScanLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.scanLimit = n
		}
	}
}

// New returns a client for baseURL.  hc nil means http.DefaultClient.
func New(baseURL string, hc *http.Client, opts ...Option) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	c := &Client{
		base:      strings.TrimRight(baseURL, "/"),
		http:      hc,
		scanLimit: DefaultScanLimit,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

/*──────────────────────────── transport ───────────────────────────────────*/

// call performs one request and returns the raw 2xx body.
func (c *Client) call(ctx context.Context, method, path string, q url.Values, in any, sluggable bool) (json.RawMessage, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("catalog %s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	target := c.base + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.FromContext(ctx).Debugw("catalog call",
		"method", method, "path", path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Body:    string(raw),
			dupSlug: sluggable && mentionsSlug(resp.StatusCode, string(raw)),
		}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog %s %s: read: %w", method, path, err)
	}
	return raw, nil
}

// write wraps call for mutations and records the outcome.
func (c *Client) write(ctx context.Context, entity, method, path string, in any, sluggable bool) (json.RawMessage, error) {
	raw, err := c.call(ctx, method, path, nil, in, sluggable)
	metrics.BackendSaves.WithLabelValues(entity, outcome(err)).Inc()
	return raw, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDuplicateSlug):
		return "duplicate_slug"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

/*──────────────────────────── decoding ────────────────────────────────────*/

// decodeList reads a bare JSON array; anything else yields an empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("catalog: decode list: %w", err)
	}
	return out, nil
}

// decodeEntity reads an entity or its {data: …} envelope.  id reports the
// decoded entity's id so the envelope is only tried when needed.
func decodeEntity[T any](raw json.RawMessage, id func(T) int64) (T, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("catalog: decode: %w", err)
	}
	if id(v) != 0 {
		return v, nil
	}
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && id(env.Data) != 0 {
		return env.Data, nil
	}
	return v, nil
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}
