// internal/auth/transport.go
//
// Authenticating RoundTripper.
//
// Context
// -------
// Every console call to the catalog and image services goes through
// Transport.  It reads the Store bound to the request context (falling back
// to a fixed Store for the CLI) and:
//
//  1. Sets `Authorization: Bearer <access>` when the store has credentials.
//  2. On 401, when a refresh token exists, refreshes once and replays the
//     request with the new token.  Concurrent refreshes of the same token
//     share one call.
//  3. When the refresh is refused, clears the store and fails with
//     ErrSessionExpired, which handlers map to a forced logout.
//
// Requests with a body are only replayed when GetBody is set, which
// http.NewRequest does for bytes, strings, and bytes.Buffer readers.

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Refresher renews a token pair.  *Client satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// Transport injects bearer tokens and refreshes them on 401.
type Transport struct {
	Base      http.RoundTripper // nil means http.DefaultTransport
	Refresher Refresher
	Store     Store // used when the request context carries none

	sfg singleflight.Group
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	st := StoreFrom(req.Context())
	if st == nil {
		st = t.Store
	}
	if st == nil {
		return t.base().RoundTrip(req)
	}
	creds, ok := st.Get()
	if !ok {
		return t.base().RoundTrip(req)
	}

	resp, err := t.base().RoundTrip(withBearer(req, creds.Tokens.AccessToken))
	if err != nil || resp.StatusCode != http.StatusUnauthorized ||
		creds.Tokens.RefreshToken == "" || t.Refresher == nil {
		return resp, err
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	fresh, err := t.refresh(req.Context(), st, creds)
	if err != nil {
		return nil, err
	}

	replay := withBearer(req, fresh.AccessToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("auth replay body: %w", err)
		}
		replay.Body = body
	}
	return t.base().RoundTrip(replay)
}

// refresh coalesces concurrent refreshes of one token and updates st.
func (t *Transport) refresh(ctx context.Context, st Store, creds Credentials) (Tokens, error) {
	v, err, _ := t.sfg.Do(creds.Tokens.RefreshToken, func() (any, error) {
		return t.Refresher.Refresh(context.WithoutCancel(ctx), creds.Tokens.RefreshToken)
	})
	if err != nil {
		zap.S().Infow("token refresh refused, clearing credentials",
			"user", creds.User.Username, "err", err)
		_ = st.Clear()
		if errors.Is(err, ErrSessionExpired) {
			return Tokens{}, err
		}
		return Tokens{}, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	fresh := v.(Tokens)

	// Another request may already have stored this pair; keep the user.
	cur, _ := st.Get()
	cur.Tokens = fresh
	if cur.User.ID == "" {
		cur.User = creds.User
	}
	if err := st.Set(cur); err != nil {
		return Tokens{}, fmt.Errorf("auth store: %w", err)
	}
	return fresh, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func withBearer(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
