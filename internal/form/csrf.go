// internal/form/csrf.go
//
// Forms subsystem: stateless CSRF tokens.
//
// Context
//   The console's API is cookie-authenticated, so every unsafe request must
//   prove it came from a page the console served.  `GET /api/session`
//   hands out a token; the browser echoes it in `X-CSRF-Token`.  Tokens are
//   stateless and bound to the session id:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro+binding) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  binding – the session id ("" before login).
//
//   Verification checks the signature and that the timestamp is within
//   MaxAge.  Nothing is stored server-side.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"time"

	"github.com/yanizio/catalog-console/internal/logger"
)

const (
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig

	// HeaderName carries the token on unsafe requests.
	HeaderName = "X-CSRF-Token"

	// MaxAge bounds a token's validity.
	MaxAge = 12 * time.Hour
)

// CSRF issues and verifies tokens with one secret.
type CSRF struct {
	secret []byte
	now    func() time.Time
}

// NewCSRF returns a CSRF keyed with secret (the session secret).
func NewCSRF(secret string) *CSRF {
	return &CSRF{secret: []byte(secret), now: time.Now}
}

// Token creates a token bound to binding.
func (c *CSRF) Token(binding string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(c.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, c.sign(nonce, ts, binding)...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify reports whether tok is authentic, fresh, and bound to binding.
func (c *CSRF) Verify(tok, binding string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}
	nonce, tsBytes, sig := raw[:16], raw[16:24], raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := c.now()
	if now.Sub(issued) > MaxAge || issued.Sub(now) > time.Minute {
		return false
	}
	return hmac.Equal(sig, c.sign(nonce, tsBytes, binding))
}

func (c *CSRF) sign(nonce, ts []byte, binding string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(nonce)
	mac.Write(ts)
	mac.Write([]byte(binding))
	return mac.Sum(nil)
}

// Middleware rejects unsafe requests without a valid X-CSRF-Token.  bind
// returns the request's binding (the session id).
func (c *CSRF) Middleware(bind func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !c.Verify(r.Header.Get(HeaderName), bind(r)) {
				logger.FromContext(r.Context()).Infow("csrf token rejected")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "csrf",
					"message": "Security token invalid.  Please refresh and try again.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
