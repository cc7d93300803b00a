// internal/session/session.go
//
// Server-side console sessions.
//
// Context
//   The browser holds only a signed cookie:
//
//      <uuid>.<base64url(HMAC_SHA256(secret, uuid))>
//
//   Everything else lives in process memory, in an LRU with an idle TTL:
//   the backend credentials (an auth.MemoryStore) and the live slug
//   validators of the forms the user has open.  When a session leaves the
//   cache (evicted, expired, or destroyed at logout) its validators stop and
//   its credentials are cleared.
//
// Workflow
//   •  Manager.Middleware resolves the cookie and binds the Session, its
//      Store, and the logged-in User to the request context.
//   •  Manager.Start returns the bound Session or creates one and sets the
//      cookie (login does this).
//   •  Manager.Destroy drops the session and expires the cookie.
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/cache"
	"github.com/yanizio/catalog-console/internal/config"
	"github.com/yanizio/catalog-console/internal/metrics"
	"github.com/yanizio/catalog-console/internal/slug"
)

// MaxWatches bounds the live validators one session may hold.
const MaxWatches = 32

// ErrTooManyWatches is returned by AddWatch when the session is full.
var ErrTooManyWatches = errors.New("session: too many open slug watches")

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// Session is one logged-in (or logging-in) browser.
type Session struct {
	ID      string
	Store   *auth.MemoryStore
	Created time.Time

	mu      sync.Mutex
	watches map[string]*slug.Validator
	closed  bool
}

func newSession(id string) *Session {
	return &Session{
		ID:      id,
		Store:   &auth.MemoryStore{},
		Created: time.Now(),
		watches: make(map[string]*slug.Validator),
	}
}

// User returns the logged-in user.  ok is false before login, after logout,
// and after a refused token refresh cleared the store.
func (s *Session) User() (auth.User, bool) {
	c, ok := s.Store.Get()
	if !ok {
		return auth.User{}, false
	}
	return c.User, true
}

// AddWatch registers v and returns its id.
func (s *Session) AddWatch(v *slug.Validator) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errors.New("session: closed")
	}
	if len(s.watches) >= MaxWatches {
		return "", ErrTooManyWatches
	}
	id := uuid.NewString()
	s.watches[id] = v
	return id, nil
}

// Watch returns the validator registered under id.
func (s *Session) Watch(id string) (*slug.Validator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.watches[id]
	return v, ok
}

// RemoveWatch stops and forgets the validator under id.
func (s *Session) RemoveWatch(id string) bool {
	s.mu.Lock()
	v, ok := s.watches[id]
	delete(s.watches, id)
	s.mu.Unlock()
	if ok {
		v.Close()
	}
	return ok
}

// Watches reports how many validators are open.
func (s *Session) Watches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watches)
}

// close stops every validator and clears the credentials.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ws := s.watches
	s.watches = nil
	s.mu.Unlock()

	for _, v := range ws {
		v.Close()
	}
	_ = s.Store.Clear()
}

// -----------------------------------------------------------------------------
// Manager
// -----------------------------------------------------------------------------

// Manager issues cookies and owns the session cache.
type Manager struct {
	cookie string
	secret []byte
	ttl    time.Duration
	lru    *cache.LRU[string, *Session]
}

// NewManager builds a manager from the session config section.
func NewManager(cfg config.Session) *Manager {
	size := cfg.MaxEntries
	if size < 1 {
		size = 1000
	}
	return &Manager{
		cookie: cfg.CookieName,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		lru: cache.New(size,
			cache.WithTTL[string, *Session](cfg.TTL),
			cache.WithOnEvict(func(id string, s *Session) {
				metrics.ActiveSessions.Dec()
				s.close()
				zap.S().Debugw("session closed", "session", shortID(id))
			}),
		),
	}
}

// Len reports the live session count.
func (m *Manager) Len() int { return m.lru.Len() }

// Sweep drops expired sessions.
func (m *Manager) Sweep() int { return m.lru.Sweep() }

// Janitor sweeps every interval until ctx ends.
func (m *Manager) Janitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				zap.S().Debugw("expired sessions swept", "count", n)
			}
		}
	}
}

// Lookup returns the session named by r's cookie.
func (m *Manager) Lookup(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	id, ok := m.verify(c.Value)
	if !ok {
		return nil, false
	}
	return m.lru.Get(id)
}

// Start returns the request's session, creating one when absent.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request) *Session {
	if s := FromContext(r.Context()); s != nil {
		return s
	}
	if s, ok := m.Lookup(r); ok {
		return s
	}
	return m.create(w, r)
}

// Renew replaces the request's session, if any, with a fresh one.  Login
// calls it so a session id issued before authentication is never reused.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request) *Session {
	if s := FromContext(r.Context()); s != nil {
		m.lru.Remove(s.ID)
	} else if s, ok := m.Lookup(r); ok {
		m.lru.Remove(s.ID)
	}
	return m.create(w, r)
}

func (m *Manager) create(w http.ResponseWriter, r *http.Request) *Session {
	s := newSession(uuid.NewString())
	m.lru.Add(s.ID, s)
	metrics.ActiveSessions.Inc()
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    m.sign(s.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return s
}

// Destroy drops the request's session and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	s := FromContext(r.Context())
	if s == nil {
		s, _ = m.Lookup(r)
	}
	if s != nil {
		m.lru.Remove(s.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware binds the session, its credentials, and its user to the
// request context.  Requests without a valid cookie pass through unbound.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := m.Lookup(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := WithSession(r.Context(), s)
		ctx = auth.WithStore(ctx, s.Store)
		if u, ok := s.User(); ok {
			ctx = auth.WithUser(ctx, u)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// -----------------------------------------------------------------------------
// Context helpers
// -----------------------------------------------------------------------------

type ctxKey struct{}

// WithSession returns ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the bound session, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// -----------------------------------------------------------------------------
// Cookie signing
// -----------------------------------------------------------------------------

func (m *Manager) mac(id string) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(id))
	return h.Sum(nil)
}

func (m *Manager) sign(id string) string {
	return id + "." + base64.RawURLEncoding.EncodeToString(m.mac(id))
}

// verify returns the session id of a well-signed cookie value.
func (m *Manager) verify(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	return id, hmac.Equal(raw, m.mac(id))
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
