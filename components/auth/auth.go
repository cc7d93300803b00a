// components/auth/auth.go
//
// Console authentication component – session login flow.
//
//   POST /api/session/login   {login, password} → {user, csrfToken}
//   POST /api/session/logout  → 204
//   GET  /api/session         → {loggedIn, user, csrfToken}
//
// Passwords never stay in the console: the auth service verifies them and
// returns a token pair, which is kept in the session's store.
//
//------------------------------------------------------------------------------

package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/component"
	"github.com/yanizio/catalog-console/internal/form"
	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/session"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates login functionality.
type Component struct {
	auth     *authsvc.Client
	sessions *session.Manager
	csrf     *form.CSRF
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Init captures the auth client, the session manager, and the CSRF issuer.
func (c *Component) Init(d component.Deps) error {
	if d.Auth == nil || d.Sessions == nil || d.CSRF == nil {
		return errors.New("auth component needs Auth, Sessions, and CSRF")
	}
	c.auth, c.sessions, c.csrf = d.Auth, d.Sessions, d.CSRF
	return nil
}

// Routes registers the session endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Route("/api/session", func(api chi.Router) {
		api.Get("/", c.handleSessionGET)
		api.Post("/login", c.handleLoginPOST)
		api.Post("/logout", c.handleLogoutPOST)
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

type sessionView struct {
	LoggedIn  bool          `json:"loggedIn"`
	User      *authsvc.User `json:"user"`
	CSRFToken string        `json:"csrfToken"`
}

func (c *Component) handleSessionGET(w http.ResponseWriter, r *http.Request) {
	out := sessionView{}
	if u, ok := authsvc.UserFrom(r.Context()); ok {
		out.LoggedIn, out.User = true, &u
	}
	tok, err := c.csrf.Token(component.CSRFBinding(r))
	if err != nil {
		component.Error(w, r, http.StatusInternalServerError, "internal", "", nil)
		return
	}
	out.CSRFToken = tok
	component.JSON(w, r, http.StatusOK, out)
}

func (c *Component) handleLoginPOST(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	data, err := form.HandleSubmit("auth/login", r)
	if err != nil {
		var ve form.ValidationError
		if errors.As(err, &ve) {
			component.Error(w, r, http.StatusUnprocessableEntity, "validation", "", map[string]any{"fields": ve.Fields})
			return
		}
		component.Error(w, r, http.StatusInternalServerError, "internal", "", nil)
		return
	}

	creds, err := c.auth.Login(r.Context(), data.String("login"), data.String("password"))
	switch {
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		log.Infow("login rejected", "login", data.String("login"))
		component.Error(w, r, http.StatusUnauthorized, "invalid_credentials", "Incorrect login or password.", nil)
		return
	case err != nil:
		log.Errorw("login failed", "err", err)
		component.Error(w, r, http.StatusBadGateway, "auth_unavailable", "The auth service is unavailable.", nil)
		return
	}

	s := c.sessions.Renew(w, r)
	if err := s.Store.Set(creds); err != nil {
		component.Error(w, r, http.StatusInternalServerError, "internal", "", nil)
		return
	}
	tok, err := c.csrf.Token(s.ID)
	if err != nil {
		component.Error(w, r, http.StatusInternalServerError, "internal", "", nil)
		return
	}
	log.Infow("login", "user", creds.User.Username, "role", creds.User.Role)
	u := creds.User
	component.JSON(w, r, http.StatusOK, sessionView{LoggedIn: true, User: &u, CSRFToken: tok})
}

func (c *Component) handleLogoutPOST(w http.ResponseWriter, r *http.Request) {
	if u, ok := authsvc.UserFrom(r.Context()); ok {
		logger.FromContext(r.Context()).Infow("logout", "user", u.Username)
	}
	c.sessions.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}
