// components/catalog/slugs.go
//
// Slug endpoints.
//
//   POST /api/slugs/{kind}/generate  {name, excludeId}       → {slug}
//   GET  /api/slugs/{kind}/check?slug&excludeId             → {slug, exists}
//   POST /api/slugs/{kind}/watches   {excludeId, candidate}  → {id, state}
//   GET  /api/slugs/watches/{id}                            → state
//   PUT  /api/slugs/watches/{id}     {candidate, excludeId} → state
//   DELETE /api/slugs/watches/{id}                          → 204
//
// A watch is a live validator owned by the session.  The browser submits
// every edit of the slug field with PUT and polls GET for the verdict; the
// debounce, staleness, and fail-soft rules live in slug.Validator.  The
// watch's oracle calls run with the session's credentials, not the
// request's, because they outlive the request that scheduled them.

package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/component"
	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/session"
	"github.com/yanizio/catalog-console/internal/slug"
)

// kindParam parses {kind}.  ok is false after a 404 was written.
func kindParam(w http.ResponseWriter, r *http.Request) (slug.Kind, bool) {
	k, ok := slug.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		component.Error(w, r, http.StatusNotFound, "unknown_kind", "Slugs exist for categories and products only.", nil)
	}
	return k, ok
}

func (c *Component) handleSlugGenerate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var in struct {
		Name      string  `json:"name"`
		ExcludeID slug.ID `json:"excludeId"`
	}
	if !component.DecodeJSON(w, r, &in) {
		return
	}
	s, err := c.resolver.Resolve(r.Context(), kind, in.Name, in.ExcludeID)
	if err != nil {
		backendError(w, r, err, "generate_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, map[string]string{"slug": s})
}

func (c *Component) handleSlugCheck(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	candidate := q.Get("slug")
	var exclude slug.ID
	if raw := q.Get("excludeId"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			component.Error(w, r, http.StatusBadRequest, "bad_request", "Invalid excludeId.", nil)
			return
		}
		exclude = n
	}

	exists, err := c.resolver.Check(r.Context(), kind, candidate, exclude)
	if err != nil {
		backendError(w, r, err, "check_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, map[string]any{"slug": candidate, "exists": exists})
}

type watchView struct {
	ID    string     `json:"id"`
	Kind  slug.Kind  `json:"kind"`
	State slug.State `json:"state"`
}

func (c *Component) handleWatchCreate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	s := session.FromContext(r.Context())
	if s == nil {
		component.Error(w, r, http.StatusUnauthorized, "not_logged_in", "", nil)
		return
	}
	var in struct {
		Candidate string  `json:"candidate"`
		ExcludeID slug.ID `json:"excludeId"`
	}
	if r.ContentLength != 0 && !component.DecodeJSON(w, r, &in) {
		return
	}

	// Detached from the request: the validator lives as long as the watch.
	vctx := auth.WithStore(context.Background(), s.Store)
	vctx = logger.WithContext(vctx, logger.FromContext(r.Context()).With("session", s.ID[:8]))

	oracle := c.resolver.Oracle(kind)
	v := slug.NewValidator(vctx, kind, oracle.Exists, slug.ValidatorOptions{
		Debounce:     c.debounce,
		CheckTimeout: c.checkTimeout,
	})
	id, err := s.AddWatch(v)
	if err != nil {
		v.Close()
		if errors.Is(err, session.ErrTooManyWatches) {
			component.Error(w, r, http.StatusTooManyRequests, "too_many_watches", "Close some forms and try again.", nil)
			return
		}
		component.Error(w, r, http.StatusUnauthorized, "not_logged_in", "", nil)
		return
	}
	if in.Candidate != "" {
		v.Submit(in.Candidate, in.ExcludeID)
	}
	component.JSON(w, r, http.StatusCreated, watchView{ID: id, Kind: kind, State: v.State()})
}

// watch resolves {watchID} in the session.  ok is false after a 404.
func watch(w http.ResponseWriter, r *http.Request) (string, *slug.Validator, bool) {
	id := chi.URLParam(r, "watchID")
	if s := session.FromContext(r.Context()); s != nil {
		if v, ok := s.Watch(id); ok {
			return id, v, true
		}
	}
	component.Error(w, r, http.StatusNotFound, "unknown_watch", "", nil)
	return "", nil, false
}

func (c *Component) handleWatchGet(w http.ResponseWriter, r *http.Request) {
	id, v, ok := watch(w, r)
	if !ok {
		return
	}
	component.JSON(w, r, http.StatusOK, watchView{ID: id, Kind: v.Kind(), State: v.State()})
}

func (c *Component) handleWatchSubmit(w http.ResponseWriter, r *http.Request) {
	id, v, ok := watch(w, r)
	if !ok {
		return
	}
	var in struct {
		Candidate string  `json:"candidate"`
		ExcludeID slug.ID `json:"excludeId"`
	}
	if !component.DecodeJSON(w, r, &in) {
		return
	}
	v.Submit(in.Candidate, in.ExcludeID)
	component.JSON(w, r, http.StatusOK, watchView{ID: id, Kind: v.Kind(), State: v.State()})
}

func (c *Component) handleWatchDelete(w http.ResponseWriter, r *http.Request) {
	id, _, ok := watch(w, r)
	if !ok {
		return
	}
	session.FromContext(r.Context()).RemoveWatch(id)
	w.WriteHeader(http.StatusNoContent)
}
