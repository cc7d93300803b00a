// components/catalog/save.go
//
// Shared steps of the category and product save pipeline.
//
//   1. form validation                  → 422 validation
//   2. empty slug → generated from name (ResolveUnique)
//   3. live-validator gate              → 409 slug_taken
//   4. backend write                    → 409 slug_duplicate | 502 save_failed
//   5. staged images (products)         → per-file results, save stands
//   6. audit entry
//
// The gate only consults the watch named by X-Slug-Watch; without one the
// backend's uniqueness check is the only authority.

package catalog

import (
	"errors"
	"net/http"

	"github.com/yanizio/catalog-console/internal/component"
	"github.com/yanizio/catalog-console/internal/form"
	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/session"
	"github.com/yanizio/catalog-console/internal/slug"
)

// WatchHeader names the live validator guarding a save.
const WatchHeader = "X-Slug-Watch"

// submit validates r against formID, answering 422 itself on failure.
func submit(w http.ResponseWriter, r *http.Request, formID string) (form.Values, bool) {
	v, err := form.HandleSubmit(formID, r)
	if err == nil {
		return v, true
	}
	var ve form.ValidationError
	if errors.As(err, &ve) {
		component.Error(w, r, http.StatusUnprocessableEntity, "validation", "Please correct the highlighted fields.",
			map[string]any{"fields": ve.Fields})
		return nil, false
	}
	component.Error(w, r, http.StatusBadRequest, "bad_request", err.Error(), nil)
	return nil, false
}

// slugFor returns the slug to save: the submitted one, or one generated
// from name when the field is empty.  ok is false after a response was
// written.
func (c *Component) slugFor(w http.ResponseWriter, r *http.Request, kind slug.Kind, submitted, name string, id slug.ID) (string, bool) {
	if submitted != "" {
		return submitted, true
	}
	s, err := c.resolver.Resolve(r.Context(), kind, name, id)
	if err != nil {
		backendError(w, r, err, "save_failed")
		return "", false
	}
	logger.FromContext(r.Context()).Debugw("slug generated", "kind", kind, "name", name, "slug", s)
	return s, true
}

// gate refuses the save when the session's live validator has found the
// candidate taken.  A watch only speaks for the kind and entity it was
// checked under; any other watch is ignored.  ok is false after a 409 was
// written.
func gate(w http.ResponseWriter, r *http.Request, kind slug.Kind, id slug.ID, candidate string) bool {
	wid := r.Header.Get(WatchHeader)
	if wid == "" {
		return true
	}
	s := session.FromContext(r.Context())
	if s == nil {
		return true
	}
	v, found := s.Watch(wid)
	if !found {
		return true
	}
	if v.Kind() != kind || v.State().ExcludeID != id {
		logger.FromContext(r.Context()).Debugw("slug watch does not match save, ignored",
			"watch", wid, "watch_kind", v.Kind(), "kind", kind, "id", id)
		return true
	}
	if !v.Blocks(candidate) {
		return true
	}
	component.Error(w, r, http.StatusConflict, "slug_taken", "This slug is already in use.  Choose another.",
		map[string]any{"slug": candidate})
	return false
}
