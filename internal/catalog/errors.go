package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound = errors.New("catalog: not found")
	ErrConflict = errors.New("catalog: conflict")

	// ErrDuplicateSlug is the backend's own uniqueness rejection of a slug.
	// The console's advisory check can miss a race; this is the authority.
	ErrDuplicateSlug = errors.New("catalog: slug already in use")
)

// StatusError is a non-2xx response from the catalog service.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string

	dupSlug bool
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "…"
	}
	return fmt.Sprintf("catalog %s %s: status %d: %s", e.Method, e.Path, e.Status, body)
}

// Is maps the status onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrDuplicateSlug:
		return e.dupSlug
	}
	return false
}

// mentionsSlug reports whether a rejection of a sluggable write is about
// the slug.  The service answers 409, or 400/422 with a validation message
// naming the field.
func mentionsSlug(status int, body string) bool {
	switch status {
	case http.StatusConflict, http.StatusBadRequest, http.StatusUnprocessableEntity:
		return strings.Contains(strings.ToLower(body), "slug")
	}
	return false
}
