// internal/component/respond.go
//
// JSON response helpers shared by components.  Errors are always
// {"error": "<code>", "message": "<text>"} plus optional extra keys.

package component

import (
	"encoding/json"
	"net/http"

	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/session"
)

// JSON writes v with status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Debugw("response write failed", "err", err)
	}
}

// Error writes an error body.  extra keys are merged in.
func Error(w http.ResponseWriter, r *http.Request, status int, code, msg string, extra map[string]any) {
	body := map[string]any{"error": code}
	if msg != "" {
		body["message"] = msg
	}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, r, status, body)
}

// DecodeJSON reads a JSON body into v, answering 400 on failure.  It
// reports whether the handler should continue.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		Error(w, r, http.StatusBadRequest, "bad_request", "Malformed JSON body.", nil)
		return false
	}
	return true
}

// CSRFBinding returns the session id CSRF tokens are bound to, or "".
func CSRFBinding(r *http.Request) string {
	if s := session.FromContext(r.Context()); s != nil {
		return s.ID
	}
	return ""
}
