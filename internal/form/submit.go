// internal/form/submit.go
//
// Forms subsystem: consolidated Submit helper.
//
// Context
//   Handlers want one call that reads the body, validates it, and returns the
//   clean values or a ValidationError.  Three encodings are accepted:
//
//   •  application/json: a flat object; numbers and booleans are allowed,
//      null means absent.
//   •  multipart/form-data: product saves carrying staged images.  Files
//      stay on r.MultipartForm for the caller (see Files).
//   •  application/x-www-form-urlencoded.
//
//------------------------------------------------------------------------------

package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
)

const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = 32 << 20
)

// HandleSubmit parses r and validates it against formID.  On validation
// failure it returns a ValidationError (check with IsValidationError).
func HandleSubmit(formID string, r *http.Request) (Values, error) {
	posted, err := readPosted(r)
	if err != nil {
		return nil, ValidationError{Fields: []ErrorField{{Message: err.Error()}}}
	}
	return ValidateMap(formID, posted)
}

// ValidateMap validates already-flattened values.
func ValidateMap(formID string, posted map[string]string) (Values, error) {
	clean, errs := ValidateForm(formID, posted)
	if len(errs) > 0 {
		return nil, ValidationError{Fields: errs}
	}
	return clean, nil
}

// IsValidationError reports whether err came from failed validation.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Files returns the uploaded files under field of a parsed multipart
// request, in submission order.
func Files(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

func readPosted(r *http.Request) (map[string]string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
			return nil, fmt.Errorf("Malformed upload: %v", err)
		}
		return firstValues(r.MultipartForm.Value), nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("Malformed form: %v", err)
		}
		return firstValues(r.PostForm), nil
	default:
		return decodeJSON(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	}
}

func firstValues(m map[string][]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, vs := range m {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// decodeJSON flattens a JSON object into raw strings.
func decodeJSON(body io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var in map[string]any
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("Malformed JSON: %v", err)
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case nil:
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			return nil, fmt.Errorf("Field %q must be a scalar.", k)
		}
	}
	return out, nil
}
