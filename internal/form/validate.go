// internal/form/validate.go
//
// Forms subsystem: server-side validation and sanitization.
//
// Context
//   Handlers receive submissions as JSON or multipart bodies.  Both are
//   flattened to name → raw string (see submit.go) and checked here against
//   the FormDef: required, length, pattern, number bounds, checkbox, and
//   option membership.  The result is a Values map of typed, trimmed values
//   business logic can trust, or a list of per-field errors.
//
// Notes
//   •  Values are not HTML-escaped.  The console answers JSON; escaping is the
//      renderer's job and would corrupt names stored in the catalog.
//   •  Numbers are float64.  Values.Int truncates.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// Error types
// -----------------------------------------------------------------------------

// ErrorField describes a single validation failure.  An empty Name is a
// form-level message.
type ErrorField struct {
	Name    string `json:"field"`
	Message string `json:"message"`
}

// ValidationError wraps field failures.  Handlers answer it with 422.
type ValidationError struct {
	Fields []ErrorField `json:"fields"`
}

func (ve ValidationError) Error() string {
	if len(ve.Fields) == 1 && ve.Fields[0].Name != "" {
		return fmt.Sprintf("form validation failed: %s: %s", ve.Fields[0].Name, ve.Fields[0].Message)
	}
	return "form validation failed"
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// ValidateForm checks posted values against formID.  It returns sanitized
// values and any field errors; a non-empty error slice means reject.
func ValidateForm(formID string, posted map[string]string) (Values, []ErrorField) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil, []ErrorField{{Name: "", Message: "Unknown form."}}
	}

	var errs []ErrorField
	clean := make(Values)

	for _, f := range flattenFields(fd) {
		raw, present := posted[f.Name]
		raw = strings.TrimSpace(raw)
		if f.Type == "checkbox" {
			if present {
				clean[f.Name] = truthy(raw)
			}
			continue
		}
		if raw == "" {
			if f.Required {
				errs = append(errs, ErrorField{f.Name, requiredMsg(&f)})
			}
			continue
		}

		val, perr := validateAndSanitize(&f, raw)
		if perr != "" {
			errs = append(errs, ErrorField{f.Name, perr})
			continue
		}
		clean[f.Name] = val
	}

	return clean, errs
}

// flattenFields returns all FieldDefs regardless of step structure.
func flattenFields(fd *FormDef) []FieldDef {
	if len(fd.Steps) == 0 {
		return fd.Fields
	}
	var out []FieldDef
	for _, s := range fd.Steps {
		out = append(out, s.Fields...)
	}
	return out
}

// -----------------------------------------------------------------------------
// Field-level helpers
// -----------------------------------------------------------------------------

func validateAndSanitize(f *FieldDef, val string) (any, string) {
	switch f.Type {
	case "text", "textarea":
		if msg := lengthCheck(f, val); msg != "" {
			return nil, msg
		}
		if f.re != nil && !f.re.MatchString(val) {
			return nil, patternMsg(f)
		}
		return val, ""

	case "email":
		if msg := lengthCheck(f, val); msg != "" {
			return nil, msg
		}
		if _, err := mail.ParseAddress(val); err != nil {
			return nil, invalidMsg(f)
		}
		return val, ""

	case "password":
		if msg := lengthCheck(f, val); msg != "" {
			return nil, msg
		}
		return val, ""

	case "number":
		n, err := strconv.ParseFloat(strings.Replace(val, ",", ".", 1), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, invalidMsg(f)
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Sprintf("Must be at least %s.", formatBound(*f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return nil, fmt.Sprintf("Must be at most %s.", formatBound(*f.Max))
		}
		return n, ""

	case "select", "radio":
		if !optionAllowed(f.Options, val) {
			return nil, invalidMsg(f)
		}
		return val, ""

	default:
		return nil, fmt.Sprintf("Unsupported field type %q.", f.Type)
	}
}

// lengthCheck validates minlength / maxlength rules in characters.
func lengthCheck(f *FieldDef, s string) string {
	n := utf8.RuneCountInString(s)
	if f.MinLength > 0 && n < f.MinLength {
		return fmt.Sprintf("Must be at least %d characters.", f.MinLength)
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return fmt.Sprintf("Must be at most %d characters.", f.MaxLength)
	}
	return ""
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "", "0", "false", "off", "no":
		return false
	}
	return true
}

func optionAllowed(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

func formatBound(b float64) string { return strconv.FormatFloat(b, 'f', -1, 64) }

// user-friendly default messages
func requiredMsg(f *FieldDef) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return "This field is required."
}
func invalidMsg(f *FieldDef) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return "Invalid input."
}
func patternMsg(f *FieldDef) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return "Input does not match required format."
}

// -----------------------------------------------------------------------------
// Values
// -----------------------------------------------------------------------------

// Values holds sanitized submissions.  Absent optional fields are missing.
type Values map[string]any

// String returns the text value of name, or "".
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Float returns the number value of name, or 0.
func (v Values) Float(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

// Int returns the number value of name truncated to int64, or 0.
func (v Values) Int(name string) int64 { return int64(v.Float(name)) }

// IntPtr returns nil when name was not submitted.
func (v Values) IntPtr(name string) *int {
	f, ok := v[name].(float64)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

// Int64Ptr returns nil when name was not submitted.
func (v Values) Int64Ptr(name string) *int64 {
	f, ok := v[name].(float64)
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

// FloatPtr returns nil when name was not submitted.
func (v Values) FloatPtr(name string) *float64 {
	f, ok := v[name].(float64)
	if !ok {
		return nil
	}
	return &f
}

// Bool returns the checkbox value of name.  Unsubmitted is false.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// BoolPtr returns nil when the checkbox was not submitted at all.
func (v Values) BoolPtr(name string) *bool {
	b, ok := v[name].(bool)
	if !ok {
		return nil
	}
	return &b
}
