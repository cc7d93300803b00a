// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Every form the console accepts is declared in a YAML file under
//   forms/<component>/<name>.yaml, embedded in the binary.  The definition
//   names the fields and their rules; validate.go enforces the same rules on
//   the server that the browser hints at.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → StepDef → FieldDef.
//   •  ParseFormDef parses one document and validates structural rules.
//   •  Register loads every *.yaml under an fs.FS (the embedded forms tree
//      by default, see LoadEmbedded) into the registry.
//   •  GetFormDef offers read-only access to a parsed form by ID.
//
//------------------------------------------------------------------------------

package form

import (
	"embed"
	"fmt"
	"io/fs"
	"math"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed forms
var embedded embed.FS

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// ID is namespaced by component, e.g. “catalog/product”.  A form is defined
// EITHER by a flat Field list OR by Steps.
type FormDef struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`
	Steps  []StepDef  `yaml:"steps"`
}

// FieldDef describes a single input.
type FieldDef struct {
	Name        string   `yaml:"name"        json:"name"`
	Label       string   `yaml:"label"       json:"label"`
	Type        string   `yaml:"type"        json:"type"` // text, textarea, password, email, number, checkbox, select
	Placeholder string   `yaml:"placeholder" json:"placeholder,omitempty"`
	Required    bool     `yaml:"required"    json:"required,omitempty"`
	MinLength   int      `yaml:"minlength"   json:"minlength,omitempty"`
	MaxLength   int      `yaml:"maxlength"   json:"maxlength,omitempty"`
	Min         *float64 `yaml:"min"         json:"min,omitempty"`
	Max         *float64 `yaml:"max"         json:"max,omitempty"`
	Pattern     string   `yaml:"pattern"     json:"pattern,omitempty"`
	Options     []string `yaml:"options"     json:"options,omitempty"`
	ErrorMsg    string   `yaml:"error"       json:"error,omitempty"`

	re *regexp.Regexp
}

// StepDef groups fields into a wizard step.
type StepDef struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`
}

var knownTypes = map[string]bool{
	"text": true, "textarea": true, "password": true, "email": true,
	"number": true, "checkbox": true, "select": true, "radio": true,
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by ID.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// IDs lists registered form IDs.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	return out
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef parses one YAML document.  name is used in errors only.
func ParseFormDef(raw []byte, name string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}
	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

// Register loads every “*.yaml” below root in fsys.  Later files override
// earlier ones with the same ID.
func Register(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
			return nil
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		fd, err := ParseFormDef(raw, path)
		if err != nil {
			return err
		}
		register(fd)
		return nil
	})
}

var embeddedOnce = sync.OnceValue(func() error { return Register(embedded, "forms") })

// LoadEmbedded registers the forms compiled into the binary.  Safe to call
// more than once.
func LoadEmbedded() error { return embeddedOnce() }

func register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// validateFormDef enforces structural rules YAML tags cannot express.
func validateFormDef(fd *FormDef, path string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", path)
	}
	if len(fd.Fields) > 0 && len(fd.Steps) > 0 {
		return fmt.Errorf("form definition %s: cannot have both 'fields' and 'steps'", path)
	}
	if len(fd.Fields) == 0 && len(fd.Steps) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields' or 'steps'", path)
	}

	fieldNames := make(map[string]struct{})
	check := func(f *FieldDef) error {
		if err := validateField(f, path); err != nil {
			return err
		}
		if _, dup := fieldNames[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", path, f.Name)
		}
		fieldNames[f.Name] = struct{}{}
		return nil
	}

	for i := range fd.Fields {
		if err := check(&fd.Fields[i]); err != nil {
			return err
		}
	}
	for si := range fd.Steps {
		s := &fd.Steps[si]
		if s.ID == "" {
			s.ID = fmt.Sprintf("step%d", si+1)
		}
		for fi := range s.Fields {
			if err := check(&s.Fields[fi]); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateField confirms essential attributes are present and sane, and
// compiles the pattern.
func validateField(f *FieldDef, path string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", path)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", path, f.Name)
	}
	if !knownTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unknown type %q", path, f.Name, f.Type)
	}
	if f.Pattern != "" {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", path, f.Name, err)
		}
		f.re = re
	}
	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", path, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", path, f.Name)
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return fmt.Errorf("form %s: field '%s' min greater than max", path, f.Name)
	}
	if (f.Type == "select" || f.Type == "radio") && len(f.Options) == 0 {
		return fmt.Errorf("form %s: field '%s' needs options", path, f.Name)
	}
	for _, b := range []*float64{f.Min, f.Max} {
		if b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0)) {
			return fmt.Errorf("form %s: field '%s' has a non-finite bound", path, f.Name)
		}
	}
	return nil
}
