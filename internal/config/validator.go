// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// loader.go calls validateStruct right after defaults are applied.  Any
// failure aborts startup, so the binary never runs with a missing backend
// URL or a short session secret.  Messages are flattened into one line per
// field so the boot log names every problem at once.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// validateStruct returns nil or an error listing every failing field.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
