package legacy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sessamekesh/blockbridge/pkg/errors"
)

// LegacyCall is the bare-text `namespace.method(arg)` form the mod still uses
// for collaboration features.
type LegacyCall struct {
	Namespace string
	Method    string
	Argument  string
}

var legacyCallPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\((.*)\)$`)

func (c *LegacyCall) Format() (string, error) {
	if c.Namespace == "" {
		return "", &errors.MissingFieldError{MessageName: "LegacyCall", FieldName: "Namespace"}
	}
	if c.Method == "" {
		return "", &errors.MissingFieldError{MessageName: "LegacyCall", FieldName: "Method"}
	}
	return fmt.Sprintf("%s.%s(%s)", c.Namespace, c.Method, c.Argument), nil
}

// Parse returns ok=false for anything that is not a single legacy call.
func Parse(text string) (*LegacyCall, bool) {
	match := legacyCallPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return nil, false
	}
	return &LegacyCall{
		Namespace: match[1],
		Method:    match[2],
		Argument:  match[3],
	}, true
}
