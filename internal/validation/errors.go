package validation

import (
	"fmt"
	"sort"
	"strings"
)

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func newFieldError(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Errors maps field names (section ids or heading, subheading, backgroundColor)
// to messages.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records err when it is non-nil.
func (e Errors) Add(err *FieldError) {
	if err != nil {
		e[err.Field] = err.Message
	}
}

// Err returns nil when there are no errors, so callers never hold a typed nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
