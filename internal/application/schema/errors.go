package schema

import (
	"fmt"
	"strings"
)

// FieldError is one entry of a 422-style validation error body, matching the
// {"loc": [...], "msg": ..., "type": "value_error"} wire shape.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError carries all field-level failures found while validating one
// inbound object. It is always client-visible, never retried.
type ValidationError struct {
	Details []FieldError `json:"detail"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Details))
	for i, d := range e.Details {
		msgs[i] = fmt.Sprintf("%s: %s", strings.Join(d.Loc, "."), d.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError creates a single-field validation error
func NewValidationError(loc []string, msg string) *ValidationError {
	return &ValidationError{Details: []FieldError{{Loc: loc, Msg: msg, Type: "value_error"}}}
}

// prefixed returns a copy of the error with every loc path prefixed, used when
// surfacing errors from nested objects.
func (e *ValidationError) prefixed(prefix string) *ValidationError {
	out := &ValidationError{Details: make([]FieldError, len(e.Details))}
	for i, d := range e.Details {
		out.Details[i] = FieldError{
			Loc:  append([]string{prefix}, d.Loc...),
			Msg:  d.Msg,
			Type: d.Type,
		}
	}
	return out
}
