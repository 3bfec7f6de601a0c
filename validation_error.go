package payloadkit

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError maps field names to their validation failure messages.
// It is based on url.Values to leverage built-in string slice handling.
//
// Schema implementations return a ValidationError (possibly wrapped) from
// Load or Dump when the payload shape is wrong; the pipeline recognizes it
// with errors.As and renders the field map in the error response body.
type ValidationError url.Values

// Error implements the error interface.
// Returns a human-readable message summarizing the failed fields.
func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	var parts []string
	for _, field := range e.Fields() {
		if msgs := e[field]; len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msgs[0]))
		}
	}

	return fmt.Sprintf("validation error: %s", strings.Join(parts, ", "))
}

// NewValidationError creates an empty validation error.
func NewValidationError() ValidationError {
	return make(ValidationError)
}

// Add appends an error message for a field.
func (e ValidationError) Add(field, message string) {
	url.Values(e).Add(field, message)
}

// Get returns the first error message for a field.
func (e ValidationError) Get(field string) string {
	return url.Values(e).Get(field)
}

// Has checks if a field has any errors.
func (e ValidationError) Has(field string) bool {
	return len(e[field]) > 0
}

// IsEmpty returns true if there are no validation errors.
func (e ValidationError) IsEmpty() bool {
	return len(e) == 0
}

// Fields returns the failed field names in sorted order.
func (e ValidationError) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}

// Merge copies all messages from other into e.
func (e ValidationError) Merge(other ValidationError) {
	for field, msgs := range other {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
}

// AsValidationError unwraps err into a ValidationError. The second return
// is false when err does not carry one.
func AsValidationError(err error) (ValidationError, bool) {
	var verr ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
