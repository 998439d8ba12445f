// Package errors defines the engine's structured domain errors.
// Every eligibility or validation failure surfaces one of these values so
// handlers can render a machine-readable code alongside a human message.
package errors

import "fmt"

// DomainError is a structured error with a stable machine-readable code.
type DomainError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy of the error carrying structured context,
// leaving the package-level sentinel untouched.
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// Is lets errors.Is match detail-carrying copies against the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
