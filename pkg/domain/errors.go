package domain

import "fmt"

// GatewayError carries the message the collaborator service returned with
// a non-2xx status, or a generic fallback when the body was unusable.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("chat service returned status %d", e.StatusCode)
}
