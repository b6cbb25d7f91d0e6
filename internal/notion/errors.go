package notion

import "fmt"

// APIError is a failed Notion request: a non-200 status, or a 200 response that
// lacks a field the caller needs.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion API error (status %d, %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion API error (status %d): %s", e.Status, e.Message)
}

func missingField(status int, field string) *APIError {
	return &APIError{Status: status, Code: "missing_field", Message: fmt.Sprintf("response has no %q", field)}
}
