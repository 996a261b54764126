package bookingapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthenticated is returned for any 401. The client's token has
	// already been cleared when it is seen.
	ErrUnauthenticated = errors.New("booking service: not authenticated")
	ErrNotFound        = errors.New("booking service: not found")
)

// APIError is a non-2xx response from the Booking Service
type APIError struct {
	StatusCode int
	// Message is the service's own explanation, empty if it gave none
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("booking service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("booking service returned status %d: %s", e.StatusCode, e.Message)
}

// UserMessage is the message to show the end user
func (e *APIError) UserMessage() string {
	return e.Message
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// errorBody covers the shapes the backend uses: {"error": ..., "details": ...},
// {"error": ..., "missing_fields": [...]} and the framework's {"detail": ...}
type errorBody struct {
	Error         string          `json:"error"`
	Detail        string          `json:"detail"`
	Details       json.RawMessage `json:"details"`
	MissingFields []string        `json:"missing_fields"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(eb.Error)
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(eb.Detail)
	}
	if len(eb.MissingFields) > 0 {
		if apiErr.Message == "" {
			apiErr.Message = "Missing required fields"
		}
		apiErr.Message = fmt.Sprintf("%s: %s", apiErr.Message, strings.Join(eb.MissingFields, ", "))
		apiErr.Details, _ = json.Marshal(eb.MissingFields)
	} else if len(eb.Details) > 0 && string(eb.Details) != "null" {
		apiErr.Details = eb.Details
	}
	return apiErr
}
