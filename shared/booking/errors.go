package booking

import (
	"fmt"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
)

// ValidationCode classifies why a booking form was rejected locally
type ValidationCode string

const (
	CodeQuantityOutOfRange   ValidationCode = "quantity_out_of_range"
	CodeMissingField         ValidationCode = "missing_field"
	CodeInvalidEmail         ValidationCode = "invalid_email"
	CodeInvalidDateRange     ValidationCode = "invalid_date_range"
	CodeInvalidPaymentMethod ValidationCode = "invalid_payment_method"
)

// ValidationError blocks submission. It never involves the network.
type ValidationError struct {
	Code    ValidationCode `json:"code"`
	Field   models.Field   `json:"field,omitempty"`
	Message string         `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches on Code, so errors.Is(err, ErrInvalidEmail) works for any
// message. A sentinel with a Field also requires the field to match.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
}

var (
	ErrQuantityOutOfRange   = &ValidationError{Code: CodeQuantityOutOfRange, Message: "quantity out of range"}
	ErrMissingField         = &ValidationError{Code: CodeMissingField, Message: "missing required field"}
	ErrInvalidEmail         = &ValidationError{Code: CodeInvalidEmail, Message: "invalid email address"}
	ErrInvalidDateRange     = &ValidationError{Code: CodeInvalidDateRange, Message: "invalid date range"}
	ErrInvalidPaymentMethod = &ValidationError{Code: CodeInvalidPaymentMethod, Message: "invalid payment method"}
)

// SubmissionKind classifies a failed submission
type SubmissionKind string

const (
	ServiceRejected  SubmissionKind = "service_rejected"
	TransportFailure SubmissionKind = "transport_failure"
)

// GenericRejectionReason is shown when the service gave no usable message
const GenericRejectionReason = "Please try again"

// SubmissionError is returned alongside a Rejected result. Message is the
// user-facing reason; Err keeps the underlying cause for logs.
type SubmissionError struct {
	Kind    SubmissionKind
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
