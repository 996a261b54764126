package booking

import (
	"fmt"
	"strings"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
)

// Validate checks a form against the selected item and returns nil or a
// *ValidationError describing the first failed check. Checks run in a fixed
// order: quantity, name, email, phone, stay dates (hotels), payment method.
func Validate(item models.InventoryItem, form models.BookingForm) error {
	if form.Quantity < 1 || form.Quantity > item.Capacity() {
		return &ValidationError{
			Code:    CodeQuantityOutOfRange,
			Field:   models.FieldQuantity,
			Message: fmt.Sprintf("Quantity must be between 1 and %d", item.Capacity()),
		}
	}
	if strings.TrimSpace(form.CustomerName) == "" {
		return missing(models.FieldCustomerName, "Full name is required")
	}
	if !looksLikeEmail(form.CustomerEmail) {
		return &ValidationError{
			Code:    CodeInvalidEmail,
			Field:   models.FieldCustomerEmail,
			Message: "A valid email address is required",
		}
	}
	if strings.TrimSpace(form.CustomerPhone) == "" {
		return missing(models.FieldCustomerPhone, "Phone number is required")
	}
	if item.Pricing().Kind == models.PricingPerNightPerUnit {
		if _, err := Nights(form.CheckInDate, form.CheckOutDate); err != nil {
			return err
		}
	}
	if !form.PaymentMethod.Valid() {
		return &ValidationError{
			Code:    CodeInvalidPaymentMethod,
			Field:   models.FieldPaymentMethod,
			Message: fmt.Sprintf("Unsupported payment method %q", form.PaymentMethod),
		}
	}
	return nil
}

func missing(field models.Field, msg string) *ValidationError {
	return &ValidationError{Code: CodeMissingField, Field: field, Message: msg}
}

// looksLikeEmail only requires something@something without spaces
func looksLikeEmail(s string) bool {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, " \t") {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	return ok && local != "" && domain != ""
}
