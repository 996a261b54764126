package booking

import (
	"math"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
)

const hoursPerDay = 24

// ComputeQuote prices a prospective booking. It is pure and is meant to be
// called on every quantity or date edit. Totals are unrounded; use
// Quote.Rounded or Quote.DisplaySAR for display.
func ComputeQuote(item models.InventoryItem, form models.BookingForm) (models.Quote, error) {
	rule := item.Pricing()
	qty := float64(form.Quantity)

	switch rule.Kind {
	case models.PricingPerNightPerUnit:
		nights, err := Nights(form.CheckInDate, form.CheckOutDate)
		if err != nil {
			return models.Quote{}, err
		}
		n := float64(nights)
		return models.Quote{
			TotalSAR: rule.RateSAR * n * qty,
			TotalUSD: rule.RateUSD * n * qty,
			Nights:   nights,
		}, nil
	default:
		return models.Quote{
			TotalSAR: rule.RateSAR * qty,
			TotalUSD: rule.RateUSD * qty,
		}, nil
	}
}

// Nights is the stay length in whole days, rounded up. Both dates must be
// set and the stay must last at least one night.
func Nights(checkIn, checkOut models.Date) (int, error) {
	if !checkIn.IsSet() {
		return 0, &ValidationError{Code: CodeInvalidDateRange, Field: models.FieldCheckInDate, Message: "Check-in date is required"}
	}
	if !checkOut.IsSet() {
		return 0, &ValidationError{Code: CodeInvalidDateRange, Field: models.FieldCheckOutDate, Message: "Check-out date is required"}
	}
	nights := int(math.Ceil(checkOut.Sub(checkIn.Time).Hours() / hoursPerDay))
	if nights < 1 {
		return 0, &ValidationError{Code: CodeInvalidDateRange, Field: models.FieldCheckOutDate, Message: "Check-out date must be after check-in date"}
	}
	return nights, nil
}
