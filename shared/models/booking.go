package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodAmex         PaymentMethod = "amex"
)

// Valid reports whether the payment method is one the backend accepts
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodAmex:
		return true
	}
	return false
}

// DateLayout is the calendar date format used by the booking form and backend
const DateLayout = "2006-01-02"

// Date is a calendar date. The zero value means "not set".
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD date; anything else yields the zero Date
func ParseDate(s string) Date {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}
	}
	return Date{Time: t}
}

func (d Date) IsSet() bool { return !d.IsZero() }

func (d Date) String() string {
	if !d.IsSet() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDate(s)
	return nil
}

// Field names a user-editable booking form field
type Field string

const (
	FieldQuantity        Field = "quantity"
	FieldCustomerName    Field = "customer_name"
	FieldCustomerEmail   Field = "customer_email"
	FieldCustomerPhone   Field = "customer_phone"
	FieldCheckInDate     Field = "check_in_date"
	FieldCheckOutDate    Field = "check_out_date"
	FieldPaymentMethod   Field = "payment_method"
	FieldSpecialRequests Field = "special_requests"
)

// BookingForm is an immutable snapshot of what the user entered for one booking
type BookingForm struct {
	Quantity        int           `json:"quantity"`
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	CheckInDate     Date          `json:"check_in_date"`
	CheckOutDate    Date          `json:"check_out_date"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	SpecialRequests string        `json:"special_requests,omitempty"`
}

// NewBookingForm returns the form a booking modal opens with
func NewBookingForm() BookingForm {
	return BookingForm{
		Quantity:      1,
		PaymentMethod: PaymentMethodCard,
	}
}

// WithField returns a copy of the form with one field replaced by the raw
// user input. An unparsable quantity becomes 0 and an unparsable date is
// treated as missing; unknown fields leave the form unchanged.
func (f BookingForm) WithField(field Field, value string) BookingForm {
	switch field {
	case FieldQuantity:
		q, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			q = 0
		}
		f.Quantity = q
	case FieldCustomerName:
		f.CustomerName = value
	case FieldCustomerEmail:
		f.CustomerEmail = value
	case FieldCustomerPhone:
		f.CustomerPhone = value
	case FieldCheckInDate:
		f.CheckInDate = ParseDate(value)
	case FieldCheckOutDate:
		f.CheckOutDate = ParseDate(value)
	case FieldPaymentMethod:
		f.PaymentMethod = PaymentMethod(value)
	case FieldSpecialRequests:
		f.SpecialRequests = value
	}
	return f
}

// Quote is a computed price for a prospective booking. Totals are unrounded.
type Quote struct {
	TotalSAR float64 `json:"totalSar"`
	TotalUSD float64 `json:"totalUsd"`
	Nights   int     `json:"nights,omitempty"`
}

// Rounded returns the quote with totals rounded to 2 decimals for display
func (q Quote) Rounded() Quote {
	q.TotalSAR = roundCents(q.TotalSAR)
	q.TotalUSD = roundCents(q.TotalUSD)
	return q
}

func (q Quote) DisplaySAR() string {
	return fmt.Sprintf("SAR %.2f", roundCents(q.TotalSAR))
}

func (q Quote) DisplayUSD() string {
	return fmt.Sprintf("USD %.2f", roundCents(q.TotalUSD))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// BookingRequest is the body of a create-booking call
type BookingRequest struct {
	BookingType     BookingType   `json:"booking_type"`
	Flight          *int64        `json:"flight,omitempty"`
	Hotel           *int64        `json:"hotel,omitempty"`
	Event           *int64        `json:"event,omitempty"`
	Quantity        int           `json:"quantity"`
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	CheckInDate     string        `json:"check_in_date,omitempty"`
	CheckOutDate    string        `json:"check_out_date,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	TotalPriceSAR   float64       `json:"total_price_sar"`
	TotalPriceUSD   float64       `json:"total_price_usd"`
	Currency        string        `json:"currency"`
}

// ItemID returns whichever item reference is set on the request
func (r *BookingRequest) ItemID() int64 {
	for _, id := range []*int64{r.Flight, r.Hotel, r.Event} {
		if id != nil {
			return *id
		}
	}
	return 0
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRefunded  BookingStatus = "refunded"
)

// Booking is a booking as returned by the backend
type Booking struct {
	ID               int64           `json:"id"`
	BookingReference string          `json:"booking_reference"`
	BookingType      BookingType     `json:"booking_type"`
	Flight           *int64          `json:"flight,omitempty"`
	Hotel            *int64          `json:"hotel,omitempty"`
	Event            *int64          `json:"event,omitempty"`
	Quantity         int             `json:"quantity"`
	TotalPriceSAR    decimal.Decimal `json:"total_price_sar"`
	TotalPriceUSD    decimal.Decimal `json:"total_price_usd"`
	Currency         string          `json:"currency"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	PaymentStatus    string          `json:"payment_status"`
	Status           BookingStatus   `json:"status"`
	CustomerName     string          `json:"customer_name"`
	CustomerEmail    string          `json:"customer_email"`
	CheckInDate      *Date           `json:"check_in_date,omitempty"`
	CheckOutDate     *Date           `json:"check_out_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type ResultStatus string

const (
	ResultConfirmed ResultStatus = "confirmed"
	ResultRejected  ResultStatus = "rejected"
	// ResultInvalid means the form failed validation and nothing was sent
	ResultInvalid ResultStatus = "invalid"
)

// BookingResult is the outcome of one submission attempt
type BookingResult struct {
	AttemptID string       `json:"attemptId"`
	Status    ResultStatus `json:"status"`
	Reference string       `json:"reference,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	Quote     *Quote       `json:"quote,omitempty"`
	Booking   *Booking     `json:"booking,omitempty"`
}

func (r BookingResult) Confirmed() bool { return r.Status == ResultConfirmed }

// AttemptState is the state of a booking attempt
type AttemptState string

const (
	StateIdle       AttemptState = "idle"
	StateValidating AttemptState = "validating"
	StateInvalid    AttemptState = "invalid"
	StateSubmitting AttemptState = "submitting"
	StateConfirmed  AttemptState = "confirmed"
	StateRejected   AttemptState = "rejected"
)
