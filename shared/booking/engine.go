package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Currency is the display currency sent with every booking request
const Currency = "SAR"

// BookingCreator is the part of the Booking Service the engine calls
type BookingCreator interface {
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
}

// Submitter drives one booking attempt to a result. The engine submits in
// process; the gateway can also hand attempts to a workflow.
type Submitter interface {
	SubmitAttempt(ctx context.Context, sessionID string, item models.InventoryItem, form models.BookingForm) (models.BookingResult, error)
}

// userMessager is implemented by service errors that carry a message meant
// for the end user
type userMessager interface {
	UserMessage() string
}

// Engine validates, prices and submits bookings
type Engine struct {
	creator BookingCreator
	logger  zerolog.Logger
}

// NewEngine creates an Engine that submits through creator
func NewEngine(creator BookingCreator, logger zerolog.Logger) *Engine {
	return &Engine{
		creator: creator,
		logger:  logger.With().Str("component", "booking-engine").Logger(),
	}
}

// BuildRequest turns a valid form into the create-booking payload. Totals are
// the unrounded quote.
func BuildRequest(item models.InventoryItem, form models.BookingForm) (*models.BookingRequest, models.Quote, error) {
	quote, err := ComputeQuote(item, form)
	if err != nil {
		return nil, models.Quote{}, err
	}

	id := item.ItemID()
	req := &models.BookingRequest{
		BookingType:     item.BookingType(),
		Quantity:        form.Quantity,
		CustomerName:    strings.TrimSpace(form.CustomerName),
		CustomerEmail:   strings.TrimSpace(form.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(form.CustomerPhone),
		PaymentMethod:   form.PaymentMethod,
		SpecialRequests: form.SpecialRequests,
		TotalPriceSAR:   quote.TotalSAR,
		TotalPriceUSD:   quote.TotalUSD,
		Currency:        Currency,
	}

	switch item.BookingType() {
	case models.BookingTypeFlight:
		req.Flight = &id
	case models.BookingTypeHotel:
		req.Hotel = &id
		req.CheckInDate = form.CheckInDate.String()
		req.CheckOutDate = form.CheckOutDate.String()
	case models.BookingTypeEvent:
		req.Event = &id
	}

	return req, quote, nil
}

// Submit validates the form and, only if it is valid, makes exactly one
// create-booking call. The returned error is nil for a confirmed booking,
// a *ValidationError when nothing was sent, and a *SubmissionError when the
// service rejected the booking or could not be reached. The result always
// carries a user-facing outcome.
func (e *Engine) Submit(ctx context.Context, item models.InventoryItem, form models.BookingForm) (models.BookingResult, error) {
	return e.submit(ctx, uuid.NewString(), "", item, form)
}

// SubmitAttempt implements Submitter
func (e *Engine) SubmitAttempt(ctx context.Context, sessionID string, item models.InventoryItem, form models.BookingForm) (models.BookingResult, error) {
	return e.submit(ctx, uuid.NewString(), sessionID, item, form)
}

func (e *Engine) submit(ctx context.Context, attemptID, sessionID string, item models.InventoryItem, form models.BookingForm) (models.BookingResult, error) {
	logger := e.logger.With().
		Str("attemptId", attemptID).
		Str("sessionId", sessionID).
		Str("item", models.ItemKey(item.BookingType(), item.ItemID())).
		Logger()

	if err := Validate(item, form); err != nil {
		logger.Debug().Err(err).Msg("Booking form invalid")
		return Invalid(attemptID, err.Error()), err
	}

	req, quote, err := BuildRequest(item, form)
	if err != nil {
		return Invalid(attemptID, err.Error()), err
	}

	logger.Info().
		Int("quantity", req.Quantity).
		Float64("totalSar", req.TotalPriceSAR).
		Msg("Submitting booking")

	// Once issued, the call runs to completion even if the caller goes away.
	booking, err := e.creator.CreateBooking(context.WithoutCancel(ctx), req)
	if err != nil {
		subErr := Classify(err)
		logger.Warn().Err(err).Str("kind", string(subErr.Kind)).Msg("Booking rejected")
		result := Rejected(attemptID, subErr.Message)
		result.Quote = &quote
		return result, subErr
	}

	if booking.BookingReference == "" {
		logger.Warn().Int64("bookingId", booking.ID).Msg("Booking confirmed without a reference")
	}
	logger.Info().Str("reference", booking.BookingReference).Msg("Booking confirmed")

	return models.BookingResult{
		AttemptID: attemptID,
		Status:    models.ResultConfirmed,
		Reference: booking.BookingReference,
		Quote:     &quote,
		Booking:   booking,
	}, nil
}

// Rejected builds a rejected result
func Rejected(attemptID, reason string) models.BookingResult {
	return models.BookingResult{
		AttemptID: attemptID,
		Status:    models.ResultRejected,
		Reason:    reason,
	}
}

// Invalid builds the result of a form that never left the engine
func Invalid(attemptID, reason string) models.BookingResult {
	return models.BookingResult{
		AttemptID: attemptID,
		Status:    models.ResultInvalid,
		Reason:    reason,
	}
}

// Classify maps a service error onto the submission taxonomy. Anything that
// does not carry a service message is treated as a transport failure.
func Classify(err error) *SubmissionError {
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return &SubmissionError{Kind: ServiceRejected, Message: msg, Err: err}
		}
	}
	return &SubmissionError{Kind: TransportFailure, Message: GenericRejectionReason, Err: err}
}

// RejectionReason extracts the user-facing reason from an engine error
func RejectionReason(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var serr *SubmissionError
	if errors.As(err, &serr) {
		return serr.Message
	}
	return GenericRejectionReason
}
