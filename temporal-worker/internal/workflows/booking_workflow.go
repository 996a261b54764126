package workflows

import (
	"errors"
	"time"

	"github.com/cx-tal-miterani/travel-booking/shared/booking"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// FetchTimeout bounds one read of the item being booked
	FetchTimeout = 10 * time.Second
	// CreateBookingTimeout bounds the single create-booking call
	CreateBookingTimeout = 30 * time.Second
	// MaxFetchAttempts is how often reading the item is tried
	MaxFetchAttempts = 3
)

// BookingAttemptWorkflow runs one booking attempt: fetch the item, validate
// the form, send the booking once and re-read the item's capacity after a
// confirmation. The create-booking call is never retried.
func BookingAttemptWorkflow(ctx workflow.Context, input models.BookingAttemptInput) (models.BookingAttemptResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Booking attempt started", "attemptId", input.AttemptID, "sessionId", input.SessionID)

	state := models.BookingAttemptState{
		AttemptID: input.AttemptID,
		State:     models.StateValidating,
	}
	if err := workflow.SetQueryHandler(ctx, models.QueryGetState, func() (models.BookingAttemptState, error) {
		return state, nil
	}); err != nil {
		return models.BookingAttemptResult{}, err
	}

	fetchCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: FetchTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    MaxFetchAttempts,
		},
	})

	// Booking activity with no automatic retries
	bookCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: CreateBookingTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	reject := func(terminal models.AttemptState, kind booking.SubmissionKind, reason string) models.BookingAttemptResult {
		state.State = terminal
		state.Reason = reason
		logger.Info("Booking attempt rejected", "state", terminal, "reason", reason)
		result := booking.Rejected(input.AttemptID, reason)
		if terminal == models.StateInvalid {
			result = booking.Invalid(input.AttemptID, reason)
		}
		return models.BookingAttemptResult{
			Result:            result,
			State:             terminal,
			FailureKind:       string(kind),
			RefreshedCapacity: -1,
		}
	}

	ref := models.FetchItemInput{BookingType: input.BookingType, ItemID: input.ItemID}

	var item models.ItemSnapshot
	if err := workflow.ExecuteActivity(fetchCtx, models.ActivityFetchItem, ref).Get(ctx, &item); err != nil {
		logger.Error("Failed to fetch item", "error", err)
		kind, reason := failureOf(err)
		return reject(models.StateRejected, kind, reason), nil
	}

	if verr := booking.Validate(item, input.Form); verr != nil {
		return reject(models.StateInvalid, "", verr.Error()), nil
	}

	req, quote, err := booking.BuildRequest(item, input.Form)
	if err != nil {
		return reject(models.StateInvalid, "", err.Error()), nil
	}

	state.State = models.StateSubmitting
	state.Quote = &quote

	var created models.Booking
	if err := workflow.ExecuteActivity(bookCtx, models.ActivityCreateBooking, req).Get(ctx, &created); err != nil {
		kind, reason := failureOf(err)
		result := reject(models.StateRejected, kind, reason)
		result.Result.Quote = &quote
		return result, nil
	}

	state.State = models.StateConfirmed
	logger.Info("Booking confirmed", "reference", created.BookingReference)

	result := models.BookingAttemptResult{
		Result: models.BookingResult{
			AttemptID: input.AttemptID,
			Status:    models.ResultConfirmed,
			Reference: created.BookingReference,
			Quote:     &quote,
			Booking:   &created,
		},
		State:             models.StateConfirmed,
		RefreshedCapacity: -1,
	}

	// Capacity is informational; the booking stands either way.
	var capacity int
	if err := workflow.ExecuteActivity(fetchCtx, models.ActivityRefreshItem, ref).Get(ctx, &capacity); err != nil {
		logger.Warn("Failed to refresh item after booking", "error", err)
	} else {
		result.RefreshedCapacity = capacity
	}

	return result, nil
}

// failureOf reads the submission kind and user-facing reason off an activity
// failure. Errors without them are transport failures.
func failureOf(err error) (booking.SubmissionKind, string) {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		var reason string
		if appErr.HasDetails() && appErr.Details(&reason) == nil && reason != "" {
			kind := booking.SubmissionKind(appErr.Type())
			if kind != booking.TransportFailure {
				kind = booking.ServiceRejected
			}
			return kind, reason
		}
	}
	return booking.TransportFailure, booking.GenericRejectionReason
}
