package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/travel-booking/shared/booking"
	"github.com/cx-tal-miterani/travel-booking/shared/bookingapi"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

// WorkflowID is the id of the booking attempt workflow for a session. One
// session runs at most one attempt at a time.
func WorkflowID(sessionID string) string {
	return "booking-" + sessionID
}

// TemporalSubmitter runs each booking attempt as a workflow on the worker
type TemporalSubmitter struct {
	temporalClient client.Client
	taskQueue      string
	logger         zerolog.Logger
}

func NewTemporalSubmitter(temporalClient client.Client, taskQueue string, logger zerolog.Logger) *TemporalSubmitter {
	return &TemporalSubmitter{
		temporalClient: temporalClient,
		taskQueue:      taskQueue,
		logger:         logger.With().Str("component", "temporal-submitter").Logger(),
	}
}

// TemporalSubmitters uses the same workflow submitter for every caller. The
// worker books with its own service credential.
func TemporalSubmitters(s *TemporalSubmitter) SubmitterFactory {
	return func(*bookingapi.Client) booking.Submitter {
		return s
	}
}

func (s *TemporalSubmitter) SubmitAttempt(ctx context.Context, sessionID string, item models.InventoryItem, form models.BookingForm) (models.BookingResult, error) {
	attemptID := uuid.NewString()
	input := models.BookingAttemptInput{
		AttemptID:   attemptID,
		SessionID:   sessionID,
		BookingType: item.BookingType(),
		ItemID:      item.ItemID(),
		Form:        form,
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:                                       WorkflowID(sessionID),
		TaskQueue:                                s.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}

	// The attempt must not be abandoned half way once it has been started.
	ctx = context.WithoutCancel(ctx)

	run, err := s.temporalClient.ExecuteWorkflow(ctx, workflowOptions, models.WorkflowBookingAttempt, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return booking.Rejected(attemptID, ErrSubmissionInFlight.Error()), ErrSubmissionInFlight
		}
		s.logger.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to start booking workflow")
		return booking.Rejected(attemptID, booking.GenericRejectionReason), &booking.SubmissionError{
			Kind:    booking.TransportFailure,
			Message: booking.GenericRejectionReason,
			Err:     fmt.Errorf("failed to start workflow: %w", err),
		}
	}

	var out models.BookingAttemptResult
	if err := run.Get(ctx, &out); err != nil {
		s.logger.Error().Err(err).Str("workflowId", run.GetID()).Msg("Booking workflow failed")
		return booking.Rejected(attemptID, booking.GenericRejectionReason), &booking.SubmissionError{
			Kind:    booking.TransportFailure,
			Message: booking.GenericRejectionReason,
			Err:     err,
		}
	}

	s.logger.Info().
		Str("workflowId", run.GetID()).
		Str("state", string(out.State)).
		Int("refreshedCapacity", out.RefreshedCapacity).
		Msg("Booking workflow completed")

	if out.Result.Confirmed() {
		return out.Result, nil
	}
	kind := booking.SubmissionKind(out.FailureKind)
	if kind == "" {
		kind = booking.ServiceRejected
	}
	return out.Result, &booking.SubmissionError{Kind: kind, Message: out.Result.Reason}
}
