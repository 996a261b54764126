package workflows

import (
	"errors"
	"testing"

	"github.com/cx-tal-miterani/travel-booking/shared/booking"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/cx-tal-miterani/travel-booking/temporal-worker/internal/activities"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type BookingWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *BookingWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	activities.NewActivities(nil).Register(s.env)
}

func (s *BookingWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func TestBookingWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(BookingWorkflowTestSuite))
}

func flightSnapshot(capacity int) models.ItemSnapshot {
	return models.ItemSnapshot{
		Type:      models.BookingTypeFlight,
		ID:        7,
		Name:      "Saudia SV1020",
		Available: capacity,
		Rule:      models.PricingRule{Kind: models.PricingFlatPerUnit, RateSAR: 500, RateUSD: 133.33},
	}
}

func validInput() models.BookingAttemptInput {
	form := models.NewBookingForm()
	form.Quantity = 2
	form.CustomerName = "Sara Ahmed"
	form.CustomerEmail = "sara@example.com"
	form.CustomerPhone = "+966500000000"
	return models.BookingAttemptInput{
		AttemptID:   "attempt-1",
		SessionID:   "session-1",
		BookingType: models.BookingTypeFlight,
		ItemID:      7,
		Form:        form,
	}
}

func (s *BookingWorkflowTestSuite) result() models.BookingAttemptResult {
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result models.BookingAttemptResult
	s.NoError(s.env.GetWorkflowResult(&result))
	return result
}

func (s *BookingWorkflowTestSuite) TestWorkflow_Constants() {
	s.Equal(3, MaxFetchAttempts)
	s.Greater(CreateBookingTimeout, FetchTimeout)
}

func (s *BookingWorkflowTestSuite) TestWorkflow_Confirmed() {
	s.env.OnActivity(models.ActivityFetchItem, mock.Anything, mock.Anything).Return(flightSnapshot(40), nil).Once()
	s.env.OnActivity(models.ActivityCreateBooking, mock.Anything, mock.MatchedBy(func(req *models.BookingRequest) bool {
		return req.ItemID() == 7 && req.Quantity == 2 && req.TotalPriceSAR == 1000 && req.Currency == booking.Currency
	})).Return(&models.Booking{ID: 1, BookingReference: "BK-1001", Status: models.BookingStatusConfirmed}, nil).Once()
	s.env.OnActivity(models.ActivityRefreshItem, mock.Anything, mock.Anything).Return(38, nil).Once()

	s.env.ExecuteWorkflow(BookingAttemptWorkflow, validInput())

	result := s.result()
	s.Equal(models.StateConfirmed, result.State)
	s.True(result.Result.Confirmed())
	s.Equal("BK-1001", result.Result.Reference)
	s.Equal("attempt-1", result.Result.AttemptID)
	s.Equal(38, result.RefreshedCapacity)
	s.Empty(result.FailureKind)
}

func (s *BookingWorkflowTestSuite) TestWorkflow_InvalidFormNeverBooks() {
	input := validInput()
	input.Form.CustomerEmail = "not-an-email"

	s.env.OnActivity(models.ActivityFetchItem, mock.Anything, mock.Anything).Return(flightSnapshot(40), nil).Once()

	s.env.ExecuteWorkflow(BookingAttemptWorkflow, input)

	result := s.result()
	s.Equal(models.StateInvalid, result.State)
	s.Equal(models.ResultInvalid, result.Result.Status)
	s.Equal("attempt-1", result.Result.AttemptID)
	s.Equal("A valid email address is required", result.Result.Reason)
}

func (s *BookingWorkflowTestSuite) TestWorkflow_QuantityAboveCapacity() {
	input := validInput()
	input.Form.Quantity = 5

	s.env.OnActivity(models.ActivityFetchItem, mock.Anything, mock.Anything).Return(flightSnapshot(4), nil).Once()

	s.env.ExecuteWorkflow(BookingAttemptWorkflow, input)

	result := s.result()
	s.Equal(models.StateInvalid, result.State)
	s.Equal("Quantity must be between 1 and 4", result.Result.Reason)
}

func (s *BookingWorkflowTestSuite) TestWorkflow_ServiceRejection() {
	s.env.OnActivity(models.ActivityFetchItem, mock.Anything, mock.Anything).Return(flightSnapshot(40), nil).Once()
	s.env.OnActivity(models.ActivityCreateBooking, mock.Anything, mock.Anything).Return(nil,
		temporal.NewNonRetryableApplicationError("Not enough seats available", string(booking.ServiceRejected), nil, "Not enough seats available")).Once()

	s.env.ExecuteWorkflow(BookingAttemptWorkflow, validInput())

	result := s.result()
	s.Equal(models.StateRejected, result.State)
	s.Equal(string(booking.ServiceRejected), result.FailureKind)
	s.Equal("Not enough seats available", result.Result.Reason)
	s.NotNil(result.Result.Quote)
	s.Equal(-1, result.RefreshedCapacity)
}

func (s *BookingWorkflowTestSuite) TestWorkflow_CreateBookingIsNotRetried() {
	s.env.OnActivity(models.ActivityFetchItem, mock.Anything, mock.Anything).Return(flightSnapshot(40), nil).Once()
	s.env.OnActivity(models.ActivityCreateBooking, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	s.env.ExecuteWorkflow(BookingAttemptWorkflow, validInput())

	result := s.result()
	s.Equal(models.StateRejected, result.State)
	s.Equal(string(booking.TransportFailure), result.FailureKind)
	s.Equal(booking.GenericRejectionReason, result.Result.Reason)
}

func (s *BookingWorkflowTestSuite) TestWorkflow_ItemNotFound() {
	s.env.OnActivity(models.ActivityFetchItem, mock.Anything, mock.Anything).Return(models.ItemSnapshot{},
		temporal.NewNonRetryableApplicationError("This item is no longer available", activities.ErrTypeItemNotFound, nil, "This item is no longer available")).Once()

	s.env.ExecuteWorkflow(BookingAttemptWorkflow, validInput())

	result := s.result()
	s.Equal(models.StateRejected, result.State)
	s.Equal(string(booking.ServiceRejected), result.FailureKind)
	s.Equal("This item is no longer available", result.Result.Reason)
}

func (s *BookingWorkflowTestSuite) TestWorkflow_RefreshFailureKeepsConfirmation() {
	s.env.OnActivity(models.ActivityFetchItem, mock.Anything, mock.Anything).Return(flightSnapshot(40), nil).Once()
	s.env.OnActivity(models.ActivityCreateBooking, mock.Anything, mock.Anything).
		Return(&models.Booking{ID: 2, BookingReference: "BK-1002"}, nil).Once()
	s.env.OnActivity(models.ActivityRefreshItem, mock.Anything, mock.Anything).
		Return(0, temporal.NewNonRetryableApplicationError("down", "transport", nil))

	s.env.ExecuteWorkflow(BookingAttemptWorkflow, validInput())

	result := s.result()
	s.Equal(models.StateConfirmed, result.State)
	s.Equal("BK-1002", result.Result.Reference)
	s.Equal(-1, result.RefreshedCapacity)
}

func (s *BookingWorkflowTestSuite) TestWorkflow_QueryState() {
	s.env.OnActivity(models.ActivityFetchItem, mock.Anything, mock.Anything).Return(flightSnapshot(40), nil).Once()
	s.env.OnActivity(models.ActivityCreateBooking, mock.Anything, mock.Anything).
		Return(&models.Booking{ID: 3, BookingReference: "BK-1003"}, nil).Once()
	s.env.OnActivity(models.ActivityRefreshItem, mock.Anything, mock.Anything).Return(38, nil).Once()

	s.env.ExecuteWorkflow(BookingAttemptWorkflow, validInput())
	s.True(s.env.IsWorkflowCompleted())

	val, err := s.env.QueryWorkflow(models.QueryGetState)
	s.Require().NoError(err)

	var state models.BookingAttemptState
	s.Require().NoError(val.Get(&state))
	s.Equal(models.StateConfirmed, state.State)
	s.Equal("attempt-1", state.AttemptID)
	s.Require().NotNil(state.Quote)
	s.Equal(1000.0, state.Quote.TotalSAR)
}

func TestFailureOf(t *testing.T) {
	kind, reason := failureOf(errors.New("boom"))
	if kind != booking.TransportFailure || reason != booking.GenericRejectionReason {
		t.Fatalf("got %s %q", kind, reason)
	}

	kind, reason = failureOf(temporal.NewApplicationError("Sold out", "unexpected_type", "Sold out"))
	if kind != booking.ServiceRejected || reason != "Sold out" {
		t.Fatalf("got %s %q", kind, reason)
	}
}
