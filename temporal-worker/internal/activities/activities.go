package activities

import (
	"context"
	"errors"

	"github.com/cx-tal-miterani/travel-booking/shared/booking"
	"github.com/cx-tal-miterani/travel-booking/shared/bookingapi"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
)

// ErrTypeItemNotFound is the application error type FetchItem fails with when
// the item does not exist
const ErrTypeItemNotFound = "item_not_found"

// BookingAPI is the part of the Booking Service client the activities use
type BookingAPI interface {
	GetItem(ctx context.Context, t models.BookingType, id int64) (models.InventoryItem, error)
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
}

// Activities holds the booking activities and their Booking Service client
type Activities struct {
	api BookingAPI
}

func NewActivities(api BookingAPI) *Activities {
	return &Activities{api: api}
}

// Register registers the activities under the names the workflow calls them by
func (a *Activities) Register(r worker.ActivityRegistry) {
	r.RegisterActivityWithOptions(a.FetchItem, activity.RegisterOptions{Name: models.ActivityFetchItem})
	r.RegisterActivityWithOptions(a.CreateBooking, activity.RegisterOptions{Name: models.ActivityCreateBooking})
	r.RegisterActivityWithOptions(a.RefreshItem, activity.RegisterOptions{Name: models.ActivityRefreshItem})
}

// FetchItem loads the item being booked as a serializable snapshot
func (a *Activities) FetchItem(ctx context.Context, input models.FetchItemInput) (models.ItemSnapshot, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Fetching item", "bookingType", input.BookingType, "itemId", input.ItemID)

	item, err := a.api.GetItem(ctx, input.BookingType, input.ItemID)
	if err != nil {
		if errors.Is(err, bookingapi.ErrNotFound) {
			return models.ItemSnapshot{}, temporal.NewNonRetryableApplicationError(
				"This item is no longer available", ErrTypeItemNotFound, err, "This item is no longer available")
		}
		return models.ItemSnapshot{}, err
	}
	return models.SnapshotOf(item), nil
}

// CreateBooking sends the create-booking request once. A failure is returned
// as a non-retryable application error whose type is the submission kind and
// whose details carry the user-facing reason.
func (a *Activities) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Creating booking", "bookingType", req.BookingType, "itemId", req.ItemID(), "quantity", req.Quantity)

	b, err := a.api.CreateBooking(ctx, req)
	if err != nil {
		subErr := booking.Classify(err)
		logger.Warn("Booking rejected", "kind", subErr.Kind, "error", err)
		return nil, temporal.NewNonRetryableApplicationError(subErr.Message, string(subErr.Kind), err, subErr.Message)
	}

	logger.Info("Booking created", "reference", b.BookingReference)
	return b, nil
}

// RefreshItem re-reads an item's capacity after a booking changed it
func (a *Activities) RefreshItem(ctx context.Context, input models.FetchItemInput) (int, error) {
	item, err := a.api.GetItem(ctx, input.BookingType, input.ItemID)
	if err != nil {
		return 0, err
	}
	return item.Capacity(), nil
}
