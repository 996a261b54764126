package mocks

import (
	"context"

	"github.com/cx-tal-miterani/travel-booking/shared/booking"
	"github.com/cx-tal-miterani/travel-booking/shared/bookingapi"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/stretchr/testify/mock"
)

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) ListInventory(ctx context.Context, token string, t models.BookingType, filters bookingapi.Filters) ([]models.InventoryItem, error) {
	args := m.Called(ctx, token, t, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryItem), args.Error(1)
}

func (m *MockBookingService) Quote(ctx context.Context, token string, t models.BookingType, itemID int64, form models.BookingForm) (booking.Snapshot, error) {
	args := m.Called(ctx, token, t, itemID, form)
	return args.Get(0).(booking.Snapshot), args.Error(1)
}

func (m *MockBookingService) OpenSession(ctx context.Context, token string, t models.BookingType, itemID int64) (booking.Snapshot, error) {
	args := m.Called(ctx, token, t, itemID)
	return args.Get(0).(booking.Snapshot), args.Error(1)
}

func (m *MockBookingService) GetSession(ctx context.Context, sessionID string) (booking.Snapshot, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(booking.Snapshot), args.Error(1)
}

func (m *MockBookingService) UpdateSession(ctx context.Context, sessionID string, field models.Field, value string) (booking.Snapshot, error) {
	args := m.Called(ctx, sessionID, field, value)
	return args.Get(0).(booking.Snapshot), args.Error(1)
}

func (m *MockBookingService) ReplaceForm(ctx context.Context, sessionID string, form models.BookingForm) (booking.Snapshot, error) {
	args := m.Called(ctx, sessionID, form)
	return args.Get(0).(booking.Snapshot), args.Error(1)
}

func (m *MockBookingService) SubmitSession(ctx context.Context, sessionID string) (models.BookingResult, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(models.BookingResult), args.Error(1)
}

func (m *MockBookingService) CloseSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockBookingService) SessionItemKey(sessionID string) (string, error) {
	args := m.Called(sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, token string, bookingID int64) (*models.Booking, error) {
	args := m.Called(ctx, token, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context, token string) ([]models.Booking, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *MockBookingService) ListDeals(ctx context.Context, token string) ([]models.Deal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Deal), args.Error(1)
}

func (m *MockBookingService) Catalog(ctx context.Context, token string, filters map[models.BookingType]bookingapi.Filters) (*bookingapi.Catalog, error) {
	args := m.Called(ctx, token, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingapi.Catalog), args.Error(1)
}
