package booking

import (
	"context"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

// serviceError mimics a Booking Service error carrying a user message
type serviceError struct {
	message string
}

func (e *serviceError) Error() string       { return "booking service: " + e.message }
func (e *serviceError) UserMessage() string { return e.message }

func testFlight(price float64, seats int) *models.Flight {
	return &models.Flight{
		ID:             7,
		Airline:        "Saudia",
		FlightNumber:   "SV1020",
		Origin:         "RUH",
		Destination:    "JED",
		PriceSAR:       decimal.NewFromFloat(price),
		PriceUSD:       decimal.NewFromFloat(price / 3.75),
		AvailableSeats: seats,
	}
}

func testHotel(nightly float64, rooms int) *models.Hotel {
	return &models.Hotel{
		ID:               12,
		Name:             "Riyadh Palace",
		City:             "Riyadh",
		PricePerNightSAR: decimal.NewFromFloat(nightly),
		PricePerNightUSD: decimal.NewFromFloat(nightly / 3.75),
		AvailableRooms:   rooms,
	}
}

func testEvent(price float64, tickets int) *models.Event {
	return &models.Event{
		ID:               3,
		Name:             "Riyadh Season Concert",
		City:             "Riyadh",
		PriceSAR:         decimal.NewFromFloat(price),
		PriceUSD:         decimal.NewFromFloat(price / 3.75),
		AvailableTickets: tickets,
	}
}

func validForm() models.BookingForm {
	f := models.NewBookingForm()
	f.CustomerName = "Sara Al-Harbi"
	f.CustomerEmail = "sara@example.com"
	f.CustomerPhone = "+966500000000"
	return f
}

func validHotelForm() models.BookingForm {
	f := validForm()
	f.CheckInDate = models.ParseDate("2024-01-10")
	f.CheckOutDate = models.ParseDate("2024-01-13")
	return f
}
