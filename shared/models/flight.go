package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Flight represents a bookable flight as served by the booking backend
type Flight struct {
	ID               int64           `json:"id"`
	Airline          string          `json:"airline"`
	FlightNumber     string          `json:"flight_number"`
	Origin           string          `json:"origin"`
	Destination      string          `json:"destination"`
	DepartureTime    time.Time       `json:"departure_time"`
	ArrivalTime      time.Time       `json:"arrival_time"`
	PriceSAR         decimal.Decimal `json:"price_sar"`
	PriceUSD         decimal.Decimal `json:"price_usd"`
	AvailableSeats   int             `json:"available_seats"`
	TotalSeats       int             `json:"total_seats"`
	AircraftType     string          `json:"aircraft_type,omitempty"`
	BaggageAllowance string          `json:"baggage_allowance,omitempty"`
	IsActive         bool            `json:"is_active"`
}

func (f *Flight) ItemID() int64            { return f.ID }
func (f *Flight) BookingType() BookingType { return BookingTypeFlight }
func (f *Flight) Capacity() int            { return f.AvailableSeats }

func (f *Flight) DisplayName() string {
	return fmt.Sprintf("%s %s", f.Airline, f.FlightNumber)
}

func (f *Flight) Pricing() PricingRule {
	return PricingRule{
		Kind:    PricingFlatPerUnit,
		RateSAR: f.PriceSAR.InexactFloat64(),
		RateUSD: f.PriceUSD.InexactFloat64(),
	}
}

