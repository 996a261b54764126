package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a ticketed event
type Event struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Venue            string          `json:"venue"`
	City             string          `json:"city"`
	Description      string          `json:"description,omitempty"`
	EventDate        time.Time       `json:"event_date"`
	DurationHours    decimal.Decimal `json:"duration_hours"`
	PriceSAR         decimal.Decimal `json:"price_sar"`
	PriceUSD         decimal.Decimal `json:"price_usd"`
	AvailableTickets int             `json:"available_tickets"`
	TotalTickets     int             `json:"total_tickets"`
	AgeRestriction   string          `json:"age_restriction,omitempty"`
	IsActive         bool            `json:"is_active"`
}

func (e *Event) ItemID() int64            { return e.ID }
func (e *Event) BookingType() BookingType { return BookingTypeEvent }
func (e *Event) Capacity() int            { return e.AvailableTickets }
func (e *Event) DisplayName() string      { return e.Name }

func (e *Event) Pricing() PricingRule {
	return PricingRule{
		Kind:    PricingFlatPerUnit,
		RateSAR: e.PriceSAR.InexactFloat64(),
		RateUSD: e.PriceUSD.InexactFloat64(),
	}
}
