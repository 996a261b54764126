package models

import "github.com/shopspring/decimal"

// Hotel represents a hotel with a nightly room rate
type Hotel struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	City               string          `json:"city"`
	Address            string          `json:"address,omitempty"`
	StarRating         int             `json:"star_rating"`
	Description        string          `json:"description,omitempty"`
	Amenities          string          `json:"amenities,omitempty"` // comma-separated
	PricePerNightSAR   decimal.Decimal `json:"price_per_night_sar"`
	PricePerNightUSD   decimal.Decimal `json:"price_per_night_usd"`
	AvailableRooms     int             `json:"available_rooms"`
	TotalRooms         int             `json:"total_rooms"`
	CheckInTime        string          `json:"check_in_time,omitempty"`
	CheckOutTime       string          `json:"check_out_time,omitempty"`
	CancellationPolicy string          `json:"cancellation_policy,omitempty"`
	IsActive           bool            `json:"is_active"`
}

func (h *Hotel) ItemID() int64            { return h.ID }
func (h *Hotel) BookingType() BookingType { return BookingTypeHotel }
func (h *Hotel) Capacity() int            { return h.AvailableRooms }
func (h *Hotel) DisplayName() string      { return h.Name }

func (h *Hotel) Pricing() PricingRule {
	return PricingRule{
		Kind:    PricingPerNightPerUnit,
		RateSAR: h.PricePerNightSAR.InexactFloat64(),
		RateUSD: h.PricePerNightUSD.InexactFloat64(),
	}
}
