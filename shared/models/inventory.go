package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type BookingType string

const (
	BookingTypeFlight BookingType = "flight"
	BookingTypeHotel  BookingType = "hotel"
	BookingTypeEvent  BookingType = "event"
)

var ErrUnknownBookingType = errors.New("unknown booking type")

// ParseBookingType accepts the singular form ("hotel") and the collection form ("hotels")
func ParseBookingType(s string) (BookingType, error) {
	switch s {
	case "flight", "flights":
		return BookingTypeFlight, nil
	case "hotel", "hotels":
		return BookingTypeHotel, nil
	case "event", "events":
		return BookingTypeEvent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBookingType, s)
}

// Collection returns the REST collection name for the booking type
func (t BookingType) Collection() string {
	return string(t) + "s"
}

// InventoryItem is a flight, hotel or event that can be booked
type InventoryItem interface {
	ItemID() int64
	DisplayName() string
	BookingType() BookingType
	// Capacity is the number of seats, rooms or tickets still available
	Capacity() int
	Pricing() PricingRule
}

type PricingKind string

const (
	PricingFlatPerUnit     PricingKind = "flat_per_unit"
	PricingPerNightPerUnit PricingKind = "per_night_per_unit"
)

// PricingRule describes how a total is derived from an item's rates
type PricingRule struct {
	Kind    PricingKind `json:"kind"`
	RateSAR float64     `json:"rateSar"`
	RateUSD float64     `json:"rateUsd"`
}

// ItemKey identifies an item across booking types, e.g. "hotel:12"
func ItemKey(t BookingType, id int64) string {
	return fmt.Sprintf("%s:%d", t, id)
}

// CheckItem reports an error when an item breaks the inventory invariants
func CheckItem(item InventoryItem) error {
	if item == nil {
		return errors.New("inventory item is nil")
	}
	if item.Capacity() < 0 {
		return fmt.Errorf("%s %d: negative capacity %d", item.BookingType(), item.ItemID(), item.Capacity())
	}
	p := item.Pricing()
	if p.RateSAR < 0 || p.RateUSD < 0 {
		return fmt.Errorf("%s %d: negative price", item.BookingType(), item.ItemID())
	}
	return nil
}

// DecodeItem decodes a single item of the given type from its JSON form
func DecodeItem(t BookingType, data []byte) (InventoryItem, error) {
	var item InventoryItem
	switch t {
	case BookingTypeFlight:
		item = &Flight{}
	case BookingTypeHotel:
		item = &Hotel{}
	case BookingTypeEvent:
		item = &Event{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBookingType, t)
	}
	if err := json.Unmarshal(data, item); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t, err)
	}
	return item, nil
}

// DecodeItems decodes a JSON array of items of the given type
func DecodeItems(t BookingType, data []byte) ([]InventoryItem, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", t, err)
	}
	items := make([]InventoryItem, 0, len(raw))
	for _, r := range raw {
		item, err := DecodeItem(t, r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
