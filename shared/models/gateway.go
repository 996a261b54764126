package models

import "github.com/go-playground/validator/v10"

// Validate checks the gateway request DTOs below
var Validate = validator.New()

// OpenSessionRequest opens a booking session on one item
type OpenSessionRequest struct {
	BookingType BookingType `json:"booking_type" validate:"required,oneof=flight hotel event"`
	ItemID      int64       `json:"item_id" validate:"required,gt=0"`
}

// UpdateFieldRequest edits one field of a session's form
type UpdateFieldRequest struct {
	Field Field  `json:"field" validate:"required,oneof=quantity customer_name customer_email customer_phone check_in_date check_out_date payment_method special_requests"`
	Value string `json:"value" validate:"max=1000"`
}

// QuoteRequest prices a form without opening a session
type QuoteRequest struct {
	BookingType BookingType `json:"booking_type" validate:"required,oneof=flight hotel event"`
	ItemID      int64       `json:"item_id" validate:"required,gt=0"`
	Form        BookingForm `json:"form"`
}

// SessionCommand is a message sent by a client over a session's websocket
type SessionCommand struct {
	Type  string `json:"type" validate:"required,oneof=update submit"`
	Field Field  `json:"field" validate:"required_if=Type update"`
	Value string `json:"value" validate:"max=1000"`
}
