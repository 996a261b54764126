package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the authenticated account as reported by the backend
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Name      string `json:"name"`
}

// LoginRequest accepts a username or an email in Username
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// Deal is a promotional offer
type Deal struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	DealType           string          `json:"deal_type"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	OriginalPriceSAR   decimal.Decimal `json:"original_price_sar"`
	DiscountedPriceSAR decimal.Decimal `json:"discounted_price_sar"`
	OriginalPriceUSD   decimal.Decimal `json:"original_price_usd"`
	DiscountedPriceUSD decimal.Decimal `json:"discounted_price_usd"`
	ValidFrom          time.Time       `json:"valid_from"`
	ValidUntil         time.Time       `json:"valid_until"`
	TermsConditions    string          `json:"terms_conditions,omitempty"`
	IsActive           bool            `json:"is_active"`
}

// ActiveAt reports whether the deal can be applied at t
func (d *Deal) ActiveAt(t time.Time) bool {
	return d.IsActive && !t.Before(d.ValidFrom) && !t.After(d.ValidUntil)
}
