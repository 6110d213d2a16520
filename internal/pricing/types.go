// Package pricing turns a cart into priced lines. It resolves at most one
// item discount per line, applies an order coupon, and splits amounts
// proportionally. It performs no I/O: callers load catalog state and pass it in.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one requested cart entry.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Product is the catalog state the calculator needs for a line.
type Product struct {
	ID         uuid.UUID
	Name       string
	ImageURL   string
	Price      decimal.Decimal
	Stock      int
	CategoryID *uuid.UUID
	TagIDs     []uuid.UUID
	Active     bool
}

// Discount must already be filtered to active, in-window rows.
type Discount struct {
	ID         uuid.UUID
	Percentage decimal.Decimal
	ProductID  *uuid.UUID
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
}

type Coupon struct {
	ID             uuid.UUID
	Code           string
	Description    string
	Percentage     decimal.Decimal
	MinOrderAmount *decimal.Decimal
	Active         bool
	StartDate      time.Time
	EndDate        time.Time
}

// Input is everything Calculate reads.
type Input struct {
	Lines     []Line
	Products  map[uuid.UUID]Product
	Discounts []Discount
	// CouponCode is what the customer typed; Coupon is the row found for it
	// (nil when none matched).
	CouponCode string
	Coupon     *Coupon
	Now        time.Time
}

// PricedLine keeps full precision; rounding happens at presentation.
type PricedLine struct {
	ProductID          uuid.UUID
	Name               string
	ImageURL           string
	CategoryID         *uuid.UUID
	Quantity           int
	BasePrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountID         *uuid.UUID
	UnitPrice          decimal.Decimal
	LineTotal          decimal.Decimal
	// CouponShare is this line's part of the coupon deduction. It is
	// informational only and never folded into UnitPrice.
	CouponShare decimal.Decimal
}

type Result struct {
	Lines          []PricedLine
	Subtotal       decimal.Decimal
	CouponDiscount decimal.Decimal
	Total          decimal.Decimal
	// Coupon is set whenever a valid coupon was supplied, even if the
	// subtotal missed its minimum.
	Coupon        *Coupon
	CouponApplied bool
}
