package coupons

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponDTO is the admin view of a coupon.
type CouponDTO struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Description    string           `json:"description"`
	Percentage     decimal.Decimal  `json:"percentage"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount"`
	IsActive       bool             `json:"isActive"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        time.Time        `json:"endDate"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func toDTO(c models.Coupon) CouponDTO {
	return CouponDTO{
		ID:             c.ID,
		Code:           c.Code,
		Description:    c.Description,
		Percentage:     c.Percentage,
		MinOrderAmount: c.MinOrderAmount,
		IsActive:       c.IsActive,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
