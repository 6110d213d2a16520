package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Coupon struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string           `gorm:"column:code;not null;uniqueIndex"`
	Description    string           `gorm:"column:description;not null"`
	Percentage     decimal.Decimal  `gorm:"column:percentage;type:numeric(5,2);not null"`
	MinOrderAmount *decimal.Decimal `gorm:"column:min_order_amount;type:numeric(12,2)"`
	IsActive       bool             `gorm:"column:is_active;not null"`
	StartDate      time.Time        `gorm:"column:start_date;not null"`
	EndDate        time.Time        `gorm:"column:end_date;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
