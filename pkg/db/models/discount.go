package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Discount is a percentage rule aimed at exactly one product, category or tag.
type Discount struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Percentage decimal.Decimal `gorm:"column:percentage;type:numeric(5,2);not null"`
	IsActive   bool            `gorm:"column:is_active;not null"`
	StartDate  time.Time       `gorm:"column:start_date;not null"`
	EndDate    time.Time       `gorm:"column:end_date;not null"`
	ProductID  *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	CategoryID *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	TagID      *uuid.UUID      `gorm:"column:tag_id;type:uuid"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Discount) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// Target reports which reference column is set.
func (d Discount) Target() (enums.DiscountTarget, uuid.UUID) {
	switch {
	case d.ProductID != nil:
		return enums.DiscountTargetProduct, *d.ProductID
	case d.CategoryID != nil:
		return enums.DiscountTargetCategory, *d.CategoryID
	case d.TagID != nil:
		return enums.DiscountTargetTag, *d.TagID
	}
	return "", uuid.Nil
}

// InWindow reports whether at falls inside [StartDate, EndDate].
func (d Discount) InWindow(at time.Time) bool {
	return !at.Before(d.StartDate) && !at.After(d.EndDate)
}
