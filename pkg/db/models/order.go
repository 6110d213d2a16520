package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a customer purchase with its pricing frozen at creation.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName      string            `gorm:"column:first_name;not null"`
	LastName       string            `gorm:"column:last_name;not null"`
	Address        string            `gorm:"column:address;not null"`
	MobileNumber   string            `gorm:"column:mobile_number;not null"`
	AnotherMobile  *string           `gorm:"column:another_mobile"`
	AnotherAddress *string           `gorm:"column:another_address"`
	CustomerEmail  *string           `gorm:"column:customer_email"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,4);not null"`
	Currency       string            `gorm:"column:currency;not null"`
	Status         enums.OrderStatus `gorm:"column:status;type:order_status;not null"`

	// Coupon snapshot. CouponID is nulled if the coupon is deleted; the
	// remaining columns keep what the customer saw.
	CouponID          *uuid.UUID       `gorm:"column:coupon_id;type:uuid"`
	CouponCode        *string          `gorm:"column:coupon_code"`
	CouponPercentage  *decimal.Decimal `gorm:"column:coupon_percentage;type:numeric(5,2)"`
	CouponDescription *string          `gorm:"column:coupon_description"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem snapshots one priced cart line.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID       *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Quantity        int             `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:numeric(14,4);not null"`
	ProductName     string          `gorm:"column:product_name;not null"`
	ProductImageURL string          `gorm:"column:product_image_url;not null"`
	ProductCategory *uuid.UUID      `gorm:"column:product_category;type:uuid"`
	DiscountApplied decimal.Decimal `gorm:"column:discount_applied;type:numeric(5,2);not null"`
	DiscountID      *uuid.UUID      `gorm:"column:discount_id;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineTotal is the pre-coupon amount of the line.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
