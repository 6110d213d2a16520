package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	// DecrementStock reports how many product rows were decremented. Zero
	// means the product is inactive, gone, or short on stock.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (int64, error)
}

// ListFilter narrows the admin order list. Bounds are inclusive.
type ListFilter struct {
	Status *enums.OrderStatus
	From   *time.Time
	To     *time.Time
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogReader interface {
	FindForPricing(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type discountSource interface {
	ActiveFor(ctx context.Context, now time.Time, productIDs, categoryIDs, tagIDs []uuid.UUID) ([]models.Discount, error)
}

type couponLookup interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, attrs map[string]string, data any) error
}

type orderMetrics interface {
	ObserveCreated(total decimal.Decimal)
	IncStockConflict()
}
