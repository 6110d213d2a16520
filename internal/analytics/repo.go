package analytics

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository runs the read-only dashboard queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRow struct {
	ID          uuid.UUID
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// itemRow joins an order line with its order total and the current category
// of its product, if both still exist.
type itemRow struct {
	OrderID         uuid.UUID
	OrderTotal      decimal.Decimal
	ProductID       *uuid.UUID
	ProductName     string
	ProductImageURL string
	Quantity        int
	PriceAtPurchase decimal.Decimal
	CategoryID      *uuid.UUID
	CategoryName    *string
}

type couponCount struct {
	CouponID uuid.UUID
	Used     int64
}

func (r *Repository) Orders(ctx context.Context, rng Range, statuses []enums.OrderStatus) ([]orderRow, error) {
	var rows []orderRow
	q := r.db.WithContext(ctx).
		Table("orders").
		Select("id, total_amount, created_at").
		Where("status IN ?", enums.StatusStrings(statuses))
	err := withinRange(q, "created_at", rng).
		Order("created_at ASC").
		Order("id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) Items(ctx context.Context, rng Range, statuses []enums.OrderStatus) ([]itemRow, error) {
	var rows []itemRow
	q := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(`oi.order_id AS order_id,
			o.total_amount AS order_total,
			oi.product_id AS product_id,
			oi.product_name AS product_name,
			oi.product_image_url AS product_image_url,
			oi.quantity AS quantity,
			oi.price_at_purchase AS price_at_purchase,
			c.id AS category_id,
			c.name AS category_name`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("o.status IN ?", enums.StatusStrings(statuses))
	err := withinRange(q, "o.created_at", rng).
		Order("o.created_at ASC").
		Order("o.id ASC").
		Order("oi.created_at ASC").
		Order("oi.id ASC").
		Scan(&rows).Error
	return rows, err
}

// LowStock lists active products under the threshold, lowest stock first.
func (r *Repository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_active = ? AND stock < ?", true, threshold).
		Order("stock ASC").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Coupons(ctx context.Context) ([]models.Coupon, error) {
	var rows []models.Coupon
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CouponCounts(ctx context.Context, rng Range, statuses []enums.OrderStatus) (map[uuid.UUID]int64, error) {
	var rows []couponCount
	q := r.db.WithContext(ctx).
		Table("orders").
		Select("coupon_id, COUNT(*) AS used").
		Where("coupon_id IS NOT NULL").
		Where("status IN ?", enums.StatusStrings(statuses))
	if err := withinRange(q, "created_at", rng).Group("coupon_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.CouponID] = row.Used
	}
	return out, nil
}

func withinRange(q *gorm.DB, column string, rng Range) *gorm.DB {
	if rng.IsZero() {
		return q
	}
	return q.Where(column+" >= ? AND "+column+" <= ?", rng.Start.UTC(), rng.End.UTC())
}
