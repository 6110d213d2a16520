package discounts

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists discount rules.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, discount *models.Discount) error {
	return r.db.WithContext(ctx).Create(discount).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.WithContext(ctx).First(&discount, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// List returns every discount, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Discount, error) {
	var rows []models.Discount
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Discount{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// ActiveFor returns active, in-window discounts aimed at any of the given
// products, categories or tags. Rows come back oldest first so callers that
// take the first match get a stable answer.
func (r *Repository) ActiveFor(ctx context.Context, now time.Time, productIDs, categoryIDs, tagIDs []uuid.UUID) ([]models.Discount, error) {
	targets := r.db.WithContext(ctx)
	matched := false
	for _, filter := range []struct {
		column string
		ids    []uuid.UUID
	}{
		{"product_id", productIDs},
		{"category_id", categoryIDs},
		{"tag_id", tagIDs},
	} {
		if len(filter.ids) == 0 {
			continue
		}
		if !matched {
			targets = targets.Where(filter.column+" IN ?", filter.ids)
			matched = true
			continue
		}
		targets = targets.Or(filter.column+" IN ?", filter.ids)
	}
	if !matched {
		return nil, nil
	}

	now = now.UTC()
	var rows []models.Discount
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where(targets).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TargetExists checks the referenced product, category or tag row.
func (r *Repository) TargetExists(ctx context.Context, target enums.DiscountTarget, id uuid.UUID) (bool, error) {
	var model any
	switch target {
	case enums.DiscountTargetProduct:
		model = &models.Product{}
	case enums.DiscountTargetCategory:
		model = &models.Category{}
	case enums.DiscountTargetTag:
		model = &models.Tag{}
	default:
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
