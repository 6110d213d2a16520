package products

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows the storefront listing.
type ListFilter struct {
	CategoryID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	// Active applies to the product and to its category.
	Active *bool
	// Tag matches a tag name exactly.
	Tag string
}

// SearchFilter is a free text search plus the listing filters. Active only
// applies to the product row.
type SearchFilter struct {
	Query      string
	CategoryID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Active     *bool
}

// Repository wires together all product-related persistence helpers.
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

// Create inserts the product row only; tags and gallery are written with
// ReplaceTags and ReplaceImages.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// Update saves every column of the product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDetail loads the product with category, tags and the ordered gallery.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&product, "products.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindForPricing loads the products of a cart with their tags.
func (r *Repository) FindForPricing(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// ReplaceTags swaps the product's tag set.
func (r *Repository) ReplaceTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.ProductTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, models.ProductTag{ProductID: productID, TagID: id})
	}
	return tx.Create(&rows).Error
}

// ReplaceImages swaps the gallery, keeping urls in the given order.
func (r *Repository) ReplaceImages(ctx context.Context, productID uuid.UUID, urls []string) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if len(urls) == 0 {
		return nil
	}
	rows := make([]models.ProductImage, 0, len(urls))
	for i, url := range urls {
		rows = append(rows, models.ProductImage{ProductID: productID, URL: url, Position: i})
	}
	return tx.Create(&rows).Error
}

func (r *Repository) ListImageURLs(ctx context.Context, productID uuid.UUID) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Order("position ASC").
		Pluck("url", &urls).Error
	return urls, err
}

func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CountTags counts how many of ids exist.
func (r *Repository) CountTags(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// List returns one page of products, newest first, and the total match count.
func (r *Repository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Product{})
	base = applyCommonFilters(base, filter.CategoryID, filter.MinPrice, filter.MaxPrice)
	if filter.Active != nil {
		base = base.
			Where("products.is_active = ?", *filter.Active).
			Where("EXISTS (SELECT 1 FROM categories c WHERE c.id = products.category_id AND c.is_active = ?)", *filter.Active)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		base = base.Where("EXISTS (SELECT 1 FROM product_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.product_id = products.id AND t.name = ?)", tag)
	}
	return r.page(base, offset, limit)
}

// Search matches the query against name, description, tag names and the
// category name, case-insensitively.
func (r *Repository) Search(ctx context.Context, filter SearchFilter, offset, limit int) ([]models.Product, int64, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(filter.Query)) + "%"
	match := containsInsensitive(r.db)

	base := r.db.WithContext(ctx).Model(&models.Product{})
	base = base.Where(
		"("+match("products.name")+
			" OR "+match("products.description")+
			" OR EXISTS (SELECT 1 FROM product_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.product_id = products.id AND "+match("t.name")+")"+
			" OR EXISTS (SELECT 1 FROM categories c WHERE c.id = products.category_id AND "+match("c.name")+"))",
		pattern, pattern, pattern, pattern,
	)
	base = applyCommonFilters(base, filter.CategoryID, filter.MinPrice, filter.MaxPrice)
	if filter.Active != nil {
		base = base.Where("products.is_active = ?", *filter.Active)
	}
	return r.page(base, offset, limit)
}

func (r *Repository) page(base *gorm.DB, offset, limit int) ([]models.Product, int64, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	if err := base.Session(&gorm.Session{}).
		Preload("Category").
		Preload("Tags").
		Order("products.created_at DESC").
		Order("products.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyCommonFilters(q *gorm.DB, categoryID *uuid.UUID, minPrice, maxPrice *decimal.Decimal) *gorm.DB {
	if categoryID != nil {
		q = q.Where("products.category_id = ?", *categoryID)
	}
	if minPrice != nil {
		q = q.Where("products.price >= ?", *minPrice)
	}
	if maxPrice != nil {
		q = q.Where("products.price <= ?", *maxPrice)
	}
	return q
}

// containsInsensitive returns a LIKE predicate builder for the dialect in
// use. Postgres gets ILIKE; sqlite lowers both sides.
func containsInsensitive(db *gorm.DB) func(column string) string {
	if db.Dialector.Name() == "postgres" {
		return func(column string) string { return column + ` ILIKE ? ESCAPE '\'` }
	}
	return func(column string) string { return "LOWER(" + column + `) LIKE LOWER(?) ESCAPE '\'` }
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
