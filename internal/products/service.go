package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultListLimit   = 10
	defaultSearchLimit = 9
)

var hundred = decimal.NewFromInt(100)

// Service exposes catalog browsing and admin product management.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type discountSource interface {
	ActiveFor(ctx context.Context, now time.Time, productIDs, categoryIDs, tagIDs []uuid.UUID) ([]models.Discount, error)
}

type imageHost interface {
	UploadImage(ctx context.Context, folder string, file media.Upload) (string, error)
	UploadImages(ctx context.Context, folder string, files []media.Upload) ([]string, error)
	DeleteImages(ctx context.Context, urls ...string) error
}

type service struct {
	repo       *Repository
	tx         db.TxRunner
	discounts  discountSource
	images     imageHost
	maxGallery int
	logg       *logger.Logger
	now        func() time.Time
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx db.TxRunner, discounts discountSource, images imageHost, cfg config.MediaConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if discounts == nil {
		return nil, fmt.Errorf("discount source required")
	}
	if images == nil {
		return nil, fmt.Errorf("image host required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxGallery := cfg.MaxGalleryImages
	if maxGallery <= 0 {
		maxGallery = 6
	}
	return &service{
		repo:       repo,
		tx:         tx,
		discounts:  discounts,
		images:     images,
		maxGallery: maxGallery,
		logg:       logg,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := pagination.Params{Page: params.Page, Limit: params.Limit}.Normalize(defaultListLimit)

	rows, total, err := s.repo.List(ctx, params.ListFilter, page.Offset(), page.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products failed")
	}
	dtos, err := s.withDiscounts(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: pagination.TotalPages(total, page.Limit),
		TotalCount: total,
		Products:   dtos,
	}, nil
}

func (s *service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Search query is required")
	}
	page := pagination.Params{Page: params.Page, Limit: params.Limit}.Normalize(defaultSearchLimit)

	rows, total, err := s.repo.Search(ctx, params.SearchFilter, page.Offset(), page.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products failed")
	}
	dtos, err := s.withDiscounts(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Products: dtos, TotalPages: pagination.TotalPages(total, page.Limit)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found or inactive")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product failed")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found or inactive")
	}
	dtos, err := s.withDiscounts(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if input.MainImage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Main image is required.")
	}
	if len(input.Images) > s.maxGallery {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d gallery images are allowed", s.maxGallery)
	}
	tagIDs := dedupe(input.TagIDs)
	if err := s.ensureTags(ctx, tagIDs); err != nil {
		return nil, err
	}

	mainURL, err := s.images.UploadImage(ctx, media.FolderProducts, *input.MainImage)
	if err != nil {
		return nil, err
	}
	gallery, err := s.images.UploadImages(ctx, media.FolderProducts, input.Images)
	if err != nil {
		s.cleanupImages(ctx, mainURL)
		return nil, err
	}

	categoryID := input.CategoryID
	product := &models.Product{
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		PreviousPrice: input.PreviousPrice,
		Stock:         input.Stock,
		ImageURL:      mainURL,
		CategoryID:    &categoryID,
		IsActive:      true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, product); err != nil {
			return err
		}
		if err := repo.ReplaceTags(ctx, product.ID, tagIDs); err != nil {
			return err
		}
		return repo.ReplaceImages(ctx, product.ID, gallery)
	})
	if err != nil {
		s.cleanupImages(ctx, append([]string{mainURL}, gallery...)...)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product failed")
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product.created")
	return s.detail(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product failed")
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			product.Name = name
		}
	}
	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != "" {
			product.Description = desc
		}
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	switch {
	case input.ClearPreviousPrice:
		product.PreviousPrice = nil
	case input.PreviousPrice != nil:
		product.PreviousPrice = input.PreviousPrice
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		categoryID := *input.CategoryID
		product.CategoryID = &categoryID
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	var tagIDs []uuid.UUID
	if input.TagIDs != nil {
		tagIDs = dedupe(*input.TagIDs)
		if err := s.ensureTags(ctx, tagIDs); err != nil {
			return nil, err
		}
	}
	if len(input.Images) > s.maxGallery {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d gallery images are allowed", s.maxGallery)
	}

	var uploaded, replaced []string
	if input.MainImage != nil {
		url, err := s.images.UploadImage(ctx, media.FolderProducts, *input.MainImage)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, url)
		replaced = append(replaced, product.ImageURL)
		product.ImageURL = url
	}
	var gallery []string
	if len(input.Images) > 0 {
		gallery, err = s.images.UploadImages(ctx, media.FolderProducts, input.Images)
		if err != nil {
			s.cleanupImages(ctx, uploaded...)
			return nil, err
		}
		uploaded = append(uploaded, gallery...)
		previous, err := s.repo.ListImageURLs(ctx, id)
		if err != nil {
			s.cleanupImages(ctx, uploaded...)
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load gallery failed")
		}
		replaced = append(replaced, previous...)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, product); err != nil {
			return err
		}
		if input.TagIDs != nil {
			if err := repo.ReplaceTags(ctx, product.ID, tagIDs); err != nil {
				return err
			}
		}
		if len(gallery) > 0 {
			return repo.ReplaceImages(ctx, product.ID, gallery)
		}
		return nil
	})
	if err != nil {
		s.cleanupImages(ctx, uploaded...)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product failed")
	}
	s.cleanupImages(ctx, replaced...)

	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product.updated")
	return s.detail(ctx, product.ID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product failed")
	}
	gallery, err := s.repo.ListImageURLs(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load gallery failed")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product failed")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}

	s.cleanupImages(ctx, append([]string{product.ImageURL}, gallery...)...)
	s.logg.Info(s.logg.WithField(ctx, "product_id", id.String()), "product.deleted")
	return nil
}

// detail reloads a product for admin responses. Unlike Get it returns
// inactive products too.
func (s *service) detail(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product failed")
	}
	dtos, err := s.withDiscounts(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// withDiscounts attaches the best running discount to each product using a
// single discount query for the whole page.
func (s *service) withDiscounts(ctx context.Context, rows []models.Product) ([]ProductDTO, error) {
	out := make([]ProductDTO, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	var productIDs, categoryIDs, tagIDs []uuid.UUID
	for _, p := range rows {
		productIDs = append(productIDs, p.ID)
		if p.CategoryID != nil {
			categoryIDs = append(categoryIDs, *p.CategoryID)
		}
		tagIDs = append(tagIDs, p.TagIDs()...)
	}

	running, err := s.discounts.ActiveFor(ctx, s.now(), productIDs, dedupe(categoryIDs), dedupe(tagIDs))
	if err != nil {
		return nil, err
	}

	for _, p := range rows {
		var summary *DiscountSummary
		if best := BestDiscount(p, running); best != nil {
			discounted := p.Price.Mul(hundred.Sub(best.Percentage)).Div(hundred)
			summary = &DiscountSummary{
				ID:              best.ID,
				Percentage:      best.Percentage,
				StartDate:       best.StartDate,
				EndDate:         best.EndDate,
				IsActive:        best.IsActive,
				DiscountedPrice: discounted.Round(2).InexactFloat64(),
			}
		}
		out = append(out, toDTO(p, summary))
	}
	return out, nil
}

// BestDiscount returns the highest percentage among the discounts aimed at
// the product, its category or one of its tags. Ties keep the earlier row.
func BestDiscount(p models.Product, discounts []models.Discount) *models.Discount {
	tags := make(map[uuid.UUID]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		tags[t.ID] = struct{}{}
	}

	var best *models.Discount
	for i := range discounts {
		d := &discounts[i]
		matches := false
		switch {
		case d.ProductID != nil:
			matches = *d.ProductID == p.ID
		case d.CategoryID != nil:
			matches = p.CategoryID != nil && *d.CategoryID == *p.CategoryID
		case d.TagID != nil:
			_, matches = tags[*d.TagID]
		}
		if matches && (best == nil || d.Percentage.GreaterThan(best.Percentage)) {
			best = d
		}
	}
	return best
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Category not found")
	}
	ok, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup category failed")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Category not found")
	}
	return nil
}

func (s *service) ensureTags(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := s.repo.CountTags(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tags failed")
	}
	if count != int64(len(ids)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "one or more tags do not exist")
	}
	return nil
}

func (s *service) cleanupImages(ctx context.Context, urls ...string) {
	if len(urls) == 0 {
		return
	}
	if err := s.images.DeleteImages(ctx, urls...); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "product.image_cleanup_failed")
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
