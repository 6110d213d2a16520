package products

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the storefront and admin view of a product.
type ProductDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	PreviousPrice *decimal.Decimal `json:"previousPrice"`
	Stock         int              `json:"stock"`
	ImageURL      string           `json:"imageUrl"`
	CategoryID    *uuid.UUID       `json:"categoryId"`
	IsActive      bool             `json:"isActive"`
	Category      *CategoryRef     `json:"category,omitempty"`
	Tags          []TagRef         `json:"tags"`
	Images        []ImageDTO       `json:"images,omitempty"`
	Discount      *DiscountSummary `json:"discount"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type CategoryRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL *string   `json:"imageUrl,omitempty"`
	IsActive bool      `json:"isActive"`
}

type TagRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
}

type ImageDTO struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Position int       `json:"position"`
}

// DiscountSummary is the best discount currently running for a product.
type DiscountSummary struct {
	ID              uuid.UUID       `json:"id"`
	Percentage      decimal.Decimal `json:"percentage"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	IsActive        bool            `json:"isActive"`
	DiscountedPrice float64         `json:"discountedPrice"`
}

// ListResult is one page of the storefront listing.
type ListResult struct {
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
	TotalCount int64        `json:"totalCount"`
	Products   []ProductDTO `json:"products"`
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Products   []ProductDTO `json:"products"`
	TotalPages int          `json:"totalPages"`
}

// ListParams are the storefront listing query inputs.
type ListParams struct {
	Page  int
	Limit int
	ListFilter
}

// SearchParams are the search query inputs.
type SearchParams struct {
	Page  int
	Limit int
	SearchFilter
}

// CreateInput holds a validated admin create payload.
type CreateInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	PreviousPrice *decimal.Decimal
	Stock         int
	CategoryID    uuid.UUID
	TagIDs        []uuid.UUID
	MainImage     *media.Upload
	Images        []media.Upload
}

// UpdateInput carries a partial admin update. A nil field is left as is.
type UpdateInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	PreviousPrice *decimal.Decimal
	// ClearPreviousPrice drops the strike-through price.
	ClearPreviousPrice bool
	Stock              *int
	CategoryID         *uuid.UUID
	IsActive           *bool
	// TagIDs, when set, replaces the whole tag set (an empty slice clears it).
	TagIDs    *[]uuid.UUID
	MainImage *media.Upload
	// Images, when non-empty, replaces the gallery.
	Images []media.Upload
}

func toDTO(p models.Product, discount *DiscountSummary) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		PreviousPrice: p.PreviousPrice,
		Stock:         p.Stock,
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID,
		IsActive:      p.IsActive,
		Tags:          make([]TagRef, 0, len(p.Tags)),
		Discount:      discount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Category != nil {
		dto.Category = &CategoryRef{
			ID:       p.Category.ID,
			Name:     p.Category.Name,
			ImageURL: p.Category.ImageURL,
			IsActive: p.Category.IsActive,
		}
	}
	for _, t := range p.Tags {
		dto.Tags = append(dto.Tags, TagRef{ID: t.ID, Name: t.Name, IsActive: t.IsActive})
	}
	for _, img := range p.Images {
		dto.Images = append(dto.Images, ImageDTO{ID: img.ID, URL: img.URL, Position: img.Position})
	}
	return dto
}
