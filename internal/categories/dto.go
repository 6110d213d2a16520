package categories

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// Item is the shared response shape for categories and tags.
type Item struct {
	ID          uuid.UUID         `json:"id"`
	Type        enums.CatalogKind `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ImageURL    *string           `json:"imageUrl,omitempty"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Listing groups both taxonomies for the storefront filters.
type Listing struct {
	Categories []Item `json:"categories"`
	Tags       []Item `json:"tags"`
}

// CreateInput holds a validated create payload. Image is only honoured for
// categories.
type CreateInput struct {
	Name        string
	Description string
	IsActive    *bool
	Image       *media.Upload
}

// UpdateInput carries only the fields to change.
type UpdateInput struct {
	Name        *string
	Description *string
	IsActive    *bool
	ImageURL    *string
	Image       *media.Upload
}

func fromCategory(c models.Category) Item {
	return Item{
		ID:          c.ID,
		Type:        enums.CatalogKindCategory,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func fromTag(t models.Tag) Item {
	return Item{
		ID:          t.ID,
		Type:        enums.CatalogKindTag,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
