package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const errCategoryInUse = "Cannot delete category: it's linked to existing products."

// Service manages the two catalog taxonomies behind one set of endpoints.
type Service interface {
	Create(ctx context.Context, kind enums.CatalogKind, input CreateInput) (*Item, error)
	Update(ctx context.Context, kind enums.CatalogKind, id uuid.UUID, input UpdateInput) (*Item, error)
	Delete(ctx context.Context, kind enums.CatalogKind, id uuid.UUID) error
	ListAll(ctx context.Context, active *bool) (*Listing, error)
}

type imageHost interface {
	UploadImage(ctx context.Context, folder string, file media.Upload) (string, error)
	DeleteImages(ctx context.Context, urls ...string) error
}

type service struct {
	repo   *Repository
	images imageHost
	logg   *logger.Logger
}

// NewService wires the category service.
func NewService(repo *Repository, images imageHost, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if images == nil {
		return nil, fmt.Errorf("image host required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, images: images, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, kind enums.CatalogKind, input CreateInput) (*Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Name and type are required.")
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	switch kind {
	case enums.CatalogKindCategory:
		category := &models.Category{
			Name:        name,
			Description: strings.TrimSpace(input.Description),
			IsActive:    active,
		}
		if input.Image != nil {
			url, err := s.images.UploadImage(ctx, media.FolderCategories, *input.Image)
			if err != nil {
				return nil, err
			}
			category.ImageURL = &url
		}
		if err := s.repo.CreateCategory(ctx, category); err != nil {
			s.discardImage(ctx, category.ImageURL)
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category failed")
		}
		item := fromCategory(*category)
		return &item, nil

	case enums.CatalogKindTag:
		tag := &models.Tag{
			Name:        name,
			Description: strings.TrimSpace(input.Description),
			IsActive:    active,
		}
		if err := s.repo.CreateTag(ctx, tag); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tag failed")
		}
		item := fromTag(*tag)
		return &item, nil
	}
	return nil, invalidKind()
}

func (s *service) Update(ctx context.Context, kind enums.CatalogKind, id uuid.UUID, input UpdateInput) (*Item, error) {
	switch kind {
	case enums.CatalogKindCategory:
		category, err := s.repo.FindCategory(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, "category not found", "load category failed")
		}
		applyCommon(&category.Name, &category.Description, &category.IsActive, input)

		var previous *string
		switch {
		case input.Image != nil:
			url, err := s.images.UploadImage(ctx, media.FolderCategories, *input.Image)
			if err != nil {
				return nil, err
			}
			previous, category.ImageURL = category.ImageURL, &url
		case input.ImageURL != nil:
			url := strings.TrimSpace(*input.ImageURL)
			if url == "" {
				category.ImageURL = nil
			} else {
				category.ImageURL = &url
			}
		}

		if err := s.repo.SaveCategory(ctx, category); err != nil {
			if input.Image != nil {
				s.discardImage(ctx, category.ImageURL)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category failed")
		}
		s.discardImage(ctx, previous)
		item := fromCategory(*category)
		return &item, nil

	case enums.CatalogKindTag:
		tag, err := s.repo.FindTag(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, "tag not found", "load tag failed")
		}
		applyCommon(&tag.Name, &tag.Description, &tag.IsActive, input)
		if err := s.repo.SaveTag(ctx, tag); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update tag failed")
		}
		item := fromTag(*tag)
		return &item, nil
	}
	return nil, invalidKind()
}

func (s *service) Delete(ctx context.Context, kind enums.CatalogKind, id uuid.UUID) error {
	switch kind {
	case enums.CatalogKindCategory:
		category, err := s.repo.FindCategory(ctx, id)
		if err != nil {
			return notFoundOr(err, "category not found", "load category failed")
		}
		inUse, err := s.repo.CountProducts(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category products failed")
		}
		if inUse > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, errCategoryInUse)
		}
		if _, err := s.repo.DeleteCategory(ctx, id); err != nil {
			// a product may have been assigned between the count and the delete
			if db.IsForeignKeyViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, errCategoryInUse)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category failed")
		}
		s.discardImage(ctx, category.ImageURL)
		return nil

	case enums.CatalogKindTag:
		affected, err := s.repo.DeleteTag(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete tag failed")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		return nil
	}
	return invalidKind()
}

func (s *service) ListAll(ctx context.Context, active *bool) (*Listing, error) {
	categories, err := s.repo.ListCategories(ctx, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories failed")
	}
	tags, err := s.repo.ListTags(ctx, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tags failed")
	}

	out := &Listing{
		Categories: make([]Item, 0, len(categories)),
		Tags:       make([]Item, 0, len(tags)),
	}
	for _, c := range categories {
		out.Categories = append(out.Categories, fromCategory(c))
	}
	for _, t := range tags {
		out.Tags = append(out.Tags, fromTag(t))
	}
	return out, nil
}

func (s *service) discardImage(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.images.DeleteImages(ctx, *url); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "category.image_cleanup_failed")
	}
}

func applyCommon(name, description *string, active *bool, input UpdateInput) {
	if input.Name != nil {
		if trimmed := strings.TrimSpace(*input.Name); trimmed != "" {
			*name = trimmed
		}
	}
	if input.Description != nil {
		*description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		*active = *input.IsActive
	}
}

func invalidKind() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "Invalid type. Must be either 'category' or 'tag'.")
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internal)
}
