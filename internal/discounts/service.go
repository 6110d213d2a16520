package discounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Service manages discount rules and feeds active ones to pricing.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*DiscountDTO, error)
	List(ctx context.Context) ([]DiscountDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*DiscountDTO, error)
	ActiveFor(ctx context.Context, now time.Time, productIDs, categoryIDs, tagIDs []uuid.UUID) ([]models.Discount, error)
}

// CreateInput is a validated discount payload. Exactly one target id must be
// set.
type CreateInput struct {
	Percentage decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
	ProductID  *uuid.UUID
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
}

// DiscountDTO exposes a discount with its resolved target.
type DiscountDTO struct {
	ID          uuid.UUID            `json:"id"`
	Percentage  decimal.Decimal      `json:"percentage"`
	IsActive    bool                 `json:"isActive"`
	StartDate   time.Time            `json:"startDate"`
	EndDate     time.Time            `json:"endDate"`
	ProductID   *uuid.UUID           `json:"productId"`
	CategoryID  *uuid.UUID           `json:"categoryId"`
	TagID       *uuid.UUID           `json:"tagId"`
	Type        enums.DiscountTarget `json:"type"`
	ReferenceID uuid.UUID            `json:"referenceId"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type service struct {
	repo *Repository
}

// NewService wires the discount service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*DiscountDTO, error) {
	if input.Percentage.IsZero() || input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields.")
	}
	if !input.Percentage.IsPositive() || input.Percentage.GreaterThan(hundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage must be greater than 0 and at most 100")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endDate must not be before startDate")
	}

	discount := &models.Discount{
		Percentage: input.Percentage,
		IsActive:   true,
		StartDate:  input.StartDate.UTC(),
		EndDate:    input.EndDate.UTC(),
		ProductID:  input.ProductID,
		CategoryID: input.CategoryID,
		TagID:      input.TagID,
	}
	target, refID, err := singleTarget(discount)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.TargetExists(ctx, target, refID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup discount target failed")
	}
	if !exists {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", target)
	}

	if err := s.repo.Create(ctx, discount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create discount failed")
	}
	dto := toDTO(*discount)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]DiscountDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discounts failed")
	}
	out := make([]DiscountDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete discount failed")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	return nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*DiscountDTO, error) {
	affected, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update discount status failed")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	discount, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load discount failed")
	}
	dto := toDTO(*discount)
	return &dto, nil
}

func (s *service) ActiveFor(ctx context.Context, now time.Time, productIDs, categoryIDs, tagIDs []uuid.UUID) ([]models.Discount, error) {
	rows, err := s.repo.ActiveFor(ctx, now, productIDs, categoryIDs, tagIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active discounts failed")
	}
	return rows, nil
}

func singleTarget(d *models.Discount) (enums.DiscountTarget, uuid.UUID, error) {
	set := 0
	for _, id := range []*uuid.UUID{d.ProductID, d.CategoryID, d.TagID} {
		if id != nil {
			set++
		}
	}
	if set != 1 {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of productId, categoryId or tagId is required")
	}
	target, id := d.Target()
	return target, id, nil
}

func toDTO(d models.Discount) DiscountDTO {
	target, ref := d.Target()
	return DiscountDTO{
		ID:          d.ID,
		Percentage:  d.Percentage,
		IsActive:    d.IsActive,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		ProductID:   d.ProductID,
		CategoryID:  d.CategoryID,
		TagID:       d.TagID,
		Type:        target,
		ReferenceID: ref,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
