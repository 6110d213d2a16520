package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const errDuplicateCode = "coupon code already exists"

var hundred = decimal.NewFromInt(100)

// Service manages order-level coupons.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CouponDTO, error)
	List(ctx context.Context) ([]CouponDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*CouponDTO, error)
	// FindByCode returns (nil, nil) for an unknown code. Activity and date
	// window are judged by the pricing calculator.
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// CreateInput is a validated coupon payload.
type CreateInput struct {
	Code           string
	Description    string
	Percentage     decimal.Decimal
	MinOrderAmount *decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
}

type service struct {
	repo *Repository
}

// NewService wires the coupon service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CouponDTO, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" || input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields.")
	}
	if !input.Percentage.IsPositive() || input.Percentage.GreaterThan(hundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage must be greater than 0 and at most 100")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endDate must not be before startDate")
	}
	if input.MinOrderAmount != nil && input.MinOrderAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minOrderAmount cannot be negative")
	}

	existing, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, errDuplicateCode)
	}

	coupon := &models.Coupon{
		Code:           code,
		Description:    strings.TrimSpace(input.Description),
		Percentage:     input.Percentage,
		MinOrderAmount: input.MinOrderAmount,
		IsActive:       true,
		StartDate:      input.StartDate.UTC(),
		EndDate:        input.EndDate.UTC(),
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, errDuplicateCode)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create coupon failed")
	}
	dto := toDTO(*coupon)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]CouponDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list coupons failed")
	}
	out := make([]CouponDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete coupon failed")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*CouponDTO, error) {
	affected, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update coupon status failed")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon failed")
	}
	dto := toDTO(*coupon)
	return &dto, nil
}

func (s *service) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon failed")
	}
	return coupon, nil
}
