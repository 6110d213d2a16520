package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) Service {
	t.Helper()
	conn := dbtest.Open(t, dbtest.CatalogDDL, dbtest.PricingDDL)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func validInput(code string) CreateInput {
	now := time.Now().UTC()
	minimum := decimal.NewFromInt(50)
	return CreateInput{
		Code:           code,
		Description:    "five off",
		Percentage:     decimal.NewFromInt(5),
		MinOrderAmount: &minimum,
		StartDate:      now.Add(-time.Hour),
		EndDate:        now.Add(time.Hour),
	}
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("SAVE5"))
	require.NoError(t, err)
	require.True(t, created.IsActive)
	require.True(t, created.MinOrderAmount.Equal(decimal.NewFromInt(50)))

	_, err = svc.Create(ctx, validInput("SAVE5"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Contains(t, err.Error(), "coupon code already exists")
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	missing := validInput("")
	_, err := svc.Create(ctx, missing)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	zero := validInput("ZERO")
	zero.Percentage = decimal.Zero
	_, err = svc.Create(ctx, zero)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	backwards := validInput("BACK")
	backwards.StartDate, backwards.EndDate = backwards.EndDate, backwards.StartDate
	_, err = svc.Create(ctx, backwards)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestFindToggleDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("WELCOME"))
	require.NoError(t, err)

	found, err := svc.FindByCode(ctx, " WELCOME ")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	unknown, err := svc.FindByCode(ctx, "NOPE")
	require.NoError(t, err)
	require.Nil(t, unknown)

	updated, err := svc.SetActive(ctx, created.ID, false)
	require.NoError(t, err)
	require.False(t, updated.IsActive)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, uuid.New()), pkgerrors.CodeNotFound))
}
