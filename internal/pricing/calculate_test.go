package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func activeCoupon(pct string, min *decimal.Decimal) *Coupon {
	return &Coupon{
		ID:             uuid.New(),
		Code:           "SAVE5",
		Description:    "five off",
		Percentage:     dec(pct),
		MinOrderAmount: min,
		Active:         true,
		StartDate:      now.Add(-24 * time.Hour),
		EndDate:        now.Add(24 * time.Hour),
	}
}

func TestCalculate_TagDiscountAndCoupon(t *testing.T) {
	tagID := uuid.New()
	p := Product{ID: uuid.New(), Name: "Mug", Price: dec("100"), Stock: 10, TagIDs: []uuid.UUID{tagID}, Active: true}
	disc := Discount{ID: uuid.New(), Percentage: dec("10"), TagID: &tagID}

	res, err := Calculate(Input{
		Lines:      []Line{{ProductID: p.ID, Quantity: 2}},
		Products:   map[uuid.UUID]Product{p.ID: p},
		Discounts:  []Discount{disc},
		CouponCode: "SAVE5",
		Coupon:     activeCoupon("5", ptr(dec("50"))),
		Now:        now,
	})
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	line := res.Lines[0]
	assert.True(t, line.UnitPrice.Equal(dec("90")), line.UnitPrice.String())
	assert.True(t, line.LineTotal.Equal(dec("180")))
	assert.True(t, line.DiscountPercentage.Equal(dec("10")))
	require.NotNil(t, line.DiscountID)
	assert.Equal(t, disc.ID, *line.DiscountID)

	assert.True(t, res.Subtotal.Equal(dec("180")))
	assert.True(t, res.CouponDiscount.Equal(dec("9")))
	assert.True(t, res.Total.Equal(dec("171")))
	assert.True(t, res.CouponApplied)
	assert.True(t, line.CouponShare.Equal(dec("9")))
}

func TestCalculate_ProductDiscountBeatsTagAndCategory(t *testing.T) {
	catID, tagID := uuid.New(), uuid.New()
	p := Product{ID: uuid.New(), Name: "Lamp", Price: dec("200"), Stock: 5, CategoryID: &catID, TagIDs: []uuid.UUID{tagID}, Active: true}

	discounts := []Discount{
		{ID: uuid.New(), Percentage: dec("50"), CategoryID: &catID},
		{ID: uuid.New(), Percentage: dec("40"), TagID: &tagID},
		{ID: uuid.New(), Percentage: dec("5"), ProductID: &p.ID},
	}

	res, err := Calculate(Input{
		Lines:     []Line{{ProductID: p.ID, Quantity: 1}},
		Products:  map[uuid.UUID]Product{p.ID: p},
		Discounts: discounts,
		Now:       now,
	})
	require.NoError(t, err)
	assert.True(t, res.Lines[0].DiscountPercentage.Equal(dec("5")), "product discount must win even when smaller")
	assert.True(t, res.Lines[0].UnitPrice.Equal(dec("190")))
}

func TestResolveDiscount_TagBeatsCategoryAndFirstTagWins(t *testing.T) {
	catID, tagA, tagB := uuid.New(), uuid.New(), uuid.New()
	p := Product{ID: uuid.New(), CategoryID: &catID, TagIDs: []uuid.UUID{tagA, tagB}}

	first := Discount{ID: uuid.New(), Percentage: dec("15"), TagID: &tagB}
	second := Discount{ID: uuid.New(), Percentage: dec("30"), TagID: &tagA}
	cat := Discount{ID: uuid.New(), Percentage: dec("60"), CategoryID: &catID}

	got := ResolveDiscount(p, []Discount{cat, first, second})
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	got = ResolveDiscount(Product{ID: uuid.New(), CategoryID: &catID}, []Discount{first, cat})
	require.NotNil(t, got)
	assert.Equal(t, cat.ID, got.ID)

	assert.Nil(t, ResolveDiscount(Product{ID: uuid.New()}, []Discount{first, cat}))
}

func TestCalculate_CouponBelowMinimumStillSnapshotted(t *testing.T) {
	p := Product{ID: uuid.New(), Name: "Pen", Price: dec("10"), Stock: 3, Active: true}
	coupon := activeCoupon("20", ptr(dec("50")))

	res, err := Calculate(Input{
		Lines:      []Line{{ProductID: p.ID, Quantity: 3}},
		Products:   map[uuid.UUID]Product{p.ID: p},
		CouponCode: "SAVE5",
		Coupon:     coupon,
		Now:        now,
	})
	require.NoError(t, err)
	assert.False(t, res.CouponApplied)
	assert.Same(t, coupon, res.Coupon)
	assert.True(t, res.CouponDiscount.IsZero())
	assert.True(t, res.Total.Equal(dec("30")))
}

func TestCalculate_CouponAtExactMinimumApplies(t *testing.T) {
	p := Product{ID: uuid.New(), Name: "Pen", Price: dec("25"), Stock: 3, Active: true}
	res, err := Calculate(Input{
		Lines:      []Line{{ProductID: p.ID, Quantity: 2}},
		Products:   map[uuid.UUID]Product{p.ID: p},
		CouponCode: "SAVE5",
		Coupon:     activeCoupon("10", ptr(dec("50"))),
		Now:        now,
	})
	require.NoError(t, err)
	assert.True(t, res.CouponApplied)
	assert.True(t, res.Total.Equal(dec("45")))
}

func TestCalculate_InvalidCoupons(t *testing.T) {
	p := Product{ID: uuid.New(), Name: "Pen", Price: dec("10"), Stock: 3, Active: true}
	base := Input{
		Lines:      []Line{{ProductID: p.ID, Quantity: 1}},
		Products:   map[uuid.UUID]Product{p.ID: p},
		CouponCode: "SAVE5",
		Now:        now,
	}

	inactive := activeCoupon("5", nil)
	inactive.Active = false
	expired := activeCoupon("5", nil)
	expired.EndDate = now.Add(-time.Minute)
	future := activeCoupon("5", nil)
	future.StartDate = now.Add(time.Minute)

	for name, c := range map[string]*Coupon{"missing": nil, "inactive": inactive, "expired": expired, "future": future} {
		t.Run(name, func(t *testing.T) {
			in := base
			in.Coupon = c
			_, err := Calculate(in)
			var invalid *InvalidCouponError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, "SAVE5", invalid.Code)
		})
	}
}

func TestCalculate_ValidationFailures(t *testing.T) {
	p := Product{ID: uuid.New(), Name: "Desk", Price: dec("10"), Stock: 2, Active: true}
	off := Product{ID: uuid.New(), Name: "Old", Price: dec("10"), Stock: 2, Active: false}
	products := map[uuid.UUID]Product{p.ID: p, off.ID: off}

	tests := []struct {
		name   string
		lines  []Line
		reason string
	}{
		{name: "empty", lines: nil, reason: "No items provided."},
		{name: "zero quantity", lines: []Line{{ProductID: p.ID, Quantity: 0}}, reason: "quantity must be at least 1"},
		{name: "duplicate", lines: []Line{{ProductID: p.ID, Quantity: 1}, {ProductID: p.ID, Quantity: 1}}, reason: "product appears more than once in the order"},
		{name: "unknown", lines: []Line{{ProductID: uuid.New(), Quantity: 1}}, reason: "One or more products are invalid or inactive."},
		{name: "inactive", lines: []Line{{ProductID: off.ID, Quantity: 1}}, reason: "One or more products are invalid or inactive."},
		{name: "over stock", lines: []Line{{ProductID: p.ID, Quantity: 3}}, reason: "Not enough stock for product: Desk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(Input{Lines: tt.lines, Products: products, Now: now})
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

func TestCalculate_CouponSharesFollowLineTotals(t *testing.T) {
	a := Product{ID: uuid.New(), Name: "A", Price: dec("10"), Stock: 10, Active: true}
	b := Product{ID: uuid.New(), Name: "B", Price: dec("20"), Stock: 10, Active: true}
	c := Product{ID: uuid.New(), Name: "C", Price: dec("3.33"), Stock: 10, Active: true}

	res, err := Calculate(Input{
		Lines:      []Line{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 1}, {ProductID: c.ID, Quantity: 3}},
		Products:   map[uuid.UUID]Product{a.ID: a, b.ID: b, c.ID: c},
		CouponCode: "SAVE5",
		Coupon:     activeCoupon("7", nil),
		Now:        now,
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, l := range res.Lines {
		sum = sum.Add(l.CouponShare)
	}
	assert.True(t, sum.Equal(res.CouponDiscount), "shares %s != discount %s", sum, res.CouponDiscount)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, []uuid.UUID{res.Lines[0].ProductID, res.Lines[1].ProductID, res.Lines[2].ProductID})
}

func TestCalculate_IsDeterministic(t *testing.T) {
	tag := uuid.New()
	p1 := Product{ID: uuid.New(), Name: "1", Price: dec("9.99"), Stock: 9, TagIDs: []uuid.UUID{tag}, Active: true}
	p2 := Product{ID: uuid.New(), Name: "2", Price: dec("1.25"), Stock: 9, Active: true}
	in := Input{
		Lines:     []Line{{ProductID: p2.ID, Quantity: 4}, {ProductID: p1.ID, Quantity: 3}},
		Products:  map[uuid.UUID]Product{p1.ID: p1, p2.ID: p2},
		Discounts: []Discount{{ID: uuid.New(), Percentage: dec("12.5"), TagID: &tag}},
		Now:       now,
	}

	first, err := Calculate(in)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Calculate(in)
		require.NoError(t, err)
		require.True(t, first.Total.Equal(again.Total))
		require.Equal(t, first.Lines[0].ProductID, again.Lines[0].ProductID)
	}
}
