package orders

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type publishedEvent struct {
	eventType string
	attrs     map[string]string
	data      any
}

type stubPublisher struct {
	events []publishedEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, eventType string, attrs map[string]string, data any) error {
	p.events = append(p.events, publishedEvent{eventType: eventType, attrs: attrs, data: data})
	return p.err
}

type stubMetrics struct {
	created   int
	conflicts int
}

func (m *stubMetrics) ObserveCreated(decimal.Decimal) { m.created++ }
func (m *stubMetrics) IncStockConflict()              { m.conflicts++ }

// staleCatalog reports more stock than the table holds, the way a read taken
// just before a concurrent order commits would.
type staleCatalog struct {
	inner catalogReader
}

func (c staleCatalog) FindForPricing(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	rows, err := c.inner.FindForPricing(ctx, ids)
	for i := range rows {
		rows[i].Stock = 1000
	}
	return rows, err
}

type harness struct {
	conn      *gorm.DB
	svc       Service
	events    *stubPublisher
	metrics   *stubMetrics
	category  models.Category
	tag       models.Tag
	shirt     models.Product
	mug       models.Product
	retired   models.Product
	couponSvc coupons.Service
}

func newHarness(t *testing.T, wrap func(catalogReader) catalogReader) *harness {
	t.Helper()
	conn := dbtest.Open(t, dbtest.FullSchema...)
	h := &harness{conn: conn, events: &stubPublisher{}, metrics: &stubMetrics{}}

	h.category = models.Category{Name: "Apparel", IsActive: true}
	h.tag = models.Tag{Name: "summer", IsActive: true}
	require.NoError(t, conn.Create(&h.category).Error)
	require.NoError(t, conn.Create(&h.tag).Error)

	h.shirt = models.Product{Name: "Shirt", Price: decimal.NewFromInt(100), Stock: 5, ImageURL: "shirt.png", CategoryID: &h.category.ID, IsActive: true}
	h.mug = models.Product{Name: "Mug", Price: decimal.NewFromInt(50), Stock: 2, ImageURL: "mug.png", IsActive: true}
	h.retired = models.Product{Name: "Retired", Price: decimal.NewFromInt(10), Stock: 9, ImageURL: "r.png", IsActive: false}
	for _, p := range []*models.Product{&h.shirt, &h.mug, &h.retired} {
		require.NoError(t, conn.Create(p).Error)
	}
	require.NoError(t, conn.Create(&models.ProductTag{ProductID: h.shirt.ID, TagID: h.tag.ID}).Error)

	couponSvc, err := coupons.NewService(coupons.NewRepository(conn))
	require.NoError(t, err)
	h.couponSvc = couponSvc

	var catalog catalogReader = products.NewRepository(conn)
	if wrap != nil {
		catalog = wrap(catalog)
	}

	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Tx:        db.FromGorm(conn),
		Catalog:   catalog,
		Discounts: discounts.NewRepository(conn),
		Coupons:   couponSvc,
		Events:    h.events,
		Metrics:   h.metrics,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	h.svc = svc
	return h
}

func (h *harness) addDiscount(t *testing.T, pct int64, d models.Discount) {
	t.Helper()
	now := time.Now().UTC()
	d.Percentage = decimal.NewFromInt(pct)
	d.IsActive = true
	d.StartDate = now.Add(-time.Hour)
	d.EndDate = now.Add(time.Hour)
	require.NoError(t, h.conn.Create(&d).Error)
}

func (h *harness) addCoupon(t *testing.T, code string, pct int64, minimum *decimal.Decimal) {
	t.Helper()
	now := time.Now().UTC()
	_, err := h.couponSvc.Create(context.Background(), coupons.CreateInput{
		Code:           code,
		Description:    code + " promo",
		Percentage:     decimal.NewFromInt(pct),
		MinOrderAmount: minimum,
		StartDate:      now.Add(-time.Hour),
		EndDate:        now.Add(time.Hour),
	})
	require.NoError(t, err)
}

func (h *harness) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, h.conn.First(&p, "id = ?", id).Error)
	return p.Stock
}

func (h *harness) checkout(items ...CartLine) CreateInput {
	email := "ada@example.com"
	return CreateInput{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Address:       "12 Nile St",
		MobileNumber:  "0100000000",
		CustomerEmail: &email,
		Items:         items,
	}
}

func TestQuoteAppliesDiscountAndCoupon(t *testing.T) {
	h := newHarness(t, nil)
	h.addDiscount(t, 20, models.Discount{TagID: &h.tag.ID})
	h.addCoupon(t, "TEN", 10, nil)

	quote, err := h.svc.Quote(context.Background(), QuoteInput{
		Items:      []CartLine{{ProductID: h.shirt.ID, Quantity: 2}, {ProductID: h.mug.ID, Quantity: 1}},
		CouponCode: "TEN",
	})
	require.NoError(t, err)
	require.Len(t, quote.DiscountedItems, 2)
	require.Equal(t, h.shirt.ID, quote.DiscountedItems[0].ProductID)
	require.True(t, quote.DiscountedItems[0].DiscountApplied.Equal(decimal.NewFromInt(20)))
	require.Equal(t, 80.0, quote.DiscountedItems[0].PriceAfterDiscount)
	require.Equal(t, 160.0, quote.DiscountedItems[0].LineTotal)
	require.Equal(t, 210.0, quote.Subtotal)
	require.Equal(t, 21.0, quote.CouponDiscountAmount)
	require.Equal(t, 189.0, quote.TotalAfterDiscount)
	require.NotNil(t, quote.CouponCode)
	require.Equal(t, "TEN", *quote.CouponCode)
}

func TestQuoteRejectsInvalidCarts(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	cases := map[string]QuoteInput{
		"empty":     {},
		"inactive":  {Items: []CartLine{{ProductID: h.retired.ID, Quantity: 1}}},
		"unknown":   {Items: []CartLine{{ProductID: uuid.New(), Quantity: 1}}},
		"stock":     {Items: []CartLine{{ProductID: h.mug.ID, Quantity: 3}}},
		"duplicate": {Items: []CartLine{{ProductID: h.mug.ID, Quantity: 1}, {ProductID: h.mug.ID, Quantity: 1}}},
		"coupon":    {Items: []CartLine{{ProductID: h.mug.ID, Quantity: 1}}, CouponCode: "NOPE"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.svc.Quote(ctx, input)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestCreatePersistsSnapshotAndDecrementsStock(t *testing.T) {
	h := newHarness(t, nil)
	h.addDiscount(t, 10, models.Discount{ProductID: &h.shirt.ID})
	h.addCoupon(t, "HALF", 50, nil)

	input := h.checkout(CartLine{ProductID: h.shirt.ID, Quantity: 2}, CartLine{ProductID: h.mug.ID, Quantity: 2})
	input.CouponCode = "HALF"

	order, err := h.svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Equal(t, enums.CurrencyEGP, order.Currency)
	require.Equal(t, 140.0, order.TotalPrice)
	require.NotNil(t, order.Coupon)
	require.Equal(t, "HALF", order.Coupon.Code)
	require.Len(t, order.Items, 2)

	require.Equal(t, 3, h.stock(t, h.shirt.ID))
	require.Equal(t, 0, h.stock(t, h.mug.ID))

	var items []models.OrderItem
	require.NoError(t, h.conn.Where("order_id = ?", order.OrderID).Find(&items).Error)
	require.Len(t, items, 2)
	for _, item := range items {
		if *item.ProductID == h.shirt.ID {
			require.True(t, item.PriceAtPurchase.Equal(decimal.NewFromInt(90)))
			require.True(t, item.DiscountApplied.Equal(decimal.NewFromInt(10)))
			require.NotNil(t, item.DiscountID)
			require.Equal(t, h.category.ID, *item.ProductCategory)
		}
	}

	require.Equal(t, 1, h.metrics.created)
	require.Len(t, h.events.events, 1)
	require.Equal(t, EventOrderCreated, h.events.events[0].eventType)
	require.Equal(t, order.OrderID.String(), h.events.events[0].attrs[attrOrderID])
	payload := h.events.events[0].data.(OrderCreatedEvent)
	require.Equal(t, 2, payload.ItemCount)
}

func TestCreateSnapshotsCouponBelowMinimumWithoutDeduction(t *testing.T) {
	h := newHarness(t, nil)
	minimum := decimal.NewFromInt(1000)
	h.addCoupon(t, "BIG", 20, &minimum)

	input := h.checkout(CartLine{ProductID: h.mug.ID, Quantity: 1})
	input.CouponCode = "BIG"
	order, err := h.svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 50.0, order.TotalPrice)
	require.NotNil(t, order.Coupon)
	require.Equal(t, "BIG", order.Coupon.Code)
}

func TestCreateRequiresCustomerFields(t *testing.T) {
	h := newHarness(t, nil)
	input := h.checkout(CartLine{ProductID: h.mug.ID, Quantity: 1})
	input.Address = "  "

	_, err := h.svc.Create(context.Background(), input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Contains(t, err.Error(), errMissingFields)

	_, err = h.svc.Create(context.Background(), h.checkout())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateStockConflictRollsBack(t *testing.T) {
	h := newHarness(t, func(inner catalogReader) catalogReader { return staleCatalog{inner: inner} })

	_, err := h.svc.Create(context.Background(), h.checkout(
		CartLine{ProductID: h.shirt.ID, Quantity: 1},
		CartLine{ProductID: h.mug.ID, Quantity: 5},
	))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	var conflict *StockConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, h.mug.ID, conflict.ProductID)

	var count int64
	require.NoError(t, h.conn.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
	require.Equal(t, 5, h.stock(t, h.shirt.ID))
	require.Equal(t, 1, h.metrics.conflicts)
	require.Empty(t, h.events.events)
}

func TestCreateSucceedsWhenPublishFails(t *testing.T) {
	h := newHarness(t, nil)
	h.events.err = errors.New("broker down")

	order, err := h.svc.Create(context.Background(), h.checkout(CartLine{ProductID: h.mug.ID, Quantity: 1}))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, order.OrderID)
	require.Len(t, h.events.events, 1)
}

func TestListFiltersByStatusAndDate(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first, err := h.svc.Create(ctx, h.checkout(CartLine{ProductID: h.shirt.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, h.checkout(CartLine{ProductID: h.mug.ID, Quantity: 1}))
	require.NoError(t, err)

	old := time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, h.conn.Model(&models.Order{}).Where("id = ?", first.OrderID).Update("created_at", old).Error)
	_, err = h.svc.UpdateStatus(ctx, first.OrderID, "shipped")
	require.NoError(t, err)

	all, err := h.svc.List(ctx, ListParams{})
	require.NoError(t, err)
	require.Equal(t, int64(2), all.TotalCount)
	require.Equal(t, 1, all.CurrentPage)
	require.Equal(t, 1, all.TotalPages)
	require.Equal(t, first.OrderID, all.Orders[1].OrderID)
	require.Equal(t, "Ada", all.Orders[0].CustomerInfo.FirstName)
	require.Len(t, all.Orders[0].Items, 1)

	shipped, err := h.svc.List(ctx, ListParams{Status: "shipped"})
	require.NoError(t, err)
	require.Equal(t, int64(1), shipped.TotalCount)

	day := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	sameDay, err := h.svc.List(ctx, ListParams{StartDate: &day, EndDate: &day})
	require.NoError(t, err)
	require.Equal(t, int64(1), sameDay.TotalCount)
	require.Equal(t, first.OrderID, sameDay.Orders[0].OrderID)

	_, err = h.svc.List(ctx, ListParams{Status: "lost"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetAndUpdateStatus(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.Get(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	created, err := h.svc.Create(ctx, h.checkout(CartLine{ProductID: h.mug.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = h.svc.UpdateStatus(ctx, created.OrderID, "paid")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = h.svc.UpdateStatus(ctx, uuid.New(), "shipped")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	updated, err := h.svc.UpdateStatus(ctx, created.OrderID, "Delivered")
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, updated.Status)

	got, err := h.svc.Get(ctx, created.OrderID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, got.Status)
	require.Nil(t, got.Coupon)
	require.Equal(t, "0100000000", got.Phone)

	last := h.events.events[len(h.events.events)-1]
	require.Equal(t, EventOrderStatusChanged, last.eventType)
	change := last.data.(OrderStatusChangedEvent)
	require.Equal(t, enums.OrderStatusPending, change.PreviousStatus)
}

func TestCouponSnapshotSurvivesCouponDeletion(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.addCoupon(t, "GONE", 10, nil)

	input := h.checkout(CartLine{ProductID: h.mug.ID, Quantity: 1})
	input.CouponCode = "GONE"
	created, err := h.svc.Create(ctx, input)
	require.NoError(t, err)

	require.NoError(t, h.conn.Exec("DELETE FROM coupons").Error)

	got, err := h.svc.Get(ctx, created.OrderID)
	require.NoError(t, err)
	require.NotNil(t, got.Coupon)
	require.Equal(t, "GONE", got.Coupon.Code)
	require.Equal(t, 45.0, got.TotalPrice)
}
