package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 10

	errMissingFields   = "Missing required fields or items."
	errInvalidCoupon   = "Invalid or expired coupon."
	errInvalidStatus   = "Invalid order status."
	errOrderNotFound   = "Order not found."
	errStockConflict   = "Stock changed while placing the order. Please review your cart and try again."
	attrOrderID        = "order_id"
	attrOrderStatus    = "status"
	eventPublishFailed = "order.event_publish_failed"
)

// Service covers checkout and the admin order desk.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*QuoteDTO, error)
	Create(ctx context.Context, input CreateInput) (*OrderDetail, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDetail, error)
}

// ServiceParams wires the order service. Events and Metrics are optional.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Catalog   catalogReader
	Discounts discountSource
	Coupons   couponLookup
	Events    eventPublisher
	Metrics   orderMetrics
	Logger    *logger.Logger
	// Location decides where calendar-day filters start and end.
	Location *time.Location
}

type service struct {
	repo      Repository
	tx        txRunner
	catalog   catalogReader
	discounts discountSource
	coupons   couponLookup
	events    eventPublisher
	metrics   orderMetrics
	logg      *logger.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount source required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon lookup required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		catalog:   params.Catalog,
		discounts: params.Discounts,
		coupons:   params.Coupons,
		events:    params.Events,
		metrics:   params.Metrics,
		logg:      params.Logger,
		loc:       loc,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteDTO, error) {
	res, err := s.price(ctx, input.Items, input.CouponCode)
	if err != nil {
		return nil, err
	}
	return toQuoteDTO(res), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDetail, error) {
	if blank(input.FirstName) || blank(input.LastName) || blank(input.Address) || blank(input.MobileNumber) || len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, errMissingFields)
	}

	res, err := s.price(ctx, input.Items, input.CouponCode)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Address:        strings.TrimSpace(input.Address),
		MobileNumber:   strings.TrimSpace(input.MobileNumber),
		AnotherMobile:  optional(input.AnotherMobile),
		AnotherAddress: optional(input.AnotherAddress),
		CustomerEmail:  optional(input.CustomerEmail),
		TotalAmount:    res.Total,
		Currency:       enums.CurrencyEGP,
		Status:         enums.OrderStatusPending,
	}
	if c := res.Coupon; c != nil {
		id, code, pct, desc := c.ID, c.Code, c.Percentage, c.Description
		order.CouponID = &id
		order.CouponCode = &code
		order.CouponPercentage = &pct
		order.CouponDescription = &desc
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(res.Lines))
		for _, line := range res.Lines {
			productID := line.ProductID
			items = append(items, models.OrderItem{
				OrderID:         order.ID,
				ProductID:       &productID,
				Quantity:        line.Quantity,
				PriceAtPurchase: line.UnitPrice,
				ProductName:     line.Name,
				ProductImageURL: line.ImageURL,
				ProductCategory: line.CategoryID,
				DiscountApplied: line.DiscountPercentage,
				DiscountID:      line.DiscountID,
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return err
		}

		for _, line := range res.Lines {
			affected, err := repo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return &StockConflictError{ProductID: line.ProductID, Quantity: line.Quantity}
			}
		}
		order.Items = items
		return nil
	})
	if err != nil {
		var conflict *StockConflictError
		if errors.As(err, &conflict) {
			if s.metrics != nil {
				s.metrics.IncStockConflict()
			}
			s.logg.Warn(s.logg.WithField(ctx, "product_id", conflict.ProductID.String()), "order.stock_conflict")
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, errStockConflict)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order failed")
	}

	if s.metrics != nil {
		s.metrics.ObserveCreated(order.TotalAmount)
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		attrOrderID: order.ID.String(),
		"total":     order.TotalAmount.String(),
		"items":     len(order.Items),
	})
	s.logg.Info(logCtx, "order.created")

	s.publish(logCtx, EventOrderCreated, order, createdEvent(order))
	return toDetail(*order), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := pagination.Params{Page: params.Page, Limit: params.Limit}.Normalize(defaultListLimit)

	var filter ListFilter
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, err := parseListStatus(raw)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if params.StartDate != nil {
		from := startOfDay(*params.StartDate, s.loc)
		filter.From = &from
	}
	if params.EndDate != nil {
		to := endOfDay(*params.EndDate, s.loc)
		filter.To = &to
	}

	rows, total, err := s.repo.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders failed")
	}

	out := make([]OrderSummary, 0, len(rows))
	for _, o := range rows {
		out = append(out, toSummary(o))
	}
	return &ListResult{
		CurrentPage: page.Page,
		TotalPages:  pagination.TotalPages(total, page.Limit),
		TotalCount:  total,
		Orders:      out,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDetail(*order), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*OrderDetail, error) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, errInvalidStatus)
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := order.Status

	affected, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status failed")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, errOrderNotFound)
	}
	order.Status = status

	logCtx := s.logg.WithFields(ctx, map[string]any{
		attrOrderID:       id.String(),
		"previous_status": previous.String(),
		attrOrderStatus:   status.String(),
	})
	s.logg.Info(logCtx, "order.status_changed")
	s.publish(logCtx, EventOrderStatusChanged, order, OrderStatusChangedEvent{
		OrderID:        id,
		PreviousStatus: previous,
		Status:         status,
	})
	return toDetail(*order), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, errOrderNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order failed")
	}
	return order, nil
}

// price loads catalog, discount and coupon state for the cart and runs the
// calculator over it.
func (s *service) price(ctx context.Context, lines []CartLine, couponCode string) (*pricing.Result, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	pricingLines := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
		pricingLines = append(pricingLines, pricing.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	rows, err := s.catalog.FindForPricing(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products failed")
	}

	products := make(map[uuid.UUID]pricing.Product, len(rows))
	var categoryIDs, tagIDs []uuid.UUID
	for _, p := range rows {
		products[p.ID] = pricing.Product{
			ID:         p.ID,
			Name:       p.Name,
			ImageURL:   p.ImageURL,
			Price:      p.Price,
			Stock:      p.Stock,
			CategoryID: p.CategoryID,
			TagIDs:     p.TagIDs(),
			Active:     p.IsActive,
		}
		if p.CategoryID != nil {
			categoryIDs = append(categoryIDs, *p.CategoryID)
		}
		tagIDs = append(tagIDs, p.TagIDs()...)
	}

	now := s.now()
	var discounts []pricing.Discount
	if len(rows) > 0 {
		running, err := s.discounts.ActiveFor(ctx, now, ids, categoryIDs, tagIDs)
		if err != nil {
			return nil, err
		}
		discounts = make([]pricing.Discount, 0, len(running))
		for _, d := range running {
			discounts = append(discounts, pricing.Discount{
				ID:         d.ID,
				Percentage: d.Percentage,
				ProductID:  d.ProductID,
				CategoryID: d.CategoryID,
				TagID:      d.TagID,
			})
		}
	}

	var coupon *pricing.Coupon
	if code := strings.TrimSpace(couponCode); code != "" {
		row, err := s.coupons.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if row != nil {
			coupon = &pricing.Coupon{
				ID:             row.ID,
				Code:           row.Code,
				Description:    row.Description,
				Percentage:     row.Percentage,
				MinOrderAmount: row.MinOrderAmount,
				Active:         row.IsActive,
				StartDate:      row.StartDate,
				EndDate:        row.EndDate,
			}
		}
	}

	res, err := pricing.Calculate(pricing.Input{
		Lines:      pricingLines,
		Products:   products,
		Discounts:  discounts,
		CouponCode: couponCode,
		Coupon:     coupon,
		Now:        now,
	})
	if err != nil {
		var validation *pricing.ValidationError
		if errors.As(err, &validation) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, validation.Reason)
		}
		var invalidCoupon *pricing.InvalidCouponError
		if errors.As(err, &invalidCoupon) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, errInvalidCoupon)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "price cart failed")
	}
	return res, nil
}

// publish is best effort: the order is already committed.
func (s *service) publish(ctx context.Context, eventType string, order *models.Order, payload any) {
	if s.events == nil {
		return
	}
	attrs := map[string]string{
		attrOrderID:     order.ID.String(),
		attrOrderStatus: order.Status.String(),
	}
	if err := s.events.Publish(ctx, eventType, attrs, payload); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "event_type", eventType), eventPublishFailed, err)
	}
}

func createdEvent(order *models.Order) OrderCreatedEvent {
	items := make([]EventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, EventItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return OrderCreatedEvent{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		ItemCount:   len(items),
		CouponCode:  order.CouponCode,
		Items:       items,
	}
}

// parseListStatus accepts the assignable statuses plus the legacy paid value
// so historical orders stay filterable.
func parseListStatus(raw string) (enums.OrderStatus, error) {
	if strings.EqualFold(strings.TrimSpace(raw), string(enums.OrderStatusPaid)) {
		return enums.OrderStatusPaid, nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, errInvalidStatus)
	}
	return status, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
