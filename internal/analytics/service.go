package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultTopLimit          = 5
	DefaultLowStockThreshold = 5
)

// Service provides the back office dashboard reports. Sales figures only
// count orders in enums.SalesStatuses.
type Service interface {
	Summary(ctx context.Context, rng Range) (*Summary, error)
	SalesByProduct(ctx context.Context, rng Range) ([]ProductSales, error)
	SalesByCategory(ctx context.Context, rng Range) ([]CategorySales, error)
	TopSellers(ctx context.Context, rng Range, limit int) ([]TopSeller, error)
	LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error)
	CouponUsage(ctx context.Context, rng Range) ([]CouponUsage, error)
	BestTimeToSell(ctx context.Context, rng Range) (*BestTime, error)
	MonthlyTrend(ctx context.Context, rng Range) ([]MonthSales, error)
	// Location is the zone used for day bounds and time buckets.
	Location() *time.Location
}

type service struct {
	repo *Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService builds the dashboard service. A nil location means UTC.
func NewService(repo *Repository, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, loc: loc, now: time.Now}, nil
}

func (s *service) Location() *time.Location {
	return s.loc
}

func (s *service) Summary(ctx context.Context, rng Range) (*Summary, error) {
	orders, err := s.repo.Orders(ctx, rng, enums.SalesStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sales failed")
	}
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	out := &Summary{TotalSales: pricing.Present(total), OrderCount: len(orders)}
	if len(orders) > 0 {
		out.AverageOrderValue = pricing.Present(total.Div(decimal.NewFromInt(int64(len(orders)))))
	}
	return out, nil
}

func (s *service) SalesByProduct(ctx context.Context, rng Range) ([]ProductSales, error) {
	lines, err := s.allocatedLines(ctx, rng)
	if err != nil {
		return nil, err
	}

	type acc struct {
		id    *uuid.UUID
		name  string
		sales decimal.Decimal
		qty   int
	}
	var order []uuid.UUID
	groups := map[uuid.UUID]*acc{}
	for _, l := range lines {
		key := uuid.Nil
		if l.ProductID != nil {
			key = *l.ProductID
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{id: l.ProductID, name: l.ProductName, sales: decimal.Zero}
			groups[key] = g
			order = append(order, key)
		}
		g.sales = g.sales.Add(l.allocated)
		g.qty += l.Quantity
	}

	out := make([]ProductSales, 0, len(order))
	for _, key := range order {
		g := groups[key]
		out = append(out, ProductSales{
			ProductID:     g.id,
			ProductName:   g.name,
			TotalSales:    pricing.Present(g.sales),
			TotalQuantity: g.qty,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSales > out[j].TotalSales })
	return out, nil
}

func (s *service) SalesByCategory(ctx context.Context, rng Range) ([]CategorySales, error) {
	lines, err := s.allocatedLines(ctx, rng)
	if err != nil {
		return nil, err
	}

	type acc struct {
		name  string
		sales decimal.Decimal
		qty   int
	}
	var order []uuid.UUID
	groups := map[uuid.UUID]*acc{}
	for _, l := range lines {
		if l.CategoryID == nil {
			continue
		}
		g, ok := groups[*l.CategoryID]
		if !ok {
			name := ""
			if l.CategoryName != nil {
				name = *l.CategoryName
			}
			g = &acc{name: name, sales: decimal.Zero}
			groups[*l.CategoryID] = g
			order = append(order, *l.CategoryID)
		}
		g.sales = g.sales.Add(l.allocated)
		g.qty += l.Quantity
	}

	out := make([]CategorySales, 0, len(order))
	for _, id := range order {
		g := groups[id]
		out = append(out, CategorySales{
			CategoryID:    id,
			CategoryName:  g.name,
			TotalSales:    pricing.Present(g.sales),
			TotalQuantity: g.qty,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSales > out[j].TotalSales })
	return out, nil
}

func (s *service) TopSellers(ctx context.Context, rng Range, limit int) ([]TopSeller, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	items, err := s.repo.Items(ctx, rng, enums.SalesStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sales failed")
	}

	type key struct {
		id    uuid.UUID
		name  string
		image string
	}
	var order []key
	groups := map[key]*TopSeller{}
	for _, it := range items {
		k := key{name: it.ProductName, image: it.ProductImageURL}
		if it.ProductID != nil {
			k.id = *it.ProductID
		}
		g, ok := groups[k]
		if !ok {
			g = &TopSeller{ProductID: it.ProductID, ProductName: it.ProductName, ImageURL: it.ProductImageURL}
			groups[k] = g
			order = append(order, k)
		}
		g.QuantitySold += it.Quantity
	}

	out := make([]TopSeller, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QuantitySold > out[j].QuantitySold })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *service) LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	rows, err := s.repo.LowStock(ctx, threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load low stock products failed")
	}
	out := make([]LowStockProduct, 0, len(rows))
	for _, p := range rows {
		item := LowStockProduct{ID: p.ID, Name: p.Name, Stock: p.Stock, ImageURL: p.ImageURL}
		if p.Category != nil {
			item.Category = &CategoryName{Name: p.Category.Name}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *service) CouponUsage(ctx context.Context, rng Range) ([]CouponUsage, error) {
	coupons, err := s.repo.Coupons(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupons failed")
	}
	counts, err := s.repo.CouponCounts(ctx, rng, enums.CouponUsageStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count coupon usage failed")
	}
	out := make([]CouponUsage, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, CouponUsage{
			ID:          c.ID,
			Code:        c.Code,
			Description: c.Description,
			Percentage:  c.Percentage,
			IsActive:    c.IsActive,
			StartDate:   c.StartDate,
			EndDate:     c.EndDate,
			UsedCount:   counts[c.ID],
		})
	}
	return out, nil
}

func (s *service) BestTimeToSell(ctx context.Context, rng Range) (*BestTime, error) {
	orders, err := s.repo.Orders(ctx, rng, enums.SalesStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sales failed")
	}

	var byHour [8]decimal.Decimal
	var byDay [7]decimal.Decimal
	for _, o := range orders {
		at := o.CreatedAt.In(s.loc)
		byHour[at.Hour()/3] = byHour[at.Hour()/3].Add(o.TotalAmount)
		byDay[at.Weekday()] = byDay[at.Weekday()].Add(o.TotalAmount)
	}

	out := &BestTime{
		ByHour:      make([]HourSales, 0, len(byHour)),
		ByDayOfWeek: make([]DaySales, 0, len(byDay)),
	}
	for i, total := range byHour {
		out.ByHour = append(out.ByHour, HourSales{Hour: i * 3, TotalSales: pricing.Present(total)})
	}
	for i, total := range byDay {
		out.ByDayOfWeek = append(out.ByDayOfWeek, DaySales{Day: time.Weekday(i).String(), TotalSales: pricing.Present(total)})
	}
	return out, nil
}

func (s *service) MonthlyTrend(ctx context.Context, rng Range) ([]MonthSales, error) {
	orders, err := s.repo.Orders(ctx, rng, enums.SalesStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sales failed")
	}

	type acc struct {
		sales decimal.Decimal
		count int
	}
	months := map[string]*acc{}

	year := s.now().In(s.loc).Year()
	if rng.Start != nil {
		year = rng.Start.In(s.loc).Year()
	}
	for m := time.January; m <= time.December; m++ {
		months[monthKey(year, m)] = &acc{sales: decimal.Zero}
	}

	for _, o := range orders {
		at := o.CreatedAt.In(s.loc)
		key := monthKey(at.Year(), at.Month())
		g, ok := months[key]
		if !ok {
			g = &acc{sales: decimal.Zero}
			months[key] = g
		}
		g.sales = g.sales.Add(o.TotalAmount)
		g.count++
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthSales, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthSales{Month: k, TotalSales: pricing.Present(months[k].sales), OrderCount: months[k].count})
	}
	return out, nil
}

type allocatedLine struct {
	itemRow
	allocated decimal.Decimal
}

// allocatedLines spreads each order's stored total, which already includes
// the coupon deduction, back over its lines in proportion to the line totals.
// The allocations of one order always sum to its total.
func (s *service) allocatedLines(ctx context.Context, rng Range) ([]allocatedLine, error) {
	items, err := s.repo.Items(ctx, rng, enums.SalesStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sales failed")
	}

	out := make([]allocatedLine, 0, len(items))
	for start := 0; start < len(items); {
		end := start
		for end < len(items) && items[end].OrderID == items[start].OrderID {
			end++
		}
		group := items[start:end]
		weights := make([]decimal.Decimal, len(group))
		for i, it := range group {
			weights[i] = it.PriceAtPurchase.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		for i, share := range pricing.Split(group[0].OrderTotal, weights) {
			out = append(out, allocatedLine{itemRow: group[i], allocated: share})
		}
		start = end
	}
	return out, nil
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}
