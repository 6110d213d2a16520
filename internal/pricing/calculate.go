package pricing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Calculate prices the cart. Output order follows input order.
func Calculate(in Input) (*Result, error) {
	if len(in.Lines) == 0 {
		return nil, &ValidationError{Reason: "No items provided."}
	}

	coupon, err := resolveCoupon(in)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Lines:          make([]PricedLine, 0, len(in.Lines)),
		Subtotal:       decimal.Zero,
		CouponDiscount: decimal.Zero,
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, &ValidationError{ProductID: line.ProductID, Quantity: line.Quantity, Reason: "quantity must be at least 1"}
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, &ValidationError{ProductID: line.ProductID, Quantity: line.Quantity, Reason: "product appears more than once in the order"}
		}
		seen[line.ProductID] = struct{}{}

		product, ok := in.Products[line.ProductID]
		if !ok || !product.Active {
			return nil, &ValidationError{ProductID: line.ProductID, Quantity: line.Quantity, Reason: "One or more products are invalid or inactive."}
		}
		if line.Quantity > product.Stock {
			return nil, &ValidationError{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Reason:    fmt.Sprintf("Not enough stock for product: %s", product.Name),
			}
		}

		priced := PricedLine{
			ProductID:          product.ID,
			Name:               product.Name,
			ImageURL:           product.ImageURL,
			CategoryID:         product.CategoryID,
			Quantity:           line.Quantity,
			BasePrice:          product.Price,
			DiscountPercentage: decimal.Zero,
			UnitPrice:          product.Price,
		}
		if d := ResolveDiscount(product, in.Discounts); d != nil {
			id := d.ID
			priced.DiscountID = &id
			priced.DiscountPercentage = d.Percentage
			priced.UnitPrice = ApplyPercentage(product.Price, d.Percentage)
		}
		priced.LineTotal = priced.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

		res.Subtotal = res.Subtotal.Add(priced.LineTotal)
		res.Lines = append(res.Lines, priced)
	}

	if coupon != nil {
		res.Coupon = coupon
		if coupon.MinOrderAmount == nil || res.Subtotal.GreaterThanOrEqual(*coupon.MinOrderAmount) {
			res.CouponApplied = true
			res.CouponDiscount = res.Subtotal.Mul(coupon.Percentage).Div(hundred)
		}
	}
	res.Total = res.Subtotal.Sub(res.CouponDiscount)

	weights := make([]decimal.Decimal, len(res.Lines))
	for i, l := range res.Lines {
		weights[i] = l.LineTotal
	}
	for i, share := range Split(res.CouponDiscount, weights) {
		res.Lines[i].CouponShare = share
	}

	return res, nil
}

// ResolveDiscount picks the single discount for a product. A product-level
// discount wins, then the first tag match in discount order, then category.
func ResolveDiscount(p Product, discounts []Discount) *Discount {
	for i := range discounts {
		if d := discounts[i]; d.ProductID != nil && *d.ProductID == p.ID {
			return &discounts[i]
		}
	}

	if len(p.TagIDs) > 0 {
		tags := make(map[uuid.UUID]struct{}, len(p.TagIDs))
		for _, id := range p.TagIDs {
			tags[id] = struct{}{}
		}
		for i := range discounts {
			if d := discounts[i]; d.TagID != nil {
				if _, ok := tags[*d.TagID]; ok {
					return &discounts[i]
				}
			}
		}
	}

	if p.CategoryID != nil {
		for i := range discounts {
			if d := discounts[i]; d.CategoryID != nil && *d.CategoryID == *p.CategoryID {
				return &discounts[i]
			}
		}
	}
	return nil
}

// ApplyPercentage returns price reduced by pct percent.
func ApplyPercentage(price, pct decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(pct)).Div(hundred)
}

func resolveCoupon(in Input) (*Coupon, error) {
	code := strings.TrimSpace(in.CouponCode)
	if code == "" {
		return nil, nil
	}
	c := in.Coupon
	if c == nil || !c.Active || in.Now.Before(c.StartDate) || in.Now.After(c.EndDate) {
		return nil, &InvalidCouponError{Code: code}
	}
	return c, nil
}
