package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one requested product and quantity.
type CartLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// QuoteInput prices a cart without persisting anything.
type QuoteInput struct {
	Items      []CartLine
	CouponCode string
}

// CreateInput is the checkout payload.
type CreateInput struct {
	FirstName      string
	LastName       string
	Address        string
	MobileNumber   string
	AnotherMobile  *string
	AnotherAddress *string
	CustomerEmail  *string
	Items          []CartLine
	CouponCode     string
}

// ListParams are the admin order list query inputs. StartDate and EndDate
// are calendar days; EndDate covers the whole day.
type ListParams struct {
	Page      int
	Limit     int
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// QuotedItem is one priced cart line.
type QuotedItem struct {
	ProductID          uuid.UUID       `json:"productId"`
	Name               string          `json:"name"`
	Quantity           int             `json:"quantity"`
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	DiscountApplied    decimal.Decimal `json:"discountApplied"`
	PriceAfterDiscount float64         `json:"priceAfterDiscount"`
	LineTotal          float64         `json:"lineTotal"`
	ImageURL           string          `json:"imageUrl"`
}

// QuoteDTO is the cart pricing preview.
type QuoteDTO struct {
	DiscountedItems      []QuotedItem `json:"discountedItems"`
	Subtotal             float64      `json:"subtotal"`
	CouponCode           *string      `json:"couponCode"`
	CouponDiscountAmount float64      `json:"couponDiscountAmount"`
	TotalAfterDiscount   float64      `json:"totalAfterDiscount"`
}

type ProductRef struct {
	ProductID  *uuid.UUID `json:"productId"`
	Name       string     `json:"name"`
	ImageURL   string     `json:"imageUrl"`
	CategoryID *uuid.UUID `json:"categoryId"`
}

type CustomerInfo struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          *string `json:"email"`
	MobileNumber   string  `json:"mobileNumber"`
	AnotherMobile  *string `json:"anotherMobile"`
	Address        string  `json:"address"`
	AnotherAddress *string `json:"anotherAddress"`
}

// ItemSummary is an item as shown in the admin list.
type ItemSummary struct {
	Quantity        int        `json:"quantity"`
	PriceAtPurchase float64    `json:"priceAtPurchase"`
	Product         ProductRef `json:"product"`
}

// OrderSummary is one row of the admin order list.
type OrderSummary struct {
	OrderID      uuid.UUID         `json:"orderId"`
	Status       enums.OrderStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	TotalPrice   float64           `json:"totalPrice"`
	CustomerInfo CustomerInfo      `json:"customerInfo"`
	Items        []ItemSummary     `json:"items"`
}

// ListResult is one page of orders.
type ListResult struct {
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalCount  int64          `json:"totalCount"`
	Orders      []OrderSummary `json:"orders"`
}

// CouponSnapshot is the coupon as it was when the order was placed.
type CouponSnapshot struct {
	Code        string           `json:"code"`
	Percentage  *decimal.Decimal `json:"percentage"`
	Description *string          `json:"description"`
}

type ItemDetail struct {
	Quantity        int             `json:"quantity"`
	PriceAtPurchase float64         `json:"priceAtPurchase"`
	DiscountApplied decimal.Decimal `json:"discountApplied"`
	DiscountID      *uuid.UUID      `json:"discountId"`
	Product         ProductRef      `json:"product"`
}

// OrderDetail is the full admin view of one order.
type OrderDetail struct {
	OrderID        uuid.UUID         `json:"orderId"`
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Email          *string           `json:"email"`
	Phone          string            `json:"phone"`
	AnotherMobile  *string           `json:"anotherMobile"`
	Address        string            `json:"address"`
	AnotherAddress *string           `json:"anotherAddress"`
	Status         enums.OrderStatus `json:"status"`
	Currency       string            `json:"currency"`
	CreatedAt      time.Time         `json:"createdAt"`
	TotalPrice     float64           `json:"totalPrice"`
	Coupon         *CouponSnapshot   `json:"coupon"`
	Items          []ItemDetail      `json:"items"`
}

func toQuoteDTO(res *pricing.Result) *QuoteDTO {
	out := &QuoteDTO{
		DiscountedItems:      make([]QuotedItem, 0, len(res.Lines)),
		Subtotal:             pricing.Present(res.Subtotal),
		CouponDiscountAmount: pricing.Present(res.CouponDiscount),
		TotalAfterDiscount:   pricing.Present(res.Total),
	}
	if res.Coupon != nil {
		code := res.Coupon.Code
		out.CouponCode = &code
	}
	for _, l := range res.Lines {
		out.DiscountedItems = append(out.DiscountedItems, QuotedItem{
			ProductID:          l.ProductID,
			Name:               l.Name,
			Quantity:           l.Quantity,
			OriginalPrice:      l.BasePrice,
			DiscountApplied:    l.DiscountPercentage,
			PriceAfterDiscount: pricing.Present(l.UnitPrice),
			LineTotal:          pricing.Present(l.LineTotal),
			ImageURL:           l.ImageURL,
		})
	}
	return out
}

func productRef(item models.OrderItem) ProductRef {
	return ProductRef{
		ProductID:  item.ProductID,
		Name:       item.ProductName,
		ImageURL:   item.ProductImageURL,
		CategoryID: item.ProductCategory,
	}
}

func toSummary(o models.Order) OrderSummary {
	out := OrderSummary{
		OrderID:    o.ID,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
		TotalPrice: pricing.Present(o.TotalAmount),
		CustomerInfo: CustomerInfo{
			FirstName:      o.FirstName,
			LastName:       o.LastName,
			Email:          o.CustomerEmail,
			MobileNumber:   o.MobileNumber,
			AnotherMobile:  o.AnotherMobile,
			Address:        o.Address,
			AnotherAddress: o.AnotherAddress,
		},
		Items: make([]ItemSummary, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, ItemSummary{
			Quantity:        item.Quantity,
			PriceAtPurchase: pricing.Present(item.PriceAtPurchase),
			Product:         productRef(item),
		})
	}
	return out
}

func toDetail(o models.Order) *OrderDetail {
	out := &OrderDetail{
		OrderID:        o.ID,
		FirstName:      o.FirstName,
		LastName:       o.LastName,
		Email:          o.CustomerEmail,
		Phone:          o.MobileNumber,
		AnotherMobile:  o.AnotherMobile,
		Address:        o.Address,
		AnotherAddress: o.AnotherAddress,
		Status:         o.Status,
		Currency:       o.Currency,
		CreatedAt:      o.CreatedAt,
		TotalPrice:     pricing.Present(o.TotalAmount),
		Items:          make([]ItemDetail, 0, len(o.Items)),
	}
	if o.CouponCode != nil {
		out.Coupon = &CouponSnapshot{
			Code:        *o.CouponCode,
			Percentage:  o.CouponPercentage,
			Description: o.CouponDescription,
		}
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, ItemDetail{
			Quantity:        item.Quantity,
			PriceAtPurchase: pricing.Present(item.PriceAtPurchase),
			DiscountApplied: item.DiscountApplied,
			DiscountID:      item.DiscountID,
			Product:         productRef(item),
		})
	}
	return out
}
