package orders

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderCreatedEvent is published once the order transaction commits.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Currency    string            `json:"currency"`
	ItemCount   int               `json:"item_count"`
	CouponCode  *string           `json:"coupon_code,omitempty"`
	Items       []EventItem       `json:"items"`
}

type EventItem struct {
	ProductID *uuid.UUID `json:"product_id"`
	Quantity  int        `json:"quantity"`
}

// OrderStatusChangedEvent is published after an operator moves an order.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	Status         enums.OrderStatus `json:"status"`
}
