package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks where a storefront order is in fulfilment.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	// OrderStatusPaid only exists on historical rows; it still counts as a sale.
	OrderStatusPaid OrderStatus = "paid"
)

// adminOrderStatuses are the values an operator may set.
var adminOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// SalesStatuses are the statuses that count as revenue in reports.
var SalesStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// CouponUsageStatuses extends SalesStatuses with pending orders.
var CouponUsageStatuses = append([]OrderStatus{OrderStatusPending}, SalesStatuses...)

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the status can be assigned through the admin API.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range adminOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an assignable OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := OrderStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// StatusStrings renders statuses for SQL IN clauses.
func StatusStrings(statuses []OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
