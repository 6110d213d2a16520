package pricing

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError aborts the whole cart.
type ValidationError struct {
	ProductID uuid.UUID
	Quantity  int
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.ProductID == uuid.Nil {
		return e.Reason
	}
	return fmt.Sprintf("%s (product %s, quantity %d)", e.Reason, e.ProductID, e.Quantity)
}

// InvalidCouponError means a code was supplied that cannot be used now.
type InvalidCouponError struct {
	Code string
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("Invalid or expired coupon: %s", e.Code)
}
