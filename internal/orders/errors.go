package orders

import (
	"fmt"

	"github.com/google/uuid"
)

// StockConflictError is returned when the conditional stock decrement finds
// fewer units than the priced cart reserved. The whole order rolls back.
type StockConflictError struct {
	ProductID uuid.UUID
	Quantity  int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock changed for product %s while placing the order (quantity %d)", e.ProductID, e.Quantity)
}
