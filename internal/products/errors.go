package products

import (
	"fmt"

	"github.com/alima/supply/internal/shared"
)

var (
	// ErrNotFound indicates the supplier product does not exist.
	ErrNotFound = fmt.Errorf("products: %w", shared.ErrNotFound)
	// ErrSKUTaken is returned when a SKU already belongs to another product
	// of the same supplier.
	ErrSKUTaken = fmt.Errorf("products: sku already in use: %w", shared.ErrConflict)
)
