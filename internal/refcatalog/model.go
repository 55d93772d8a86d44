// Package refcatalog holds the platform-owned canonical product catalog
// suppliers link their own products to.
package refcatalog

import (
	"github.com/google/uuid"

	"github.com/alima/supply/internal/uom"
)

// Product is a canonical catalog entry.
type Product struct {
	ID               uuid.UUID
	SKU              string
	UPC              string
	Description      string
	LongDescription  string
	SellUnit         uom.Unit
	BuyUnit          uom.Unit
	ConversionFactor float64
	UnitMultiple     float64
	MinQuantity      float64
	EstimatedWeight  *float64
	TaxCode          string
	TaxRate          float64
	IEPSRate         *float64
}

// Index resolves canonical products by identifier.
type Index map[uuid.UUID]Product

// NewIndex builds an Index.
func NewIndex(products []Product) Index {
	idx := make(Index, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

// Lookup returns the product for id.
func (i Index) Lookup(id uuid.UUID) (Product, bool) {
	p, ok := i[id]
	return p, ok
}
