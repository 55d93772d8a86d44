// Package pricelists keeps append-only, versioned price lists per supplier
// unit and orchestrates the uploads and edits that publish new versions.
package pricelists

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultListName names the default lists bootstrapped for units without one.
const DefaultListName = "Lista General"

// PriceList is one immutable version of a named list for a supplier unit.
// The current state of (Name, SupplierUnitID) is the row with the highest
// Version.
type PriceList struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	SupplierUnitID uuid.UUID   `json:"supplier_unit_id"`
	Version        int64       `json:"version"`
	IsDefault      bool        `json:"is_default"`
	PriceIDs       []uuid.UUID `json:"supplier_product_price_ids"`
	BranchIDs      []uuid.UUID `json:"supplier_restaurant_ids"`
	ValidFrom      time.Time   `json:"valid_from"`
	ValidUpto      time.Time   `json:"valid_upto"`
	CreatedBy      uuid.UUID   `json:"created_by"`
	CreatedAt      time.Time   `json:"created_at"`
	LastUpdated    time.Time   `json:"last_updated"`
}

// Price is an immutable price record for one supplier product.
type Price struct {
	ID                uuid.UUID       `json:"id"`
	SupplierProductID uuid.UUID       `json:"supplier_product_id"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	ValidFrom         time.Time       `json:"valid_from"`
	ValidUpto         time.Time       `json:"valid_upto"`
	CreatedBy         uuid.UUID       `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
}

// PriceInput pairs a supplier product with a price in structured requests.
type PriceInput struct {
	SupplierProductID uuid.UUID       `json:"supplier_product_id" validate:"required"`
	Price             decimal.Decimal `json:"price" validate:"required"`
}

// ListMeta is the metadata shared by every creation path.
type ListMeta struct {
	Name      string
	UnitIDs   []uuid.UUID
	BranchIDs []uuid.UUID
	IsDefault bool
	ValidUpto *time.Time
}

// Detail is a price list version with its resolved prices.
type Detail struct {
	PriceList
	Prices []Price `json:"prices"`
}

// NewerThan orders versions of the same list: higher version first, then
// later last_updated.
func (l PriceList) NewerThan(o PriceList) bool {
	if l.Version != o.Version {
		return l.Version > o.Version
	}
	return l.LastUpdated.After(o.LastUpdated)
}

// Latest returns the newest of versions.
func Latest(versions []PriceList) (PriceList, bool) {
	if len(versions) == 0 {
		return PriceList{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if v.NewerThan(best) {
			best = v
		}
	}
	return best, true
}
