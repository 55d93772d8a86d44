package suppliers

import (
	"github.com/google/uuid"
)

// Unit is a sub-location of a supplier business that owns price lists.
type Unit struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"supplier_business_id"`
	Name       string    `json:"unit_name"`
}

// Branch is a restaurant branch a price list can be shown to.
type Branch struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"branch_name"`
}
