package pricelists

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PublishedEvent describes a newly appended price list version.
type PublishedEvent struct {
	PriceListID    uuid.UUID   `json:"price_list_id"`
	Name           string      `json:"name"`
	SupplierUnitID uuid.UUID   `json:"supplier_unit_id"`
	Version        int64       `json:"version"`
	BranchIDs      []uuid.UUID `json:"branch_ids"`
	PriceCount     int         `json:"price_count"`
	PublishedAt    time.Time   `json:"published_at"`
}

// Publisher announces published versions to background workers.
type Publisher interface {
	PriceListPublished(ctx context.Context, evt PublishedEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PriceListPublished(context.Context, PublishedEvent) error { return nil }
