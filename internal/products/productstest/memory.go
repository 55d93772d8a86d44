// Package productstest provides in-memory collaborators for product tests.
package productstest

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/alima/supply/internal/products"
	"github.com/alima/supply/internal/refcatalog"
	"github.com/alima/supply/internal/taxcodes"
)

// Repository is an in-memory products.Repository.
type Repository struct {
	mu      sync.Mutex
	order   []uuid.UUID
	records map[uuid.UUID]products.Product
	Creates int
	Updates int
}

// NewRepository returns an empty repository seeded with products.
func NewRepository(seed ...products.Product) *Repository {
	r := &Repository{records: map[uuid.UUID]products.Product{}}
	for _, p := range seed {
		r.order = append(r.order, p.ID)
		r.records[p.ID] = p
	}
	return r
}

func (r *Repository) ListByBusiness(_ context.Context, businessID uuid.UUID, filters products.ListFilters) ([]products.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []products.Product
	for _, id := range r.order {
		p := r.records[id]
		if p.BusinessID != businessID {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(p.Description), strings.ToLower(filters.Search)) {
			continue
		}
		if filters.IsActive != nil && p.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *Repository) GetMany(_ context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]products.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []products.Product
	for _, id := range ids {
		if p, ok := r.records[id]; ok && p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repository) Create(_ context.Context, p products.Product) (products.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.BusinessID == p.BusinessID && existing.SKU == p.SKU {
			return products.Product{}, products.ErrSKUTaken
		}
	}
	r.order = append(r.order, p.ID)
	r.records[p.ID] = p
	r.Creates++
	return p, nil
}

func (r *Repository) Update(_ context.Context, p products.Product, mask products.FieldMask) (products.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.records[p.ID]
	if !ok || current.BusinessID != p.BusinessID {
		return products.Product{}, products.ErrNotFound
	}
	current.Apply(p, mask)
	current.LastUpdated = p.LastUpdated
	r.records[p.ID] = current
	r.Updates++
	return current, nil
}

// All returns every stored product in insertion order.
func (r *Repository) All() []products.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]products.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

// Catalog is a fixed reference catalog.
type Catalog []refcatalog.Product

func (c Catalog) ListAll(context.Context) ([]refcatalog.Product, error) { return c, nil }

// TaxCodes is a fixed SAT code set.
type TaxCodes []string

func (t TaxCodes) Valid(context.Context) (taxcodes.Set, error) { return taxcodes.NewSet(t...), nil }
