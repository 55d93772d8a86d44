package products

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/alima/supply/internal/batchfile"
	"github.com/alima/supply/internal/uom"
)

// DescriptionKey is the normalised (description, sell unit) match key.
func DescriptionKey(description string, unit uom.Unit) string {
	return batchfile.Normalize(description) + "|" + string(unit)
}

// Index resolves a supplier's products by id, SKU, description key and
// canonical reference. It is built per request and is not safe for
// concurrent use.
type Index struct {
	byID          map[uuid.UUID]Product
	bySKU         map[string]uuid.UUID
	byDescription map[string]uuid.UUID
	byReference   map[uuid.UUID]uuid.UUID
}

// NewIndex indexes products. When two products share a key the first wins.
func NewIndex(products []Product) *Index {
	idx := &Index{
		byID:          make(map[uuid.UUID]Product, len(products)),
		bySKU:         make(map[string]uuid.UUID, len(products)),
		byDescription: make(map[string]uuid.UUID, len(products)),
		byReference:   make(map[uuid.UUID]uuid.UUID),
	}
	for _, p := range products {
		if _, dup := idx.byID[p.ID]; dup {
			continue
		}
		idx.byID[p.ID] = p
		idx.addKeys(p, false)
	}
	return idx
}

func (i *Index) addKeys(p Product, overwrite bool) {
	set := func(m map[string]uuid.UUID, k string) {
		if k == "" {
			return
		}
		if _, ok := m[k]; ok && !overwrite {
			return
		}
		m[k] = p.ID
	}
	set(i.bySKU, p.SKU)
	set(i.byDescription, DescriptionKey(p.Description, p.SellUnit))
	if p.ProductID != nil {
		if _, ok := i.byReference[*p.ProductID]; !ok || overwrite {
			i.byReference[*p.ProductID] = p.ID
		}
	}
}

func (i *Index) dropKeys(p Product) {
	if i.bySKU[p.SKU] == p.ID {
		delete(i.bySKU, p.SKU)
	}
	key := DescriptionKey(p.Description, p.SellUnit)
	if i.byDescription[key] == p.ID {
		delete(i.byDescription, key)
	}
	if p.ProductID != nil && i.byReference[*p.ProductID] == p.ID {
		delete(i.byReference, *p.ProductID)
	}
}

// Put inserts or replaces p, removing keys of its previous state.
func (i *Index) Put(p Product) {
	if old, ok := i.byID[p.ID]; ok {
		i.dropKeys(old)
	}
	i.byID[p.ID] = p
	i.addKeys(p, true)
}

// Get returns the product with id.
func (i *Index) Get(id uuid.UUID) (Product, bool) {
	p, ok := i.byID[id]
	return p, ok
}

func (i *Index) resolve(id uuid.UUID, ok bool) (Product, bool) {
	if !ok {
		return Product{}, false
	}
	return i.Get(id)
}

// BySKU returns the product with the exact SKU.
func (i *Index) BySKU(sku string) (Product, bool) {
	id, ok := i.bySKU[sku]
	return i.resolve(id, ok)
}

// ByDescription matches on normalised description and sell unit.
func (i *Index) ByDescription(description string, unit uom.Unit) (Product, bool) {
	id, ok := i.byDescription[DescriptionKey(description, unit)]
	return i.resolve(id, ok)
}

// ByReference returns the product linked to a canonical catalog entry.
func (i *Index) ByReference(ref uuid.UUID) (Product, bool) {
	id, ok := i.byReference[ref]
	return i.resolve(id, ok)
}

// Len returns the number of indexed products.
func (i *Index) Len() int { return len(i.byID) }

// NextSKU returns the first free generated SKU at or after the current
// product count.
func (i *Index) NextSKU(prefix string) string {
	for n := i.Len() + 1; ; n++ {
		sku := fmt.Sprintf("%s%05d", prefix, n)
		if _, taken := i.bySKU[sku]; !taken {
			return sku
		}
	}
}
