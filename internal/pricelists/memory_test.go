package pricelists

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/alima/supply/internal/suppliers"
)

type memoryStore struct {
	mu     sync.Mutex
	lists  []PriceList
	prices map[uuid.UUID]Price
}

func newMemoryStore() *memoryStore {
	return &memoryStore{prices: map[uuid.UUID]Price{}}
}

func (m *memoryStore) versions(name string, unitID uuid.UUID) []PriceList {
	var out []PriceList
	for _, l := range m.lists {
		if l.Name == name && l.SupplierUnitID == unitID {
			out = append(out, l)
		}
	}
	return out
}

func (m *memoryStore) current(unitID uuid.UUID) []PriceList {
	keys := map[string]struct{}{}
	var out []PriceList
	for _, l := range m.lists {
		if l.SupplierUnitID != unitID {
			continue
		}
		if _, done := keys[l.Name]; done {
			continue
		}
		keys[l.Name] = struct{}{}
		latest, _ := Latest(m.versions(l.Name, unitID))
		out = append(out, latest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *memoryStore) FetchLatest(_ context.Context, name string, unitID uuid.UUID) (PriceList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := Latest(m.versions(name, unitID))
	if !ok {
		return PriceList{}, ErrNotFound
	}
	return l, nil
}

func (m *memoryStore) AppendVersion(_ context.Context, list PriceList) (PriceList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list.Version = 1
	if latest, ok := Latest(m.versions(list.Name, list.SupplierUnitID)); ok {
		list.Version = latest.Version + 1
	}
	list.CreatedAt = list.LastUpdated
	m.lists = append(m.lists, list)
	return list, nil
}

// insert stores a version as-is.
func (m *memoryStore) insert(list PriceList) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists = append(m.lists, list)
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (PriceList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lists {
		if l.ID == id {
			return l, nil
		}
	}
	return PriceList{}, ErrNotFound
}

func (m *memoryStore) FindDefault(_ context.Context, unitID uuid.UUID) (PriceList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *PriceList
	for _, l := range m.current(unitID) {
		if l.IsDefault && (found == nil || l.LastUpdated.After(found.LastUpdated)) {
			l := l
			found = &l
		}
	}
	if found == nil {
		return PriceList{}, ErrNotFound
	}
	return *found, nil
}

func (m *memoryStore) ListCurrent(_ context.Context, unitID uuid.UUID) ([]PriceList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current(unitID), nil
}

func (m *memoryStore) History(_ context.Context, name string, unitID uuid.UUID) ([]PriceList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.versions(name, unitID)
	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	return out, nil
}

func (m *memoryStore) CreatePrice(_ context.Context, p Price) (Price, error) {
	if !p.ValidUpto.After(p.ValidFrom) {
		return Price{}, ErrInvalidWindow
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[p.ID] = p
	return p, nil
}

func (m *memoryStore) GetPrices(_ context.Context, ids []uuid.UUID) ([]Price, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Price
	for _, id := range ids {
		if p, ok := m.prices[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lists)
}

type scopeRepo struct {
	units    []suppliers.Unit
	branches []suppliers.Branch
}

func (r scopeRepo) ListUnits(_ context.Context, businessID uuid.UUID) ([]suppliers.Unit, error) {
	var out []suppliers.Unit
	for _, u := range r.units {
		if u.BusinessID == businessID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r scopeRepo) UnitsByIDs(_ context.Context, ids []uuid.UUID) ([]suppliers.Unit, error) {
	var out []suppliers.Unit
	for _, u := range r.units {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (r scopeRepo) BranchesByIDs(_ context.Context, ids []uuid.UUID) ([]suppliers.Branch, error) {
	var out []suppliers.Branch
	for _, b := range r.branches {
		for _, id := range ids {
			if b.ID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	err    error
}

func (p *recordingPublisher) PriceListPublished(_ context.Context, evt PublishedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}
