package customer

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is the canonical store for this demo. Records live for the
// process lifetime only; there is deliberately no persistence behind it.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[string]Customer
}

func NewMemoryRepo(seed ...Customer) *MemoryRepo {
	r := &MemoryRepo{records: make(map[string]Customer, len(seed))}
	for _, c := range seed {
		r.records[c.ID] = c
	}
	return r
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.records[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Customer, 0, len(r.records))
	for _, c := range r.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces the stored record with the merged result under the
// repo lock, so concurrent updates to the same id never interleave.
func (r *MemoryRepo) Update(ctx context.Context, id string, req UpdateRequest) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	updated := req.ApplyTo(existing)
	r.records[id] = updated
	return updated, nil
}
