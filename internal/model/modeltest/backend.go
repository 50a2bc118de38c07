// Package modeltest provides an in-memory model.Backend for tests.
package modeltest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yardline/yardline/internal/model"
)

// Backend is a goroutine-safe in-memory model.Backend. It follows the same
// validation and conflict rules as the DuckDB store.
type Backend struct {
	mu        sync.Mutex
	nextID    int64
	animals   map[int64]model.Animal
	suppliers map[int64]model.Supplier
	carcasses map[string]model.Carcass
	calls     map[string]int

	// Now stamps created and updated records.
	Now func() time.Time
	// Err, when set, is returned by every call.
	Err error
}

var _ model.Backend = (*Backend)(nil)

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		animals:   make(map[int64]model.Animal),
		suppliers: make(map[int64]model.Supplier),
		carcasses: make(map[string]model.Carcass),
		calls:     make(map[string]int),
		Now:       func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
}

// Calls returns how many times method was invoked.
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *Backend) enter(method string) error {
	b.calls[method]++
	return b.Err
}

func matches(term string, fields ...string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func (b *Backend) ListAnimals(_ context.Context, q model.ListQuery) ([]model.Animal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListAnimals"); err != nil {
		return nil, err
	}
	q = q.Normalized()
	var out []model.Animal
	for _, a := range b.animals {
		if !matches(q.Search, a.TagNumber, a.Species, a.Breed) {
			continue
		}
		if q.Status != "" && string(a.Status) != q.Status {
			continue
		}
		if q.SupplierID > 0 && a.SupplierID != q.SupplierID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Backend) GetAnimal(_ context.Context, id int64) (model.Animal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("GetAnimal"); err != nil {
		return model.Animal{}, err
	}
	a, ok := b.animals[id]
	if !ok {
		return model.Animal{}, fmt.Errorf("animal %d: %w", id, model.ErrNotFound)
	}
	return a, nil
}

func (b *Backend) tagTaken(tag string, except int64) bool {
	for _, a := range b.animals {
		if a.ID != except && strings.EqualFold(a.TagNumber, tag) {
			return true
		}
	}
	return false
}

func (b *Backend) CreateAnimal(_ context.Context, a model.Animal) (model.Animal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("CreateAnimal"); err != nil {
		return model.Animal{}, err
	}
	if a.Status == "" {
		a.Status = model.StatusReceived
	}
	if err := a.Validate(); err != nil {
		return model.Animal{}, err
	}
	if _, ok := b.suppliers[a.SupplierID]; !ok {
		return model.Animal{}, fmt.Errorf("%w: unknown supplier %d", model.ErrInvalid, a.SupplierID)
	}
	if b.tagTaken(a.TagNumber, 0) {
		return model.Animal{}, fmt.Errorf("tag %s: %w", a.TagNumber, model.ErrConflict)
	}
	b.nextID++
	a.ID = b.nextID
	if a.ArrivedAt.IsZero() {
		a.ArrivedAt = b.Now()
	}
	a.UpdatedAt = b.Now()
	b.animals[a.ID] = a
	return a, nil
}

func (b *Backend) UpdateAnimal(_ context.Context, a model.Animal) (model.Animal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("UpdateAnimal"); err != nil {
		return model.Animal{}, err
	}
	cur, ok := b.animals[a.ID]
	if !ok {
		return model.Animal{}, fmt.Errorf("animal %d: %w", a.ID, model.ErrNotFound)
	}
	a.Status = ""
	if err := a.Validate(); err != nil {
		return model.Animal{}, err
	}
	if b.tagTaken(a.TagNumber, a.ID) {
		return model.Animal{}, fmt.Errorf("tag %s: %w", a.TagNumber, model.ErrConflict)
	}
	a.Status = cur.Status
	a.ArrivedAt = cur.ArrivedAt
	a.UpdatedAt = b.Now()
	b.animals[a.ID] = a
	return a, nil
}

func (b *Backend) DeleteAnimal(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("DeleteAnimal"); err != nil {
		return err
	}
	if _, ok := b.animals[id]; !ok {
		return fmt.Errorf("animal %d: %w", id, model.ErrNotFound)
	}
	for _, c := range b.carcasses {
		if c.AnimalID == id {
			return fmt.Errorf("animal %d has a carcass: %w", id, model.ErrConflict)
		}
	}
	delete(b.animals, id)
	return nil
}

func (b *Backend) SetAnimalStatus(_ context.Context, id int64, status model.AnimalStatus) (model.Animal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("SetAnimalStatus"); err != nil {
		return model.Animal{}, err
	}
	if !status.Valid() || status == model.StatusSlaughtered {
		return model.Animal{}, fmt.Errorf("%w: status %q", model.ErrInvalid, status)
	}
	a, ok := b.animals[id]
	if !ok {
		return model.Animal{}, fmt.Errorf("animal %d: %w", id, model.ErrNotFound)
	}
	if !model.CanTransition(a.Status, status) {
		return model.Animal{}, fmt.Errorf("animal %d is %s: %w", id, a.Status, model.ErrConflict)
	}
	a.Status = status
	a.UpdatedAt = b.Now()
	b.animals[id] = a
	return a, nil
}

func (b *Backend) SlaughterAnimal(_ context.Context, in model.SlaughterInput) (model.Carcass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("SlaughterAnimal"); err != nil {
		return model.Carcass{}, err
	}
	if err := in.Validate(); err != nil {
		return model.Carcass{}, err
	}
	a, ok := b.animals[in.AnimalID]
	if !ok {
		return model.Carcass{}, fmt.Errorf("animal %d: %w", in.AnimalID, model.ErrNotFound)
	}
	if a.Status.Final() {
		return model.Carcass{}, fmt.Errorf("animal %d is %s: %w", a.ID, a.Status, model.ErrConflict)
	}
	c := model.Carcass{
		PublicID:       uuid.NewString(),
		AnimalID:       a.ID,
		TagNumber:      a.TagNumber,
		Species:        a.Species,
		HotWeightKg:    in.HotWeightKg,
		Grade:          in.Grade,
		InspectionNote: in.InspectionNote,
		SlaughteredAt:  b.Now(),
	}
	a.Status = model.StatusSlaughtered
	a.UpdatedAt = b.Now()
	b.animals[a.ID] = a
	b.carcasses[c.PublicID] = c
	return c, nil
}

func (b *Backend) ListSuppliers(_ context.Context, q model.ListQuery) ([]model.Supplier, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListSuppliers"); err != nil {
		return nil, err
	}
	q = q.Normalized()
	var out []model.Supplier
	for _, s := range b.suppliers {
		if !matches(q.Search, s.Name, s.Region) {
			continue
		}
		if (q.Status == "active" && !s.Active) || (q.Status == "inactive" && s.Active) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Backend) GetSupplier(_ context.Context, id int64) (model.Supplier, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("GetSupplier"); err != nil {
		return model.Supplier{}, err
	}
	s, ok := b.suppliers[id]
	if !ok {
		return model.Supplier{}, fmt.Errorf("supplier %d: %w", id, model.ErrNotFound)
	}
	return s, nil
}

func (b *Backend) CreateSupplier(_ context.Context, s model.Supplier) (model.Supplier, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("CreateSupplier"); err != nil {
		return model.Supplier{}, err
	}
	if err := s.Validate(); err != nil {
		return model.Supplier{}, err
	}
	b.nextID++
	s.ID = b.nextID
	if s.CreatedAt.IsZero() {
		s.CreatedAt = b.Now()
	}
	b.suppliers[s.ID] = s
	return s, nil
}

func (b *Backend) UpdateSupplier(_ context.Context, s model.Supplier) (model.Supplier, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("UpdateSupplier"); err != nil {
		return model.Supplier{}, err
	}
	cur, ok := b.suppliers[s.ID]
	if !ok {
		return model.Supplier{}, fmt.Errorf("supplier %d: %w", s.ID, model.ErrNotFound)
	}
	if err := s.Validate(); err != nil {
		return model.Supplier{}, err
	}
	s.CreatedAt = cur.CreatedAt
	b.suppliers[s.ID] = s
	return s, nil
}

func (b *Backend) DeleteSupplier(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("DeleteSupplier"); err != nil {
		return err
	}
	if _, ok := b.suppliers[id]; !ok {
		return fmt.Errorf("supplier %d: %w", id, model.ErrNotFound)
	}
	for _, a := range b.animals {
		if a.SupplierID == id {
			return fmt.Errorf("supplier %d has animals: %w", id, model.ErrConflict)
		}
	}
	delete(b.suppliers, id)
	return nil
}

func (b *Backend) SetSupplierActive(_ context.Context, id int64, active bool) (model.Supplier, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("SetSupplierActive"); err != nil {
		return model.Supplier{}, err
	}
	s, ok := b.suppliers[id]
	if !ok {
		return model.Supplier{}, fmt.Errorf("supplier %d: %w", id, model.ErrNotFound)
	}
	s.Active = active
	b.suppliers[id] = s
	return s, nil
}

func (b *Backend) ListCarcasses(_ context.Context, q model.ListQuery) ([]model.Carcass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListCarcasses"); err != nil {
		return nil, err
	}
	q = q.Normalized()
	var out []model.Carcass
	for _, c := range b.carcasses {
		if !matches(q.Search, c.TagNumber, c.Grade) {
			continue
		}
		if (q.Status == "condemned" && !c.Condemned) || (q.Status == "passed" && c.Condemned) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SlaughteredAt.Equal(out[j].SlaughteredAt) {
			return out[i].SlaughteredAt.After(out[j].SlaughteredAt)
		}
		return out[i].PublicID < out[j].PublicID
	})
	return out, nil
}

func (b *Backend) GetCarcass(_ context.Context, publicID string) (model.Carcass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("GetCarcass"); err != nil {
		return model.Carcass{}, err
	}
	c, ok := b.carcasses[publicID]
	if !ok {
		return model.Carcass{}, fmt.Errorf("carcass %s: %w", publicID, model.ErrNotFound)
	}
	return c, nil
}

func (b *Backend) SetCarcassCondemned(_ context.Context, publicID string, condemned bool) (model.Carcass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("SetCarcassCondemned"); err != nil {
		return model.Carcass{}, err
	}
	c, ok := b.carcasses[publicID]
	if !ok {
		return model.Carcass{}, fmt.Errorf("carcass %s: %w", publicID, model.ErrNotFound)
	}
	c.Condemned = condemned
	b.carcasses[publicID] = c
	return c, nil
}

func (b *Backend) DeleteCarcass(_ context.Context, publicID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("DeleteCarcass"); err != nil {
		return err
	}
	if _, ok := b.carcasses[publicID]; !ok {
		return fmt.Errorf("carcass %s: %w", publicID, model.ErrNotFound)
	}
	delete(b.carcasses, publicID)
	return nil
}

func (b *Backend) DailyThroughput(_ context.Context, days int) ([]model.DailyThroughput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("DailyThroughput"); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = model.DefaultThroughputDays
	}
	now := b.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	type key struct {
		day     time.Time
		species string
	}
	counts := make(map[key]int64)
	for _, c := range b.carcasses {
		if c.SlaughteredAt.Before(cutoff) {
			continue
		}
		t := c.SlaughteredAt.UTC()
		counts[key{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), c.Species}]++
	}
	out := make([]model.DailyThroughput, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.DailyThroughput{Day: k.day, Species: k.species, Head: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].Species < out[j].Species
	})
	return out, nil
}

func (b *Backend) RowCounts(_ context.Context) (map[string]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("RowCounts"); err != nil {
		return nil, err
	}
	return map[string]int64{
		"suppliers": int64(len(b.suppliers)),
		"animals":   int64(len(b.animals)),
		"carcasses": int64(len(b.carcasses)),
	}, nil
}
