// Package testutil provides in-memory collaborators and fixtures for tests.
package testutil

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/amenk/import-product/internal/ir"
)

// MemoryRepository is an in-memory rewrite repository. It enforces the same
// (request_path, store_id) uniqueness as the SQLite schema.
//
// Set the Fail* fields to inject errors.
type MemoryRepository struct {
	mu      sync.Mutex
	records []ir.RewriteRecord
	nextID  int64

	FailFetch   error
	FailPersist error
	FailUpdate  error

	Persisted int
	Updated   int
}

// NewMemoryRepository returns a repository seeded with records. Records
// without an id get one assigned; ids continue after the highest seen.
func NewMemoryRepository(records ...ir.RewriteRecord) *MemoryRepository {
	r := &MemoryRepository{nextID: 1}
	for _, rec := range records {
		if rec.ID != nil && *rec.ID >= r.nextID {
			r.nextID = *rec.ID + 1
		}
	}
	for _, rec := range records {
		if rec.ID == nil {
			id := r.nextID
			r.nextID++
			rec.ID = &id
		}
		r.records = append(r.records, cloneRecord(rec))
	}
	return r
}

// FetchRewrites returns the entity's rewrites ordered by id.
func (r *MemoryRepository) FetchRewrites(_ context.Context, entityType string, entityID int64) ([]ir.RewriteRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailFetch != nil {
		return nil, r.FailFetch
	}
	out := []ir.RewriteRecord{}
	for _, rec := range r.records {
		if rec.EntityType == entityType && rec.EntityID == entityID {
			out = append(out, cloneRecord(rec))
		}
	}
	slices.SortFunc(out, func(a, b ir.RewriteRecord) int {
		return cmp.Compare(*a.ID, *b.ID)
	})
	return out, nil
}

// PersistRewrite inserts a record and returns its new id.
func (r *MemoryRepository) PersistRewrite(_ context.Context, rec ir.RewriteRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailPersist != nil {
		return 0, r.FailPersist
	}
	for _, existing := range r.records {
		if existing.StoreID == rec.StoreID && existing.RequestPath == rec.RequestPath {
			return 0, fmt.Errorf("unique constraint: request path %q already exists in store %d", rec.RequestPath, rec.StoreID)
		}
	}
	id := r.nextID
	r.nextID++
	rec.ID = &id
	r.records = append(r.records, cloneRecord(rec))
	r.Persisted++
	return id, nil
}

// UpdateRewrite replaces the record with the same id.
func (r *MemoryRepository) UpdateRewrite(_ context.Context, rec ir.RewriteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailUpdate != nil {
		return r.FailUpdate
	}
	if rec.ID == nil {
		return fmt.Errorf("update rewrite: missing id")
	}
	for i := range r.records {
		if *r.records[i].ID == *rec.ID {
			r.records[i] = cloneRecord(rec)
			r.Updated++
			return nil
		}
	}
	return fmt.Errorf("update rewrite: id %d not found", *rec.ID)
}

// RewriteByRequestPath implements engine.PathLookup.
func (r *MemoryRepository) RewriteByRequestPath(_ context.Context, storeID int64, requestPath string) (*ir.RewriteRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.StoreID == storeID && rec.RequestPath == requestPath {
			c := cloneRecord(rec)
			return &c, nil
		}
	}
	return nil, nil
}

// All returns every record ordered by id.
func (r *MemoryRepository) All() []ir.RewriteRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ir.RewriteRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, cloneRecord(rec))
	}
	slices.SortFunc(out, func(a, b ir.RewriteRecord) int {
		return cmp.Compare(*a.ID, *b.ID)
	})
	return out
}

// ByRequestPath returns the record holding requestPath in storeID, or nil.
func (r *MemoryRepository) ByRequestPath(storeID int64, requestPath string) *ir.RewriteRecord {
	rec, _ := r.RewriteByRequestPath(context.Background(), storeID, requestPath)
	return rec
}

func cloneRecord(rec ir.RewriteRecord) ir.RewriteRecord {
	if rec.ID != nil {
		id := *rec.ID
		rec.ID = &id
	}
	if rec.Description != nil {
		d := *rec.Description
		rec.Description = &d
	}
	if rec.Metadata != nil {
		m := *rec.Metadata
		rec.Metadata = &m
	}
	return rec
}

// MemoryCatalog is an in-memory category catalog.
type MemoryCatalog struct {
	mu          sync.Mutex
	categories  map[int64]ir.Category
	roots       map[int64]int64
	assignments map[string][]int64

	// FailCategory makes Category return an error for the listed ids.
	FailCategory map[int64]error
	FailRoot     error
	FailAssigned error
}

// NewMemoryCatalog returns an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		categories:   make(map[int64]ir.Category),
		roots:        make(map[int64]int64),
		assignments:  make(map[string][]int64),
		FailCategory: make(map[int64]error),
	}
}

// AddCategory registers a category.
func (c *MemoryCatalog) AddCategory(cat ir.Category) *MemoryCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories[cat.ID] = cat
	return c
}

// SetRoot sets the root category of a store.
func (c *MemoryCatalog) SetRoot(storeID, categoryID int64) *MemoryCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roots[storeID] = categoryID
	return c
}

// Assign replaces the categories assigned to an entity.
func (c *MemoryCatalog) Assign(entityType string, entityID int64, categoryIDs ...int64) *MemoryCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments[assignmentKey(entityType, entityID)] = slices.Clone(categoryIDs)
	return c
}

// Category implements engine.CategoryCatalog.
func (c *MemoryCatalog) Category(_ context.Context, id int64) (ir.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.FailCategory[id]; err != nil {
		return ir.Category{}, err
	}
	cat, ok := c.categories[id]
	if !ok {
		return ir.Category{}, fmt.Errorf("category %d not found", id)
	}
	return cat, nil
}

// RootCategory implements engine.CategoryCatalog.
func (c *MemoryCatalog) RootCategory(ctx context.Context, storeID int64) (ir.Category, error) {
	c.mu.Lock()
	if c.FailRoot != nil {
		c.mu.Unlock()
		return ir.Category{}, c.FailRoot
	}
	id, ok := c.roots[storeID]
	c.mu.Unlock()
	if !ok {
		return ir.Category{}, fmt.Errorf("store %d has no root category", storeID)
	}
	return c.Category(ctx, id)
}

// AssignedCategoryIDs implements engine.CategoryCatalog.
func (c *MemoryCatalog) AssignedCategoryIDs(_ context.Context, entityType string, entityID int64) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailAssigned != nil {
		return nil, c.FailAssigned
	}
	return slices.Clone(c.assignments[assignmentKey(entityType, entityID)]), nil
}

func assignmentKey(entityType string, entityID int64) string {
	return fmt.Sprintf("%s:%d", entityType, entityID)
}

// MemoryJournal records runs and journal entries in memory.
type MemoryJournal struct {
	mu      sync.Mutex
	Runs    map[string]ir.Run
	Entries []ir.JournalEntry
}

// NewMemoryJournal returns an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{Runs: make(map[string]ir.Run)}
}

// BeginRun implements engine.Journal.
func (j *MemoryJournal) BeginRun(_ context.Context, run ir.Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, dup := j.Runs[run.ID]; dup {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	j.Runs[run.ID] = run
	return nil
}

// AppendJournal implements engine.Journal.
func (j *MemoryJournal) AppendJournal(_ context.Context, e ir.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Entries = append(j.Entries, e)
	return nil
}

// FinishRun implements engine.Journal.
func (j *MemoryJournal) FinishRun(_ context.Context, run ir.Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Runs[run.ID] = run
	return nil
}
