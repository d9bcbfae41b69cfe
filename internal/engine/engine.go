package engine

import (
	"context"
	"log/slog"

	"github.com/amenk/import-product/internal/ir"
)

// RewriteRepository reads and writes persisted rewrites.
type RewriteRepository interface {
	// FetchRewrites returns every rewrite of the entity across all stores,
	// in a stable order.
	FetchRewrites(ctx context.Context, entityType string, entityID int64) ([]ir.RewriteRecord, error)

	// PersistRewrite inserts a new rewrite and returns its id.
	PersistRewrite(ctx context.Context, rec ir.RewriteRecord) (int64, error)

	// UpdateRewrite overwrites the rewrite identified by rec.ID.
	UpdateRewrite(ctx context.Context, rec ir.RewriteRecord) error
}

// CategoryCatalog answers category questions for the path resolver.
type CategoryCatalog interface {
	Category(ctx context.Context, id int64) (ir.Category, error)
	RootCategory(ctx context.Context, storeID int64) (ir.Category, error)
	AssignedCategoryIDs(ctx context.Context, entityType string, entityID int64) ([]int64, error)
}

// Journal records batch runs and the writes they applied. Optional.
type Journal interface {
	BeginRun(ctx context.Context, run ir.Run) error
	AppendJournal(ctx context.Context, entry ir.JournalEntry) error
	FinishRun(ctx context.Context, run ir.Run) error
}

// Row is one reconciliation request: an entity, its slug, and the store
// view to reconcile it in.
type Row struct {
	EntityType string `json:"entity_type" yaml:"entity_type"`
	EntityID   int64  `json:"entity_id" yaml:"entity_id"`
	URLKey     string `json:"url_key" yaml:"url_key"`
	StoreID    int64  `json:"store_id" yaml:"store_id"`
}

// Key returns the serialization key of the row.
func (r Row) Key() EntityKey {
	return EntityKey{EntityType: r.EntityType, EntityID: r.EntityID, StoreID: r.StoreID}
}

// DefaultWorkers is the batch worker pool size.
const DefaultWorkers = 4

// Engine reconciles rows against persisted rewrites.
//
// Thread-safety model:
//   - Plan, Reconcile and RunBatch are safe from any goroutine
//   - calls for the same EntityKey are serialized by the KeyedLocker
//   - calls for different keys run in parallel
type Engine struct {
	repo    RewriteRepository
	catalog CategoryCatalog
	kinds   *Kinds
	journal Journal
	locks   *KeyedLocker
	clock   *Clock
	runIDs  RunIDGenerator
	logger  *slog.Logger

	reconciler  *Reconciler
	workers     int
	maxFailures int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithJournal records batch runs and applied writes.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithWorkers sets the batch worker pool size. Values below 1 mean 1.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithMaxFailures aborts a batch once more than n rows failed.
// Default: 0 (never abort, report failures).
func WithMaxFailures(n int) EngineOption {
	return func(e *Engine) {
		e.maxFailures = n
	}
}

// WithRunIDGenerator sets the run id source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithClock sets the journal clock, e.g. one resumed from the store.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine over the given collaborators. A nil kinds registry
// means DefaultKinds().
func New(repo RewriteRepository, catalog CategoryCatalog, kinds *Kinds, opts ...EngineOption) *Engine {
	if kinds == nil {
		kinds = DefaultKinds()
	}
	e := &Engine{
		repo:    repo,
		catalog: catalog,
		kinds:   kinds,
		locks:   NewKeyedLocker(),
		clock:   NewClock(),
		runIDs:  UUIDv7Generator{},
		logger:  slog.Default(),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reconciler = NewReconciler(e.logger)
	return e
}

// Kinds returns the engine's convention registry.
func (e *Engine) Kinds() *Kinds {
	return e.kinds
}

// Plan computes the operations for a row without writing anything.
func (e *Engine) Plan(ctx context.Context, row Row) (*ir.Plan, error) {
	unlock := e.locks.Lock(row.Key())
	defer unlock()
	return e.plan(ctx, row)
}

// Reconcile plans a row and applies the plan: creates first, then updates.
// Repository errors abort the row and are returned; writes already made
// stay, and rerunning the row converges because reconciliation is
// idempotent.
func (e *Engine) Reconcile(ctx context.Context, row Row) (*ir.Plan, error) {
	return e.reconcileRow(ctx, "", row)
}

func (e *Engine) reconcileRow(ctx context.Context, runID string, row Row) (*ir.Plan, error) {
	unlock := e.locks.Lock(row.Key())
	defer unlock()

	plan, err := e.plan(ctx, row)
	if err != nil {
		return nil, err
	}
	if err := e.apply(ctx, runID, plan); err != nil {
		return plan, err
	}
	return plan, nil
}

func (e *Engine) plan(ctx context.Context, row Row) (*ir.Plan, error) {
	key := row.Key()
	conv, err := e.kinds.Lookup(row.EntityType)
	if err != nil {
		return nil, err
	}
	if NormalizeSlug(row.URLKey) == "" {
		return nil, NewInvalidInputError(key, "url key is empty")
	}

	existing, err := e.repo.FetchRewrites(ctx, row.EntityType, row.EntityID)
	if err != nil {
		return nil, NewStoreError(key, "fetch rewrites", err)
	}

	root, err := e.catalog.RootCategory(ctx, row.StoreID)
	if err != nil {
		e.logger.Warn("root category lookup failed, no category excluded as root",
			"entity", key.String(),
			"error", err)
		root = ir.Category{}
	}

	ids, err := e.catalog.AssignedCategoryIDs(ctx, row.EntityType, row.EntityID)
	if err != nil {
		return nil, NewStoreError(key, "assigned categories", err)
	}
	categories := e.resolveCategories(ctx, key, ids, root)

	desired, err := ComputeDesired(NewPathBuilder(conv), row.EntityID, row.URLKey, categories, canonicalOwners(existing, row.StoreID))
	if err != nil {
		return nil, err
	}
	for _, c := range desired.Collisions {
		e.logger.Warn("categories share a request path",
			"entity", key.String(),
			"request_path", c.RequestPath,
			"winner", c.Winner,
			"losers", c.Losers)
	}

	plan := e.reconciler.Reconcile(ReconcileInput{
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		StoreID:    row.StoreID,
		Desired:    desired.Entries,
		Existing:   existing,
	})
	plan.Collisions = desired.Collisions

	digest, err := ir.PlanDigest(plan)
	if err != nil {
		e.logger.Warn("plan digest failed", "entity", key.String(), "error", err)
	}
	e.logger.Debug("planned",
		"entity", key.String(),
		"digest", digest,
		"desired", len(plan.Desired),
		"creates", len(plan.ToCreate),
		"updates", len(plan.ToUpdate),
		"conflicts", len(plan.Conflicts))
	return plan, nil
}

func (e *Engine) apply(ctx context.Context, runID string, plan *ir.Plan) error {
	key := EntityKey{EntityType: plan.EntityType, EntityID: plan.EntityID, StoreID: plan.StoreID}

	for i := range plan.ToCreate {
		rec := &plan.ToCreate[i]
		id, err := e.repo.PersistRewrite(ctx, *rec)
		if err != nil {
			return NewStoreError(key, "persist rewrite", err)
		}
		rec.ID = &id
		if err := e.record(ctx, runID, ir.OpCreate, *rec); err != nil {
			return err
		}
	}

	for _, rec := range plan.ToUpdate {
		if err := e.repo.UpdateRewrite(ctx, rec); err != nil {
			return NewStoreError(key, "update rewrite", err)
		}
		if err := e.record(ctx, runID, ir.OpUpdate, rec); err != nil {
			return err
		}
	}

	if !plan.Empty() {
		e.logger.Info("reconciled",
			"entity", key.String(),
			"creates", len(plan.ToCreate),
			"updates", len(plan.ToUpdate))
	}
	return nil
}

func (e *Engine) record(ctx context.Context, runID string, op ir.Op, rec ir.RewriteRecord) error {
	if e.journal == nil || runID == "" {
		return nil
	}
	var id int64
	if rec.ID != nil {
		id = *rec.ID
	}
	entry := ir.JournalEntry{
		RunID:        runID,
		Seq:          e.clock.Next(),
		Op:           op,
		RewriteID:    id,
		EntityType:   rec.EntityType,
		EntityID:     rec.EntityID,
		StoreID:      rec.StoreID,
		RequestPath:  rec.RequestPath,
		TargetPath:   rec.TargetPath,
		RedirectType: rec.RedirectType,
	}
	if err := e.journal.AppendJournal(ctx, entry); err != nil {
		return NewStoreError(EntityKey{EntityType: rec.EntityType, EntityID: rec.EntityID, StoreID: rec.StoreID}, "append journal", err)
	}
	if hash, err := ir.RecordHash(rec); err == nil {
		e.logger.Debug("journaled",
			"run_id", runID,
			"seq", entry.Seq,
			"op", string(op),
			"rewrite_id", id,
			"record", hash)
	}
	return nil
}

// canonicalOwners maps request paths of canonical category rewrites in the
// store to their category, for collision tie-breaking.
func canonicalOwners(existing []ir.RewriteRecord, storeID int64) OwnerFunc {
	owners := make(map[string]int64)
	for _, rec := range existing {
		if rec.StoreID != storeID || !rec.Managed() || rec.RedirectType != ir.RedirectNone {
			continue
		}
		m, err := ir.ParseMetadata(rec.Metadata)
		if err != nil || m.CategoryID == nil {
			continue
		}
		owners[rec.RequestPath] = *m.CategoryID
	}
	return func(requestPath string) (int64, bool) {
		id, ok := owners[requestPath]
		return id, ok
	}
}
