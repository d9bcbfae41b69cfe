package engine

import (
	"log/slog"

	"github.com/amenk/import-product/internal/ir"
)

// rootKey buckets managed rewrites without a category id. Category ids are
// positive, so zero never collides with a real category.
const rootKey int64 = 0

// ReconcileInput is everything the reconciler needs for one entity in one
// store. Existing may contain rewrites of other stores; they are ignored.
type ReconcileInput struct {
	EntityType string
	EntityID   int64
	StoreID    int64
	Desired    []ir.DesiredEntry
	Existing   []ir.RewriteRecord
}

// Reconciler diffs desired entries against persisted rewrites.
// It performs no I/O; the logger only reports degraded input.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler returns a reconciler that logs to logger (nil discards).
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{logger: logger}
}

// Reconcile is NewReconciler(nil).Reconcile(in).
func Reconcile(in ReconcileInput) *ir.Plan {
	return NewReconciler(nil).Reconcile(in)
}

// Reconcile returns the operations that make the managed rewrites of the
// store match the desired entries.
//
// Each desired entry claims every managed rewrite already holding its
// request path. A canonical holder is left alone; otherwise the first holder
// is turned back into the canonical rewrite and further holders are left
// untouched. Unheld entries are created unless a
// manual rewrite holds the path. Every unclaimed managed rewrite becomes a
// permanent redirect to the desired entry of its category, or to the root
// entry when its category is no longer desired. Rewrites already in their
// target state produce no operation.
func (r *Reconciler) Reconcile(in ReconcileInput) *ir.Plan {
	plan := &ir.Plan{
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		StoreID:    in.StoreID,
		Desired:    append([]ir.DesiredEntry(nil), in.Desired...),
		ToUpdate:   []ir.RewriteRecord{},
		ToCreate:   []ir.RewriteRecord{},
	}

	var managed []ir.RewriteRecord
	var keys []int64
	managedByPath := make(map[string][]int)
	manualByPath := make(map[string]ir.RewriteRecord)
	for _, rec := range in.Existing {
		if rec.StoreID != in.StoreID {
			continue
		}
		if !rec.Managed() {
			if _, dup := manualByPath[rec.RequestPath]; !dup {
				manualByPath[rec.RequestPath] = rec
			}
			continue
		}
		managedByPath[rec.RequestPath] = append(managedByPath[rec.RequestPath], len(managed))
		managed = append(managed, rec)
		keys = append(keys, r.bucketKey(rec))
	}

	desiredByKey := make(map[int64]ir.DesiredEntry, len(in.Desired))
	var rootPath string
	for _, d := range in.Desired {
		k := entryKey(d)
		if _, dup := desiredByKey[k]; !dup {
			desiredByKey[k] = d
		}
		if k == rootKey && rootPath == "" {
			rootPath = d.RequestPath
		}
	}

	updates := make([]*ir.RewriteRecord, len(managed))
	claimed := make([]bool, len(managed))

	for _, d := range in.Desired {
		k := entryKey(d)
		if holders := managedByPath[d.RequestPath]; len(holders) > 0 {
			canonical := -1
			for _, i := range holders {
				claimed[i] = true
				rec := managed[i]
				if canonical < 0 && rec.RedirectType == ir.RedirectNone && rec.TargetPath == d.TargetPath && keys[i] == k {
					canonical = i
				}
			}
			if canonical >= 0 {
				continue
			}
			i := holders[0]
			upd := managed[i]
			upd.TargetPath = d.TargetPath
			upd.RedirectType = ir.RedirectNone
			if keys[i] != k {
				upd.Metadata = entryMetadata(d)
			}
			updates[i] = &upd
			continue
		}
		if m, ok := manualByPath[d.RequestPath]; ok {
			var heldBy int64
			if m.ID != nil {
				heldBy = *m.ID
			}
			plan.Conflicts = append(plan.Conflicts, ir.Conflict{
				RequestPath: d.RequestPath,
				CategoryID:  d.CategoryID,
				HeldBy:      heldBy,
			})
			r.logger.Warn("desired request path held by manual rewrite",
				"entity_id", in.EntityID,
				"store_id", in.StoreID,
				"request_path", d.RequestPath,
				"held_by", heldBy)
			continue
		}
		plan.ToCreate = append(plan.ToCreate, ir.RewriteRecord{
			EntityType:      in.EntityType,
			EntityID:        in.EntityID,
			RequestPath:     d.RequestPath,
			TargetPath:      d.TargetPath,
			RedirectType:    ir.RedirectNone,
			StoreID:         in.StoreID,
			IsAutogenerated: true,
			Metadata:        entryMetadata(d),
		})
	}

	for i, rec := range managed {
		if claimed[i] || rootPath == "" {
			continue
		}
		target := rootPath
		if d, ok := desiredByKey[keys[i]]; ok {
			target = d.RequestPath
		}
		if rec.RequestPath == target {
			continue
		}
		if rec.RedirectType == ir.RedirectPermanent && rec.TargetPath == target {
			continue
		}
		upd := rec
		upd.TargetPath = target
		upd.RedirectType = ir.RedirectPermanent
		updates[i] = &upd
	}

	for _, u := range updates {
		if u != nil {
			plan.ToUpdate = append(plan.ToUpdate, *u)
		}
	}
	return plan
}

func (r *Reconciler) bucketKey(rec ir.RewriteRecord) int64 {
	m, err := ir.ParseMetadata(rec.Metadata)
	if err != nil {
		var id int64
		if rec.ID != nil {
			id = *rec.ID
		}
		r.logger.Warn("unparsable rewrite metadata, treating as root",
			"rewrite_id", id,
			"request_path", rec.RequestPath,
			"error", err)
		return rootKey
	}
	if m.CategoryID == nil {
		return rootKey
	}
	return *m.CategoryID
}

func entryKey(d ir.DesiredEntry) int64 {
	if d.CategoryID == nil {
		return rootKey
	}
	return *d.CategoryID
}

func entryMetadata(d ir.DesiredEntry) *string {
	if d.CategoryID == nil {
		return nil
	}
	return ir.MustEncodeMetadata(ir.CategoryMetadata(*d.CategoryID))
}
