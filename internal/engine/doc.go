// Package engine implements URL-rewrite reconciliation.
//
// Given an entity, its slug, its assigned categories and the rewrites
// already persisted for it, the engine computes the desired set of
// request paths and the minimal create/update operations that bring the
// persisted set in line, turning superseded autogenerated rewrites into
// permanent redirects instead of deleting them.
//
// ARCHITECTURE:
//
// Pure core:
//   - PathBuilder builds request and target paths from an ir.Convention.
//   - ResolveCategoryPath decides whether a category contributes an entry.
//   - ComputeDesired builds the desired set for one entity and store.
//   - Reconciler.Reconcile diffs desired against existing and returns an
//     ir.Plan. It performs no I/O.
//
// Orchestration:
//   - Engine fetches inputs through the RewriteRepository and
//     CategoryCatalog collaborators, plans, and applies the plan.
//   - RunBatch fans rows out to a bounded worker pool. Rows for the same
//     (entity type, entity id, store) are serialized by a KeyedLocker.
//
// Manual rewrites (is_autogenerated = false) are never matched, updated or
// removed. The engine never deletes a rewrite.
package engine
