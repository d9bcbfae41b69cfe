// Package store provides SQLite-backed storage for URL rewrites.
//
// The store holds:
//   - url_rewrite: the rewrites themselves, unique per (request_path, store_id)
//   - catalog_category, store_root_category, catalog_category_product: the
//     catalog data the category path resolver reads
//   - rewrite_run, rewrite_journal: batch runs and the writes they applied
//
// *Store implements engine.RewriteRepository, engine.CategoryCatalog,
// engine.PathLookup and engine.Journal.
//
// # Ordering
//
// Queries order by url_rewrite_id (insertion order) or journal seq, never by
// wall-clock time, so plans and journals read back identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
