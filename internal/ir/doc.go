// Package ir provides the data model shared by every other package: URL
// rewrite records, categories, desired entries, reconciliation plans and
// entity-kind conventions.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - ids and redirect codes are int64
//   - All JSON tags use snake_case
//   - Metadata written by this module is canonical JSON (see MarshalCanonical)
package ir
