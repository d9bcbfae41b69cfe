package store

import (
	"database/sql"
	"fmt"

	"github.com/amenk/import-product/internal/ir"
)

// rewriteColumns is the column list every rewrite query selects, in the
// order scanRewrite expects.
const rewriteColumns = `url_rewrite_id, entity_type, entity_id, request_path, target_path,
	redirect_type, store_id, description, is_autogenerated, metadata`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRewrite reads one url_rewrite row. NULL description and metadata stay
// nil so the engine can tell "absent" from "empty".
func scanRewrite(sc scanner) (ir.RewriteRecord, error) {
	var (
		rec         ir.RewriteRecord
		id          int64
		redirect    int64
		description sql.NullString
		metadata    sql.NullString
	)
	err := sc.Scan(
		&id,
		&rec.EntityType,
		&rec.EntityID,
		&rec.RequestPath,
		&rec.TargetPath,
		&redirect,
		&rec.StoreID,
		&description,
		&rec.IsAutogenerated,
		&metadata,
	)
	if err != nil {
		return ir.RewriteRecord{}, fmt.Errorf("scan rewrite: %w", err)
	}
	rec.ID = &id
	rec.RedirectType = ir.RedirectType(redirect)
	rec.Description = fromNullString(description)
	rec.Metadata = fromNullString(metadata)
	return rec, nil
}

// scanRewrites drains rows into a slice. Returns an empty slice, not nil,
// when there are no rows.
func scanRewrites(rows *sql.Rows) ([]ir.RewriteRecord, error) {
	defer rows.Close()

	records := []ir.RewriteRecord{}
	for rows.Next() {
		rec, err := scanRewrite(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rewrites: %w", err)
	}
	return records, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// scanJournalEntry reads one rewrite_journal row.
func scanJournalEntry(sc scanner) (ir.JournalEntry, error) {
	var (
		e        ir.JournalEntry
		op       string
		redirect int64
	)
	err := sc.Scan(
		&e.Seq,
		&e.RunID,
		&op,
		&e.RewriteID,
		&e.EntityType,
		&e.EntityID,
		&e.StoreID,
		&e.RequestPath,
		&e.TargetPath,
		&redirect,
	)
	if err != nil {
		return ir.JournalEntry{}, fmt.Errorf("scan journal entry: %w", err)
	}
	e.Op = ir.Op(op)
	e.RedirectType = ir.RedirectType(redirect)
	return e, nil
}
