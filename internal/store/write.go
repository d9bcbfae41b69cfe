package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amenk/import-product/internal/ir"
)

// PersistRewrite inserts a rewrite and returns its new id. A record whose
// (request_path, store_id) is already taken fails with the UNIQUE
// constraint; the engine never plans such a create.
//
// rec.ID is ignored: ids are assigned by the database.
func (s *Store) PersistRewrite(ctx context.Context, rec ir.RewriteRecord) (int64, error) {
	id, err := insertRewrite(ctx, s.db, rec, false)
	if err != nil {
		return 0, fmt.Errorf("persist rewrite: %w", err)
	}
	return id, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertRewrite writes rec. With keepID the record's own id is used, which
// seeding needs to reproduce fixture ids.
func insertRewrite(ctx context.Context, ex execer, rec ir.RewriteRecord, keepID bool) (int64, error) {
	var id any
	if keepID && rec.ID != nil {
		id = *rec.ID
	}
	result, err := ex.ExecContext(ctx, `
		INSERT INTO url_rewrite
		(url_rewrite_id, entity_type, entity_id, request_path, target_path,
		 redirect_type, store_id, description, is_autogenerated, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		rec.EntityType,
		rec.EntityID,
		rec.RequestPath,
		rec.TargetPath,
		int64(rec.RedirectType),
		rec.StoreID,
		toNullString(rec.Description),
		rec.IsAutogenerated,
		toNullString(rec.Metadata),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateRewrite overwrites every mutable column of the rewrite identified by
// rec.ID. Updating a missing id returns ErrNotFound.
func (s *Store) UpdateRewrite(ctx context.Context, rec ir.RewriteRecord) error {
	if rec.ID == nil {
		return fmt.Errorf("update rewrite: record has no id")
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE url_rewrite SET
			entity_type = ?,
			entity_id = ?,
			request_path = ?,
			target_path = ?,
			redirect_type = ?,
			store_id = ?,
			description = ?,
			is_autogenerated = ?,
			metadata = ?
		WHERE url_rewrite_id = ?
	`,
		rec.EntityType,
		rec.EntityID,
		rec.RequestPath,
		rec.TargetPath,
		int64(rec.RedirectType),
		rec.StoreID,
		toNullString(rec.Description),
		rec.IsAutogenerated,
		toNullString(rec.Metadata),
		*rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update rewrite %d: %w", *rec.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rewrite %d: rows affected: %w", *rec.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update rewrite %d: %w", *rec.ID, ErrNotFound)
	}
	return nil
}

// DeleteRewrite removes one rewrite by id. Deleting a missing id returns
// ErrNotFound. The engine never deletes; this backs operator commands.
func (s *Store) DeleteRewrite(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM url_rewrite WHERE url_rewrite_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rewrite %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rewrite %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete rewrite %d: %w", id, ErrNotFound)
	}
	return nil
}

// PruneRedirects deletes the autogenerated permanent redirects of one entity
// in one store and returns them. Canonical rewrites and manual records are
// never touched.
func (s *Store) PruneRedirects(ctx context.Context, entityType string, entityID, storeID int64) ([]ir.RewriteRecord, error) {
	var pruned []ir.RewriteRecord
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT `+rewriteColumns+`
			FROM url_rewrite
			WHERE entity_type = ? AND entity_id = ? AND store_id = ?
			  AND is_autogenerated = 1 AND redirect_type = ?
			ORDER BY url_rewrite_id ASC
		`, entityType, entityID, storeID, int64(ir.RedirectPermanent))
		if err != nil {
			return fmt.Errorf("query redirects: %w", err)
		}
		pruned, err = scanRewrites(rows)
		if err != nil {
			return err
		}

		for _, rec := range pruned {
			if _, err := tx.ExecContext(ctx, `DELETE FROM url_rewrite WHERE url_rewrite_id = ?`, *rec.ID); err != nil {
				return fmt.Errorf("delete rewrite %d: %w", *rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("prune redirects: %w", err)
	}
	return pruned, nil
}
