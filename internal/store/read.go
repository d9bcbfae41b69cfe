package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/amenk/import-product/internal/ir"
)

// FetchRewrites returns every rewrite of the entity across all stores,
// ordered by id. Returns an empty slice (not nil) when there are none.
func (s *Store) FetchRewrites(ctx context.Context, entityType string, entityID int64) ([]ir.RewriteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+rewriteColumns+`
		FROM url_rewrite
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY url_rewrite_id ASC
	`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("fetch rewrites: %w", err)
	}
	return scanRewrites(rows)
}

// RewriteByRequestPath returns the rewrite serving requestPath in storeID,
// or (nil, nil) when there is none.
func (s *Store) RewriteByRequestPath(ctx context.Context, storeID int64, requestPath string) (*ir.RewriteRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+rewriteColumns+`
		FROM url_rewrite
		WHERE store_id = ? AND request_path = ?
	`, storeID, requestPath)

	rec, err := scanRewrite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rewrite by request path: %w", err)
	}
	return &rec, nil
}

// RewriteFilter narrows ListRewrites. Zero fields do not filter.
type RewriteFilter struct {
	EntityType string
	EntityID   int64
	StoreID    int64

	// Managed restricts to autogenerated (true) or manual (false) records.
	Managed *bool

	// Redirect restricts to one redirect type.
	Redirect *ir.RedirectType
}

// ListRewrites returns rewrites matching filter, ordered by id.
func (s *Store) ListRewrites(ctx context.Context, filter RewriteFilter) ([]ir.RewriteRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.EntityType != "" {
		where = append(where, "entity_type = ?")
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != 0 {
		where = append(where, "entity_id = ?")
		args = append(args, filter.EntityID)
	}
	if filter.StoreID != 0 {
		where = append(where, "store_id = ?")
		args = append(args, filter.StoreID)
	}
	if filter.Managed != nil {
		where = append(where, "is_autogenerated = ?")
		args = append(args, *filter.Managed)
	}
	if filter.Redirect != nil {
		where = append(where, "redirect_type = ?")
		args = append(args, int64(*filter.Redirect))
	}

	query := `SELECT ` + rewriteColumns + ` FROM url_rewrite`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY url_rewrite_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rewrites: %w", err)
	}
	return scanRewrites(rows)
}

// RewritesForStore returns every rewrite in a store, ordered by id.
func (s *Store) RewritesForStore(ctx context.Context, storeID int64) ([]ir.RewriteRecord, error) {
	return s.ListRewrites(ctx, RewriteFilter{StoreID: storeID})
}
