package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amenk/import-product/internal/ir"
)

// Category returns a category by id. A missing id wraps ErrNotFound.
func (s *Store) Category(ctx context.Context, id int64) (ir.Category, error) {
	var c ir.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT entity_id, parent_id, name, url_path
		FROM catalog_category
		WHERE entity_id = ?
	`, id).Scan(&c.ID, &c.ParentID, &c.Name, &c.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Category{}, fmt.Errorf("category %d: %w", id, err)
	}
	return c, nil
}

// RootCategory returns the root category of a store view.
func (s *Store) RootCategory(ctx context.Context, storeID int64) (ir.Category, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT category_id FROM store_root_category WHERE store_id = ?
	`, storeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Category{}, fmt.Errorf("root category of store %d: %w", storeID, ErrNotFound)
	}
	if err != nil {
		return ir.Category{}, fmt.Errorf("root category of store %d: %w", storeID, err)
	}
	return s.Category(ctx, id)
}

// AssignedCategoryIDs returns the categories an entity is assigned to, in
// assignment position order.
func (s *Store) AssignedCategoryIDs(ctx context.Context, entityType string, entityID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id
		FROM catalog_category_product
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY position ASC, category_id ASC
	`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("assigned categories: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assigned categories: %w", err)
	}
	return ids, nil
}

// UpsertCategory inserts or replaces a category.
func (s *Store) UpsertCategory(ctx context.Context, c ir.Category) error {
	if err := upsertCategory(ctx, s.db, c); err != nil {
		return fmt.Errorf("upsert category %d: %w", c.ID, err)
	}
	return nil
}

func upsertCategory(ctx context.Context, ex execer, c ir.Category) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO catalog_category (entity_id, parent_id, name, url_path)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			parent_id = excluded.parent_id,
			name = excluded.name,
			url_path = excluded.url_path
	`, c.ID, c.ParentID, c.Name, c.Path)
	return err
}

// SetRootCategory sets the root category of a store view.
func (s *Store) SetRootCategory(ctx context.Context, storeID, categoryID int64) error {
	if err := setRootCategory(ctx, s.db, storeID, categoryID); err != nil {
		return fmt.Errorf("set root category of store %d: %w", storeID, err)
	}
	return nil
}

func setRootCategory(ctx context.Context, ex execer, storeID, categoryID int64) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO store_root_category (store_id, category_id)
		VALUES (?, ?)
		ON CONFLICT(store_id) DO UPDATE SET category_id = excluded.category_id
	`, storeID, categoryID)
	return err
}

// AssignCategories replaces the category assignments of an entity. The
// order of categoryIDs becomes the assignment position.
func (s *Store) AssignCategories(ctx context.Context, entityType string, entityID int64, categoryIDs []int64) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return assignCategories(ctx, tx, entityType, entityID, categoryIDs)
	})
	if err != nil {
		return fmt.Errorf("assign categories to %s %d: %w", entityType, entityID, err)
	}
	return nil
}

func assignCategories(ctx context.Context, ex execer, entityType string, entityID int64, categoryIDs []int64) error {
	if _, err := ex.ExecContext(ctx, `
		DELETE FROM catalog_category_product WHERE entity_type = ? AND entity_id = ?
	`, entityType, entityID); err != nil {
		return err
	}
	for pos, id := range categoryIDs {
		if _, err := ex.ExecContext(ctx, `
			INSERT INTO catalog_category_product (entity_type, entity_id, category_id, position)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, entityType, entityID, id, pos); err != nil {
			return err
		}
	}
	return nil
}
