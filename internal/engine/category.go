package engine

import (
	"context"

	"github.com/amenk/import-product/internal/ir"
)

// ResolvedCategory is an assigned category with a usable URL path.
type ResolvedCategory struct {
	ID   int64
	Path string
}

// ResolveCategoryPath returns the category's URL path, or false when the
// category contributes no rewrite: it is the store's root category, or it
// has no path of its own.
func ResolveCategoryPath(category, root ir.Category) (string, bool) {
	if root.ID != 0 && category.ID == root.ID {
		return "", false
	}
	path := NormalizeCategoryPath(category.Path)
	if path == "" {
		return "", false
	}
	return path, true
}

// resolveCategories looks up every assigned category and keeps the ones
// with a path. Lookup failures degrade to "no path" and are logged.
func (e *Engine) resolveCategories(ctx context.Context, key EntityKey, ids []int64, root ir.Category) []ResolvedCategory {
	resolved := make([]ResolvedCategory, 0, len(ids))
	for _, id := range ids {
		cat, err := e.catalog.Category(ctx, id)
		if err != nil {
			e.logger.Warn("category lookup failed, skipping",
				"entity", key.String(),
				"category_id", id,
				"error", err)
			continue
		}
		path, ok := ResolveCategoryPath(cat, root)
		if !ok {
			e.logger.Debug("category has no path",
				"entity", key.String(),
				"category_id", id)
			continue
		}
		resolved = append(resolved, ResolvedCategory{ID: id, Path: path})
	}
	return resolved
}
