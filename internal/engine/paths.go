package engine

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/amenk/import-product/internal/ir"
)

// PathBuilder builds request and target paths for one entity kind.
// It is pure and safe for concurrent use.
type PathBuilder struct {
	conv ir.Convention
}

// NewPathBuilder returns a builder for the given convention.
func NewPathBuilder(conv ir.Convention) PathBuilder {
	return PathBuilder{conv: conv}
}

// Convention returns the convention the builder was created with.
func (b PathBuilder) Convention() ir.Convention {
	return b.conv
}

// RootTarget returns the internal target for the entity's root rewrite,
// e.g. "catalog/product/view/id/61413".
func (b PathBuilder) RootTarget(entityID int64) string {
	return b.conv.TargetPrefix + "/" + strconv.FormatInt(entityID, 10)
}

// CategoryTarget returns the internal target for a category-scoped rewrite,
// e.g. "catalog/product/view/id/61413/category/16".
func (b PathBuilder) CategoryTarget(entityID, categoryID int64) string {
	return b.RootTarget(entityID) + "/" + b.conv.CategorySegment + "/" + strconv.FormatInt(categoryID, 10)
}

// RequestPath returns the root request path for a slug, e.g.
// "bruno-compete-hoodie.html".
func (b PathBuilder) RequestPath(slug string) string {
	return NormalizeSlug(slug) + b.conv.Suffix
}

// CategoryRequestPath returns the request path below a category path, e.g.
// "men/tops-men/bruno-compete-hoodie.html".
func (b PathBuilder) CategoryRequestPath(categoryPath, slug string) string {
	return NormalizeCategoryPath(categoryPath) + "/" + b.RequestPath(slug)
}

// NormalizeSlug trims whitespace and applies NFC so that visually equal
// slugs produce byte-equal request paths.
func NormalizeSlug(slug string) string {
	return norm.NFC.String(strings.TrimSpace(slug))
}

// NormalizeCategoryPath trims whitespace and surrounding slashes and applies NFC.
func NormalizeCategoryPath(path string) string {
	return norm.NFC.String(strings.Trim(strings.TrimSpace(path), "/"))
}
