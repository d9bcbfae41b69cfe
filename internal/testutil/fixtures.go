package testutil

import (
	"fmt"

	"github.com/amenk/import-product/internal/ir"
)

// Hoodie fixture: a product in store 1 whose root category is 2.
const (
	HoodieID      int64 = 61413
	HoodieStore   int64 = 1
	HoodieRootCat int64 = 2
)

// HoodieCategories are the catalog categories used by the hoodie fixtures.
func HoodieCategories() []ir.Category {
	return []ir.Category{
		{ID: 2, Name: "Default Category"},
		{ID: 13, ParentID: 11, Name: "Tops", Path: "men/tops-men"},
		{ID: 16, ParentID: 13, Name: "Hoodies & Sweatshirts", Path: "men/tops-men/hoodies-and-sweatshirts-men"},
		{ID: 19, ParentID: 18, Name: "Pants", Path: "men/bottoms-men/pants-men"},
		{ID: 35, ParentID: 7, Name: "Erin Recommends", Path: "collections/erin-recommends"},
		{ID: 37, ParentID: 7, Name: "Eco Friendly", Path: "collections/eco-friendly"},
	}
}

// HoodieCatalog returns a catalog with the hoodie categories, store 1
// rooted at category 2, and the hoodie assigned to categoryIDs.
func HoodieCatalog(categoryIDs ...int64) *MemoryCatalog {
	c := NewMemoryCatalog()
	for _, cat := range HoodieCategories() {
		c.AddCategory(cat)
	}
	c.SetRoot(HoodieStore, HoodieRootCat)
	c.Assign("product", HoodieID, categoryIDs...)
	return c
}

// ManagedRewrite builds a canonical autogenerated rewrite for the hoodie.
// categoryID 0 builds the root rewrite.
func ManagedRewrite(id int64, requestPath string, categoryID int64) ir.RewriteRecord {
	target := fmt.Sprintf("catalog/product/view/id/%d", HoodieID)
	var meta *string
	if categoryID != 0 {
		target = fmt.Sprintf("%s/category/%d", target, categoryID)
		meta = ir.MustEncodeMetadata(ir.CategoryMetadata(categoryID))
	}
	return ir.RewriteRecord{
		ID:              &id,
		EntityType:      "product",
		EntityID:        HoodieID,
		RequestPath:     requestPath,
		TargetPath:      target,
		RedirectType:    ir.RedirectNone,
		StoreID:         HoodieStore,
		IsAutogenerated: true,
		Metadata:        meta,
	}
}

// LegacyMetadata returns the serialized payload the original importer
// wrote for a category id.
func LegacyMetadata(categoryID int64) *string {
	digits := fmt.Sprintf("%d", categoryID)
	s := fmt.Sprintf(`a:1:{s:11:"category_id";s:%d:"%s";}`, len(digits), digits)
	return &s
}

// OldSlugRewrites returns the four rewrites the hoodie had under the slug
// "bruno-compete-hoodie-old": root plus categories 16, 37 and 13, with
// ids 744-747 and legacy metadata.
func OldSlugRewrites() []ir.RewriteRecord {
	root := ManagedRewrite(744, "bruno-compete-hoodie-old.html", 0)
	c16 := ManagedRewrite(745, "men/tops-men/hoodies-and-sweatshirts-men/bruno-compete-hoodie-old.html", 16)
	c16.Metadata = LegacyMetadata(16)
	c37 := ManagedRewrite(746, "collections/eco-friendly/bruno-compete-hoodie-old.html", 37)
	c37.Metadata = LegacyMetadata(37)
	c13 := ManagedRewrite(747, "men/tops-men/bruno-compete-hoodie-old.html", 13)
	c13.Metadata = LegacyMetadata(13)
	return []ir.RewriteRecord{root, c16, c37, c13}
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }
