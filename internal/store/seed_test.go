package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/amenk/import-product/internal/ir"
)

const hoodieFixture = `
categories:
  - {id: 2, name: Default Category}
  - {id: 13, parent_id: 11, name: Tops, path: men/tops-men}
  - {id: 16, parent_id: 13, name: Hoodies, path: men/tops-men/hoodies-and-sweatshirts-men}
roots:
  - {store_id: 1, category_id: 2}
assignments:
  - {entity_id: 61413, categories: [16, 13]}
rewrites:
  - id: 744
    entity_id: 61413
    request_path: bruno-compete-hoodie-old.html
    target_path: catalog/product/view/id/61413
    store_id: 1
    autogenerated: true
  - id: 745
    entity_id: 61413
    request_path: men/tops-men/hoodies-and-sweatshirts-men/bruno-compete-hoodie-old.html
    target_path: catalog/product/view/id/61413/category/16
    store_id: 1
    autogenerated: true
    metadata: 'a:1:{s:11:"category_id";s:2:"16";}'
  - entity_type: custom
    request_path: summer-sale.html
    target_path: bruno-compete-hoodie-old.html
    redirect: permanent
    store_id: 1
    description: campaign link
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestSeed_HoodieFixture(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	fx, err := LoadFixture(writeFixture(t, hoodieFixture))
	if err != nil {
		t.Fatalf("LoadFixture() failed: %v", err)
	}
	stats, err := s.Seed(ctx, fx)
	if err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	want := SeedStats{Categories: 3, Roots: 1, Assignments: 1, Rewrites: 3}
	if stats != want {
		t.Errorf("Seed() stats = %+v, want %+v", stats, want)
	}

	ids, err := s.AssignedCategoryIDs(ctx, "product", 61413)
	if err != nil || !slices.Equal(ids, []int64{16, 13}) {
		t.Errorf("AssignedCategoryIDs() = %v, %v", ids, err)
	}

	legacy, err := s.RewriteByRequestPath(ctx, 1, "men/tops-men/hoodies-and-sweatshirts-men/bruno-compete-hoodie-old.html")
	if err != nil || legacy == nil {
		t.Fatalf("RewriteByRequestPath() = %v, %v", legacy, err)
	}
	if *legacy.ID != 745 {
		t.Errorf("fixture id = %d, want 745", *legacy.ID)
	}
	m, err := ir.ParseMetadata(legacy.Metadata)
	if err != nil || m.CategoryID == nil || *m.CategoryID != 16 {
		t.Errorf("legacy metadata = %+v, %v", m, err)
	}

	manual, err := s.RewriteByRequestPath(ctx, 1, "summer-sale.html")
	if err != nil || manual == nil {
		t.Fatalf("RewriteByRequestPath() = %v, %v", manual, err)
	}
	if manual.IsAutogenerated || manual.RedirectType != ir.RedirectPermanent {
		t.Errorf("manual record = %+v", manual)
	}
	if *manual.ID <= 745 {
		t.Errorf("rewrite without fixture id got %d, want id after 745", *manual.ID)
	}
}

func TestSeed_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	fx := &Fixture{
		Categories: []FixtureCategory{{ID: 2, Name: "Default Category"}},
		Rewrites: []FixtureRewrite{
			{EntityID: 1, RequestPath: "a.html", TargetPath: "x", StoreID: 1},
			{EntityID: 2, RequestPath: "a.html", TargetPath: "y", StoreID: 1},
		},
	}
	if _, err := s.Seed(ctx, fx); err == nil {
		t.Fatal("expected duplicate request path to fail")
	}

	if _, err := s.Category(ctx, 2); err == nil {
		t.Error("category written despite rollback")
	}
}

func TestLoadFixture_RejectsUnknownKeys(t *testing.T) {
	path := writeFixture(t, "categories:\n  - {id: 2, url_key: nope}\n")

	if _, err := LoadFixture(path); err == nil {
		t.Error("expected unknown field error")
	}
}

func TestFixtureRewrite_BadRedirect(t *testing.T) {
	_, err := FixtureRewrite{RequestPath: "a.html", Redirect: "temporary"}.Record()
	if err == nil {
		t.Error("expected error for unknown redirect type")
	}
}
