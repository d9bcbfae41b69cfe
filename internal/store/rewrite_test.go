package store

import (
	"context"
	"errors"
	"testing"

	"github.com/amenk/import-product/internal/ir"
)

func TestPersistRewrite_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRewrite(61413, "men/tops-men/tee.html", "catalog/product/view/id/61413/category/13")
	rec.Metadata = strPtr(`{"category_id":13}`)
	callerID := int64(999)
	rec.ID = &callerID

	id, err := s.PersistRewrite(ctx, rec)
	if err != nil {
		t.Fatalf("PersistRewrite() failed: %v", err)
	}
	if id == 999 {
		t.Error("PersistRewrite() must not reuse the caller's id")
	}

	got, err := s.FetchRewrites(ctx, "product", 61413)
	if err != nil {
		t.Fatalf("FetchRewrites() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FetchRewrites() returned %d records, want 1", len(got))
	}
	r := got[0]
	if *r.ID != id {
		t.Errorf("id = %d, want %d", *r.ID, id)
	}
	if r.RequestPath != rec.RequestPath || r.TargetPath != rec.TargetPath {
		t.Errorf("paths = %q -> %q", r.RequestPath, r.TargetPath)
	}
	if !r.IsAutogenerated {
		t.Error("is_autogenerated lost")
	}
	if r.Description != nil {
		t.Errorf("description = %q, want nil", *r.Description)
	}
	if r.Metadata == nil || *r.Metadata != `{"category_id":13}` {
		t.Errorf("metadata = %v, want canonical JSON", r.Metadata)
	}
	m, err := ir.ParseMetadata(r.Metadata)
	if err != nil || m.CategoryID == nil || *m.CategoryID != 13 {
		t.Errorf("metadata does not round-trip: %+v, %v", m, err)
	}
}

func TestPersistRewrite_DuplicatePathFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.PersistRewrite(ctx, createTestRewrite(1, "tee.html", "a")); err != nil {
		t.Fatalf("first PersistRewrite() failed: %v", err)
	}
	if _, err := s.PersistRewrite(ctx, createTestRewrite(2, "tee.html", "b")); err == nil {
		t.Error("expected unique constraint error")
	}
}

func TestUpdateRewrite(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRewrite(1, "old.html", "catalog/product/view/id/1")
	id, err := s.PersistRewrite(ctx, rec)
	if err != nil {
		t.Fatalf("PersistRewrite() failed: %v", err)
	}

	rec.ID = &id
	rec.TargetPath = "new.html"
	rec.RedirectType = ir.RedirectPermanent
	rec.Description = strPtr("kept")
	if err := s.UpdateRewrite(ctx, rec); err != nil {
		t.Fatalf("UpdateRewrite() failed: %v", err)
	}

	got, err := s.RewriteByRequestPath(ctx, 1, "old.html")
	if err != nil || got == nil {
		t.Fatalf("RewriteByRequestPath() = %v, %v", got, err)
	}
	if got.TargetPath != "new.html" || got.RedirectType != ir.RedirectPermanent {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Description == nil || *got.Description != "kept" {
		t.Errorf("description = %v", got.Description)
	}
}

func TestUpdateRewrite_Missing(t *testing.T) {
	s := createTestStore(t)

	rec := createTestRewrite(1, "a.html", "b")
	missing := int64(42)
	rec.ID = &missing

	err := s.UpdateRewrite(context.Background(), rec)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateRewrite() error = %v, want ErrNotFound", err)
	}

	rec.ID = nil
	if err := s.UpdateRewrite(context.Background(), rec); err == nil {
		t.Error("expected error for record without id")
	}
}

func TestDeleteRewrite(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.PersistRewrite(ctx, createTestRewrite(1, "a.html", "b"))
	if err != nil {
		t.Fatalf("PersistRewrite() failed: %v", err)
	}
	if err := s.DeleteRewrite(ctx, id); err != nil {
		t.Fatalf("DeleteRewrite() failed: %v", err)
	}
	if err := s.DeleteRewrite(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRewrite() error = %v, want ErrNotFound", err)
	}
}

func TestRewriteByRequestPath_NotFound(t *testing.T) {
	s := createTestStore(t)

	got, err := s.RewriteByRequestPath(context.Background(), 1, "nothing.html")
	if err != nil {
		t.Fatalf("RewriteByRequestPath() failed: %v", err)
	}
	if got != nil {
		t.Errorf("RewriteByRequestPath() = %+v, want nil", got)
	}
}

func TestFetchRewrites_EmptyAndOrdered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	got, err := s.FetchRewrites(ctx, "product", 1)
	if err != nil {
		t.Fatalf("FetchRewrites() failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("FetchRewrites() = %v, want empty non-nil slice", got)
	}

	for _, path := range []string{"c.html", "a.html", "b.html"} {
		if _, err := s.PersistRewrite(ctx, createTestRewrite(1, path, "t")); err != nil {
			t.Fatalf("PersistRewrite(%s) failed: %v", path, err)
		}
	}
	other := createTestRewrite(1, "c.html", "t")
	other.StoreID = 2
	if _, err := s.PersistRewrite(ctx, other); err != nil {
		t.Fatalf("PersistRewrite(store 2) failed: %v", err)
	}

	got, err = s.FetchRewrites(ctx, "product", 1)
	if err != nil {
		t.Fatalf("FetchRewrites() failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("FetchRewrites() returned %d, want 4 (all stores)", len(got))
	}
	for i := 1; i < len(got); i++ {
		if *got[i-1].ID >= *got[i].ID {
			t.Errorf("records not ordered by id: %d before %d", *got[i-1].ID, *got[i].ID)
		}
	}
	if got[0].RequestPath != "c.html" {
		t.Errorf("first record = %q, want insertion order", got[0].RequestPath)
	}
}

func TestListRewrites_Filter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	canonical := createTestRewrite(1, "tee.html", "catalog/product/view/id/1")
	redirect := createTestRewrite(1, "old-tee.html", "tee.html")
	redirect.RedirectType = ir.RedirectPermanent
	manual := createTestRewrite(1, "promo.html", "tee.html")
	manual.IsAutogenerated = false
	manual.RedirectType = ir.RedirectPermanent
	otherStore := createTestRewrite(1, "tee.html", "catalog/product/view/id/1")
	otherStore.StoreID = 2
	otherEntity := createTestRewrite(2, "shorts.html", "catalog/product/view/id/2")

	for _, rec := range []ir.RewriteRecord{canonical, redirect, manual, otherStore, otherEntity} {
		if _, err := s.PersistRewrite(ctx, rec); err != nil {
			t.Fatalf("PersistRewrite(%s) failed: %v", rec.RequestPath, err)
		}
	}

	managed := true
	permanent := ir.RedirectPermanent
	tests := []struct {
		name   string
		filter RewriteFilter
		want   []string
	}{
		{"all", RewriteFilter{}, []string{"tee.html", "old-tee.html", "promo.html", "tee.html", "shorts.html"}},
		{"entity in store", RewriteFilter{EntityType: "product", EntityID: 1, StoreID: 1}, []string{"tee.html", "old-tee.html", "promo.html"}},
		{"managed redirects", RewriteFilter{EntityID: 1, Managed: &managed, Redirect: &permanent}, []string{"old-tee.html"}},
		{"other store", RewriteFilter{StoreID: 2}, []string{"tee.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListRewrites(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListRewrites() failed: %v", err)
			}
			var paths []string
			for _, r := range got {
				paths = append(paths, r.RequestPath)
			}
			if len(paths) != len(tt.want) {
				t.Fatalf("ListRewrites() = %v, want %v", paths, tt.want)
			}
			for i := range paths {
				if paths[i] != tt.want[i] {
					t.Errorf("ListRewrites()[%d] = %q, want %q", i, paths[i], tt.want[i])
				}
			}
		})
	}

	store1, err := s.RewritesForStore(ctx, 1)
	if err != nil {
		t.Fatalf("RewritesForStore() failed: %v", err)
	}
	if len(store1) != 4 {
		t.Errorf("RewritesForStore(1) returned %d, want 4", len(store1))
	}
}

func TestPruneRedirects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	canonical := createTestRewrite(1, "tee.html", "catalog/product/view/id/1")
	redirect := createTestRewrite(1, "old-tee.html", "tee.html")
	redirect.RedirectType = ir.RedirectPermanent
	manual := createTestRewrite(1, "promo.html", "tee.html")
	manual.IsAutogenerated = false
	manual.RedirectType = ir.RedirectPermanent
	otherStore := createTestRewrite(1, "old-tee.html", "tee.html")
	otherStore.StoreID = 2
	otherStore.RedirectType = ir.RedirectPermanent

	for _, rec := range []ir.RewriteRecord{canonical, redirect, manual, otherStore} {
		if _, err := s.PersistRewrite(ctx, rec); err != nil {
			t.Fatalf("PersistRewrite(%s) failed: %v", rec.RequestPath, err)
		}
	}

	pruned, err := s.PruneRedirects(ctx, "product", 1, 1)
	if err != nil {
		t.Fatalf("PruneRedirects() failed: %v", err)
	}
	if len(pruned) != 1 || pruned[0].RequestPath != "old-tee.html" {
		t.Fatalf("PruneRedirects() = %+v, want only the managed redirect", pruned)
	}

	left, err := s.FetchRewrites(ctx, "product", 1)
	if err != nil {
		t.Fatalf("FetchRewrites() failed: %v", err)
	}
	if len(left) != 3 {
		t.Errorf("%d rewrites left, want 3", len(left))
	}
}
