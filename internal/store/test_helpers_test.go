package store

import (
	"path/filepath"
	"testing"

	"github.com/amenk/import-product/internal/ir"
)

// createTestStore creates a new store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRewrite creates an autogenerated product rewrite in store 1.
func createTestRewrite(entityID int64, requestPath, targetPath string) ir.RewriteRecord {
	return ir.RewriteRecord{
		EntityType:      "product",
		EntityID:        entityID,
		RequestPath:     requestPath,
		TargetPath:      targetPath,
		RedirectType:    ir.RedirectNone,
		StoreID:         1,
		IsAutogenerated: true,
	}
}

func strPtr(s string) *string { return &s }
