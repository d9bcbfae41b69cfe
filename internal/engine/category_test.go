package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amenk/import-product/internal/ir"
)

func TestResolveCategoryPath(t *testing.T) {
	root := ir.Category{ID: 2}

	tests := []struct {
		name     string
		category ir.Category
		wantPath string
		wantOK   bool
	}{
		{"regular category", ir.Category{ID: 16, Path: "men/tops-men/hoodies-and-sweatshirts-men"}, "men/tops-men/hoodies-and-sweatshirts-men", true},
		{"root category", ir.Category{ID: 2, Path: "default"}, "", false},
		{"empty path", ir.Category{ID: 5}, "", false},
		{"slash only path", ir.Category{ID: 6, Path: "/"}, "", false},
		{"surrounding slashes trimmed", ir.Category{ID: 7, Path: "/gear/bags/"}, "gear/bags", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := ResolveCategoryPath(tt.category, root)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestResolveCategoryPath_UnknownRoot(t *testing.T) {
	path, ok := ResolveCategoryPath(ir.Category{ID: 2, Path: "gear"}, ir.Category{})
	assert.True(t, ok, "without a root nothing is excluded as root")
	assert.Equal(t, "gear", path)
}
