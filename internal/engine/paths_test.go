package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amenk/import-product/internal/ir"
)

func TestPathBuilder_Product(t *testing.T) {
	b := NewPathBuilder(ir.DefaultProductConvention())

	assert.Equal(t, "catalog/product/view/id/61413", b.RootTarget(61413))
	assert.Equal(t, "catalog/product/view/id/61413/category/16", b.CategoryTarget(61413, 16))
	assert.Equal(t, "bruno-compete-hoodie.html", b.RequestPath("bruno-compete-hoodie"))
	assert.Equal(t, "men/tops-men/bruno-compete-hoodie.html", b.CategoryRequestPath("men/tops-men", "bruno-compete-hoodie"))
}

func TestPathBuilder_CustomConvention(t *testing.T) {
	b := NewPathBuilder(ir.Convention{
		EntityType:      "cms-page",
		TargetPrefix:    "cms/page/view/page_id",
		CategorySegment: "section",
		Suffix:          "",
	})

	assert.Equal(t, "cms/page/view/page_id/7", b.RootTarget(7))
	assert.Equal(t, "cms/page/view/page_id/7/section/3", b.CategoryTarget(7, 3))
	assert.Equal(t, "about-us", b.RequestPath("about-us"))
	assert.Equal(t, "cms-page", b.Convention().EntityType)
}

func TestPathBuilder_Normalization(t *testing.T) {
	b := NewPathBuilder(ir.DefaultProductConvention())

	assert.Equal(t, "tee.html", b.RequestPath("  tee "))
	assert.Equal(t, "men/tops/tee.html", b.CategoryRequestPath("/men/tops/", "tee"))
	// NFD input produces the NFC path
	assert.Equal(t, "caf\u00e9.html", b.RequestPath("cafe\u0301"))
}
