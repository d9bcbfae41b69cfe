package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amenk/import-product/internal/ir"
)

func codes(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidateConventionValid(t *testing.T) {
	conv := ir.DefaultProductConvention()

	assert.Empty(t, Validate(conv))
	assert.Empty(t, Validate(&conv))
}

func TestValidateConventionNoSuffix(t *testing.T) {
	conv := ir.Convention{EntityType: "cms-page", TargetPrefix: "cms/page/view/page_id", CategorySegment: "category"}
	assert.Empty(t, Validate(conv))
}

func TestValidateConventionErrors(t *testing.T) {
	tests := []struct {
		name string
		conv ir.Convention
		want []string
	}{
		{
			name: "missing entity type",
			conv: ir.Convention{TargetPrefix: "catalog/product/view/id"},
			want: []string{ErrEntityTypeEmpty},
		},
		{
			name: "bad entity type",
			conv: ir.Convention{EntityType: "Product", TargetPrefix: "catalog/product/view/id"},
			want: []string{ErrInvalidEntityType},
		},
		{
			name: "missing target prefix",
			conv: ir.Convention{EntityType: "product"},
			want: []string{ErrTargetPrefixEmpty},
		},
		{
			name: "leading slash",
			conv: ir.Convention{EntityType: "product", TargetPrefix: "/catalog/product/view/id"},
			want: []string{ErrInvalidSlashes},
		},
		{
			name: "trailing slash",
			conv: ir.Convention{EntityType: "product", TargetPrefix: "catalog/product/view/id/"},
			want: []string{ErrInvalidSlashes},
		},
		{
			name: "double slash",
			conv: ir.Convention{EntityType: "product", TargetPrefix: "catalog//view"},
			want: []string{ErrInvalidSlashes},
		},
		{
			name: "segment with slash",
			conv: ir.Convention{EntityType: "product", TargetPrefix: "p", CategorySegment: "cat/id"},
			want: []string{ErrInvalidSlashes},
		},
		{
			name: "suffix without dot",
			conv: ir.Convention{EntityType: "product", TargetPrefix: "p", Suffix: "html"},
			want: []string{ErrInvalidSuffix},
		},
		{
			name: "bare dot suffix",
			conv: ir.Convention{EntityType: "product", TargetPrefix: "p", Suffix: "."},
			want: []string{ErrInvalidSuffix},
		},
		{
			name: "suffix with slash",
			conv: ir.Convention{EntityType: "product", TargetPrefix: "p", Suffix: ".html/"},
			want: []string{ErrInvalidSuffix},
		},
		{
			name: "everything wrong",
			conv: ir.Convention{Suffix: "html"},
			want: []string{ErrEntityTypeEmpty, ErrTargetPrefixEmpty, ErrInvalidSuffix},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(Validate(tt.conv)))
		})
	}
}

func TestValidateConventionsDuplicate(t *testing.T) {
	convs := []ir.Convention{
		ir.DefaultProductConvention(),
		{EntityType: "category", TargetPrefix: "catalog/category/view/id", Suffix: ".html"},
		ir.DefaultProductConvention(),
	}

	errs := Validate(convs)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateKind, errs[0].Code)
	assert.Equal(t, "kinds[2].entity_type", errs[0].Field)
	assert.Contains(t, errs[0].Message, "kinds[0]")
}

func TestValidateConventionsFieldPrefix(t *testing.T) {
	errs := Validate([]ir.Convention{ir.DefaultProductConvention(), {EntityType: "page"}})
	require.Len(t, errs, 1)
	assert.Equal(t, "kinds[1].target_prefix", errs[0].Field)
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("not a convention")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedIRType, errs[0].Code)
	assert.Contains(t, errs[0].Message, "string")
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "suffix", Message: "bad", Code: ErrInvalidSuffix}
	assert.Equal(t, "[E103] suffix: bad", e.Error())

	e.Line = 4
	assert.Equal(t, "[E103] line 4: suffix: bad", e.Error())
}
