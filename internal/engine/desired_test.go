package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amenk/import-product/internal/ir"
)

func TestComputeDesired_RootFirst(t *testing.T) {
	set, err := ComputeDesired(NewPathBuilder(ir.DefaultProductConvention()), 61413, "bruno-compete-hoodie", []ResolvedCategory{cat19, cat35}, nil)
	require.NoError(t, err)

	require.Len(t, set.Entries, 3)
	assert.Nil(t, set.Entries[0].CategoryID)
	assert.Equal(t, "bruno-compete-hoodie.html", set.Entries[0].RequestPath)
	assert.Equal(t, "catalog/product/view/id/61413", set.Entries[0].TargetPath)

	assert.Equal(t, int64(19), *set.Entries[1].CategoryID)
	assert.Equal(t, "men/bottoms-men/pants-men/bruno-compete-hoodie.html", set.Entries[1].RequestPath)
	assert.Equal(t, "catalog/product/view/id/61413/category/19", set.Entries[1].TargetPath)

	assert.Equal(t, int64(35), *set.Entries[2].CategoryID)
	assert.Equal(t, set.Entries[0], set.Root())
	assert.Empty(t, set.Collisions)
}

func TestComputeDesired_EmptySlug(t *testing.T) {
	for _, slug := range []string{"", "   ", "\t"} {
		_, err := ComputeDesired(NewPathBuilder(ir.DefaultProductConvention()), 61413, slug, nil, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidInput(err), "slug %q", slug)
	}
}

func TestComputeDesired_DuplicateCategoryIgnored(t *testing.T) {
	set, err := ComputeDesired(NewPathBuilder(ir.DefaultProductConvention()), 1, "tee", []ResolvedCategory{cat13, cat13}, nil)
	require.NoError(t, err)
	assert.Len(t, set.Entries, 2)
	assert.Empty(t, set.Collisions)
}

func TestComputeDesired_CollisionLowestIDWins(t *testing.T) {
	dup := ResolvedCategory{ID: 50, Path: "men/tops-men/"}

	set, err := ComputeDesired(NewPathBuilder(ir.DefaultProductConvention()), 1, "tee", []ResolvedCategory{dup, cat13}, nil)
	require.NoError(t, err)

	require.Len(t, set.Entries, 2)
	assert.Equal(t, int64(13), *set.Entries[1].CategoryID)
	require.Len(t, set.Collisions, 1)
	assert.Equal(t, ir.Collision{RequestPath: "men/tops-men/tee.html", Winner: 13, Losers: []int64{50}}, set.Collisions[0])
}

func TestComputeDesired_CollisionCurrentOwnerWins(t *testing.T) {
	dup := ResolvedCategory{ID: 50, Path: "men/tops-men"}
	owner := func(requestPath string) (int64, bool) {
		if requestPath == "men/tops-men/tee.html" {
			return 50, true
		}
		return 0, false
	}

	set, err := ComputeDesired(NewPathBuilder(ir.DefaultProductConvention()), 1, "tee", []ResolvedCategory{cat13, dup}, owner)
	require.NoError(t, err)

	require.Len(t, set.Entries, 2)
	assert.Equal(t, int64(50), *set.Entries[1].CategoryID)
	assert.Equal(t, []int64{13}, set.Collisions[0].Losers)
}

func TestComputeDesired_OwnerOutsideCandidatesIgnored(t *testing.T) {
	dup := ResolvedCategory{ID: 50, Path: "men/tops-men"}
	owner := func(string) (int64, bool) { return 99, true }

	set, err := ComputeDesired(NewPathBuilder(ir.DefaultProductConvention()), 1, "tee", []ResolvedCategory{dup, cat13}, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(13), set.Collisions[0].Winner)
}
