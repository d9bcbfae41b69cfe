package engine

import (
	"slices"

	"github.com/amenk/import-product/internal/ir"
)

// DesiredSet is the output of ComputeDesired.
type DesiredSet struct {
	Entries    []ir.DesiredEntry
	Collisions []ir.Collision
}

// Root returns the root entry. ComputeDesired always produces one.
func (d DesiredSet) Root() ir.DesiredEntry {
	for _, e := range d.Entries {
		if e.CategoryID == nil {
			return e
		}
	}
	return ir.DesiredEntry{}
}

// OwnerFunc reports which category currently owns a request path through a
// canonical managed rewrite. It is consulted only to break collisions.
type OwnerFunc func(requestPath string) (categoryID int64, ok bool)

// ComputeDesired builds the desired rewrites for one entity: the root entry
// first, then one entry per resolved category in input order.
//
// When several categories resolve to the same request path only one keeps
// the entry: the current owner if owner reports one among them, otherwise
// the lowest category id. owner may be nil.
func ComputeDesired(b PathBuilder, entityID int64, slug string, categories []ResolvedCategory, owner OwnerFunc) (DesiredSet, error) {
	if NormalizeSlug(slug) == "" {
		return DesiredSet{}, NewInvalidInputError(EntityKey{EntityType: b.conv.EntityType, EntityID: entityID}, "url key is empty")
	}

	set := DesiredSet{
		Entries: []ir.DesiredEntry{{
			RequestPath: b.RequestPath(slug),
			TargetPath:  b.RootTarget(entityID),
		}},
	}

	// Group candidates by request path, keeping first-seen order.
	var order []string
	candidates := make(map[string][]int64)
	seen := make(map[int64]bool, len(categories))
	for _, c := range categories {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		rp := b.CategoryRequestPath(c.Path, slug)
		if _, ok := candidates[rp]; !ok {
			order = append(order, rp)
		}
		candidates[rp] = append(candidates[rp], c.ID)
	}

	for _, rp := range order {
		ids := candidates[rp]
		winner := pickWinner(rp, ids, owner)
		if len(ids) > 1 {
			losers := make([]int64, 0, len(ids)-1)
			for _, id := range ids {
				if id != winner {
					losers = append(losers, id)
				}
			}
			slices.Sort(losers)
			set.Collisions = append(set.Collisions, ir.Collision{RequestPath: rp, Winner: winner, Losers: losers})
		}
		id := winner
		set.Entries = append(set.Entries, ir.DesiredEntry{
			RequestPath: rp,
			TargetPath:  b.CategoryTarget(entityID, id),
			CategoryID:  &id,
		})
	}

	return set, nil
}

func pickWinner(requestPath string, ids []int64, owner OwnerFunc) int64 {
	if len(ids) == 1 {
		return ids[0]
	}
	if owner != nil {
		if current, ok := owner(requestPath); ok && slices.Contains(ids, current) {
			return current
		}
	}
	return slices.Min(ids)
}
