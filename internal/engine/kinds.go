package engine

import (
	"fmt"
	"slices"

	"github.com/amenk/import-product/internal/ir"
)

// Kinds maps entity types to their conventions.
// It is immutable after construction and safe for concurrent use.
type Kinds struct {
	byType map[string]ir.Convention
	types  []string
}

// NewKinds builds a registry from conventions. Entity types must be unique
// and non-empty.
func NewKinds(convs ...ir.Convention) (*Kinds, error) {
	k := &Kinds{byType: make(map[string]ir.Convention, len(convs))}
	for _, c := range convs {
		if c.EntityType == "" {
			return nil, fmt.Errorf("convention has empty entity type")
		}
		if _, dup := k.byType[c.EntityType]; dup {
			return nil, fmt.Errorf("duplicate convention for entity type %q", c.EntityType)
		}
		k.byType[c.EntityType] = c
		k.types = append(k.types, c.EntityType)
	}
	slices.Sort(k.types)
	return k, nil
}

// DefaultKinds returns a registry holding only the product convention.
func DefaultKinds() *Kinds {
	k, err := NewKinds(ir.DefaultProductConvention())
	if err != nil {
		panic(err)
	}
	return k
}

// Lookup returns the convention for an entity type.
func (k *Kinds) Lookup(entityType string) (ir.Convention, error) {
	c, ok := k.byType[entityType]
	if !ok {
		return ir.Convention{}, &RuntimeError{
			Code:    ErrCodeUnknownKind,
			Message: fmt.Sprintf("no convention registered for entity type %q", entityType),
			Details: map[string]string{"entity_type": entityType},
		}
	}
	return c, nil
}

// Types returns the registered entity types in sorted order.
func (k *Kinds) Types() []string {
	return slices.Clone(k.types)
}
