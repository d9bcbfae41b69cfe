package compiler

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/amenk/import-product/internal/ir"
)

// Kind fields accepted in CUE. Anything else is a compile error.
var kindFields = []string{"entity_type", "target_prefix", "category_segment", "suffix"}

// DefaultCategorySegment is used when a kind omits category_segment.
const DefaultCategorySegment = "category"

// CompileKind parses a CUE value into a Convention.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the kind struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`kind: product: { target_prefix: "catalog/product/view/id", suffix: ".html" }`)
//	conv, err := CompileKind(v.LookupPath(cue.ParsePath("kind.product")))
//
// entity_type defaults to the struct label, category_segment to
// DefaultCategorySegment and suffix to "". target_prefix is required.
func CompileKind(v cue.Value) (*ir.Convention, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		if !slices.Contains(kindFields, iter.Label()) {
			return nil, &CompileError{
				Field:   iter.Label(),
				Message: fmt.Sprintf("unknown kind field, expected one of %v", kindFields),
				Pos:     iter.Value().Pos(),
			}
		}
	}

	conv := &ir.Convention{CategorySegment: DefaultCategorySegment}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		conv.EntityType = labels[len(labels)-1].Unquoted()
	}

	if s, ok, err := optionalString(v, "entity_type"); err != nil {
		return nil, err
	} else if ok {
		conv.EntityType = s
	}

	prefix, ok, err := optionalString(v, "target_prefix")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &CompileError{
			Field:   "target_prefix",
			Message: "target_prefix is required",
			Pos:     v.Pos(),
		}
	}
	conv.TargetPrefix = prefix

	if s, ok, err := optionalString(v, "category_segment"); err != nil {
		return nil, err
	} else if ok {
		conv.CategorySegment = s
	}

	if s, ok, err := optionalString(v, "suffix"); err != nil {
		return nil, err
	} else if ok {
		conv.Suffix = s
	}

	return conv, nil
}

// CompileKinds compiles every field of the top-level "kind" struct, in
// source order. A value without kinds yields an empty slice.
func CompileKinds(v cue.Value) ([]ir.Convention, error) {
	kindsVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindsVal.Exists() {
		return []ir.Convention{}, nil
	}

	iter, err := kindsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	convs := []ir.Convention{}
	for iter.Next() {
		conv, err := CompileKind(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("kind %s: %w", iter.Label(), err)
		}
		convs = append(convs, *conv)
	}
	return convs, nil
}

// optionalString reads a string field. ok is false when the field is absent.
func optionalString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	if fv.IncompleteKind() != cue.StringKind {
		return "", false, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be a string, got %v", fv.IncompleteKind()),
			Pos:     fv.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		// e.g. an unconstrained `string` with no concrete value
		return "", false, &CompileError{
			Field:   field,
			Message: "must be a concrete string",
			Pos:     fv.Pos(),
		}
	}
	return s, true, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
