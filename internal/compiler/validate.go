package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/amenk/import-product/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Convention errors (E101-E109)
	ErrEntityTypeEmpty   = "E101" // entity type is required
	ErrTargetPrefixEmpty = "E102" // target prefix is required
	ErrInvalidSuffix     = "E103" // suffix must be empty or start with "."
	ErrDuplicateKind     = "E104" // two kinds share an entity type
	ErrInvalidSlashes    = "E105" // leading/trailing/double slashes in a path part
	ErrInvalidEntityType = "E106" // entity type has invalid characters
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled conventions.
// Returns all errors found (does not fail-fast).
// Supports a single Convention and a set of them; only a set can report
// duplicates.
func Validate(v any) []ValidationError {
	switch c := v.(type) {
	case *ir.Convention:
		return validateConvention(c, "")
	case ir.Convention:
		return validateConvention(&c, "")
	case []ir.Convention:
		return validateConventions(c)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// entityTypePattern: lowercase identifier, dashes and underscores allowed.
var entityTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func validateConvention(c *ir.Convention, prefix string) []ValidationError {
	var errs []ValidationError
	field := func(name string) string { return prefix + name }

	// E101 / E106
	switch {
	case strings.TrimSpace(c.EntityType) == "":
		errs = append(errs, ValidationError{
			Field:   field("entity_type"),
			Message: "entity type is required and must be non-empty",
			Code:    ErrEntityTypeEmpty,
		})
	case !entityTypePattern.MatchString(c.EntityType):
		errs = append(errs, ValidationError{
			Field:   field("entity_type"),
			Message: fmt.Sprintf("invalid entity type %q, expected lowercase letters, digits, '-' or '_'", c.EntityType),
			Code:    ErrInvalidEntityType,
		})
	}

	// E102
	if strings.TrimSpace(c.TargetPrefix) == "" {
		errs = append(errs, ValidationError{
			Field:   field("target_prefix"),
			Message: "target prefix is required and must be non-empty",
			Code:    ErrTargetPrefixEmpty,
		})
	} else if msg := slashProblem(c.TargetPrefix); msg != "" {
		errs = append(errs, ValidationError{
			Field:   field("target_prefix"),
			Message: fmt.Sprintf("target prefix %q %s", c.TargetPrefix, msg),
			Code:    ErrInvalidSlashes,
		})
	}

	// E105: the category segment is a single path component
	if strings.Contains(c.CategorySegment, "/") {
		errs = append(errs, ValidationError{
			Field:   field("category_segment"),
			Message: fmt.Sprintf("category segment %q must not contain '/'", c.CategorySegment),
			Code:    ErrInvalidSlashes,
		})
	}

	// E103
	if c.Suffix != "" && (!strings.HasPrefix(c.Suffix, ".") || strings.ContainsAny(c.Suffix, "/ ") || len(c.Suffix) < 2) {
		errs = append(errs, ValidationError{
			Field:   field("suffix"),
			Message: fmt.Sprintf("invalid suffix %q, expected empty or an extension like \".html\"", c.Suffix),
			Code:    ErrInvalidSuffix,
		})
	}

	return errs
}

func validateConventions(convs []ir.Convention) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int)

	for i := range convs {
		prefix := fmt.Sprintf("kinds[%d].", i)
		errs = append(errs, validateConvention(&convs[i], prefix)...)

		et := convs[i].EntityType
		if et == "" {
			continue
		}
		// E104
		if first, dup := seen[et]; dup {
			errs = append(errs, ValidationError{
				Field:   prefix + "entity_type",
				Message: fmt.Sprintf("duplicate entity type %q (first defined at kinds[%d])", et, first),
				Code:    ErrDuplicateKind,
			})
			continue
		}
		seen[et] = i
	}

	return errs
}

// slashProblem describes a path part that would produce malformed target
// paths, or returns "".
func slashProblem(s string) string {
	switch {
	case strings.HasPrefix(s, "/"):
		return "must not start with '/'"
	case strings.HasSuffix(s, "/"):
		return "must not end with '/'"
	case strings.Contains(s, "//"):
		return "must not contain '//'"
	}
	return ""
}
