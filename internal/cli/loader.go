package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/amenk/import-product/internal/compiler"
	"github.com/amenk/import-product/internal/engine"
	"github.com/amenk/import-product/internal/ir"
)

// LoadMode controls how errors are handled during kinds loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the kinds compiled from a directory.
type LoadResult struct {
	Kinds     []ir.Convention
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during kinds loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadKinds loads and compiles the CUE kinds of a directory.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadKinds(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("kinds directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing kinds directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := compiler.FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	value, fileCount, err := compiler.LoadDir(dir)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: compileErr.Message, Pos: compileErr.Pos}}
		}
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: fileCount,
	}

	var errs []error
	kindsVal := value.LookupPath(cue.ParsePath("kind"))
	if kindsVal.Exists() {
		iter, iterErr := kindsVal.Fields()
		if iterErr != nil {
			return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating kinds: %v", iterErr)}}
		}
		for iter.Next() {
			conv, compileErr := compiler.CompileKind(iter.Value())
			if compileErr != nil {
				errs = append(errs, convertCompileError(compileErr, "kind."+iter.Label()))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Kinds = append(result.Kinds, *conv)
		}
	}

	if len(result.Kinds) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no kinds found in " + dir})
	}

	return result, errs
}

// loadEngineKinds builds the kinds registry for the engine. An empty dir
// selects the built-in product convention.
func loadEngineKinds(dir string) (*engine.Kinds, error) {
	if dir == "" {
		return engine.DefaultKinds(), nil
	}
	result, errs := LoadKinds(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if verrs := compiler.Validate(result.Kinds); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return nil, &LoadError{Code: verrs[0].Code, Message: strings.Join(msgs, "; ")}
	}
	return engine.NewKinds(result.Kinds...)
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No CUE files found
	ErrCodeLoadFailed   = "E004" // CUE load failed
	ErrCodeNotFound     = "E005" // Path, run or rewrite not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeInvalidInput = "E007" // Bad rows file or flag values
	ErrCodeStore        = "E008" // Database error
	ErrCodeRedirectLoop = "E009" // Redirect chain loops or is too long
	ErrCodeBatchFailed  = "E010" // Rows failed or the batch was aborted
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "entity_type":
		return compiler.ErrEntityTypeEmpty
	case "target_prefix":
		return compiler.ErrTargetPrefixEmpty
	case "suffix":
		return compiler.ErrInvalidSuffix
	case "category_segment":
		return compiler.ErrInvalidSlashes
	default:
		return ErrCodeGeneric
	}
}
