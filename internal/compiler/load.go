package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/amenk/import-product/internal/ir"
)

// LoadDir builds the CUE package in dir and returns its value together with
// the number of .cue files found.
func LoadDir(dir string) (cue.Value, int, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return cue.Value{}, 0, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, len(files), fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, len(files), fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, len(files), formatCUEError(err)
	}
	return value, len(files), nil
}

// LoadKindsDir loads, compiles and validates every kind in dir. Validation
// failures are returned as a single error listing each problem.
func LoadKindsDir(dir string) ([]ir.Convention, error) {
	value, _, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	convs, err := CompileKinds(value)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return nil, fmt.Errorf("no kinds defined in %s", dir)
	}
	if errs := Validate(convs); len(errs) > 0 {
		return nil, fmt.Errorf("invalid kinds in %s: %v", dir, errs)
	}
	return convs, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
