package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amenk/import-product/internal/engine"
)

// rowsFile is the import file read by reconcile:
//
//	rows:
//	  - {entity_id: 61413, url_key: bruno-compete-hoodie, store_id: 1}
//	  - {entity_type: cms-page, entity_id: 7, url_key: about-us, store_id: 1}
type rowsFile struct {
	Rows []engine.Row `yaml:"rows"`
}

// loadRows reads an import file. Rows without an entity type are products.
// Unknown fields are rejected.
func loadRows(path string) ([]engine.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows file: %w", err)
	}

	var f rowsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse rows file %s: %w", path, err)
	}

	for i := range f.Rows {
		r := &f.Rows[i]
		if r.EntityType == "" {
			r.EntityType = "product"
		}
		if r.EntityID <= 0 {
			return nil, fmt.Errorf("rows[%d]: entity_id must be positive", i)
		}
		if r.StoreID <= 0 {
			return nil, fmt.Errorf("rows[%d]: store_id must be positive", i)
		}
	}
	return f.Rows, nil
}
