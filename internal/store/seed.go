package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amenk/import-product/internal/ir"
)

// Fixture is catalog and rewrite state in the YAML layout used by
// `rewrites seed` and by harness scenarios.
type Fixture struct {
	Categories  []FixtureCategory   `yaml:"categories"`
	Roots       []FixtureRoot       `yaml:"roots"`
	Assignments []FixtureAssignment `yaml:"assignments"`
	Rewrites    []FixtureRewrite    `yaml:"rewrites"`
}

// FixtureCategory is one catalog_category row.
type FixtureCategory struct {
	ID       int64  `yaml:"id"`
	ParentID int64  `yaml:"parent_id"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
}

// FixtureRoot maps a store view to its root category.
type FixtureRoot struct {
	StoreID    int64 `yaml:"store_id"`
	CategoryID int64 `yaml:"category_id"`
}

// FixtureAssignment lists the categories of one entity, in position order.
type FixtureAssignment struct {
	EntityType string  `yaml:"entity_type"`
	EntityID   int64   `yaml:"entity_id"`
	Categories []int64 `yaml:"categories"`
}

// FixtureRewrite is one url_rewrite row. Redirect is "none" or "permanent"
// (or the numeric code). Metadata is stored verbatim, so legacy payloads
// can be seeded.
type FixtureRewrite struct {
	ID            *int64  `yaml:"id"`
	EntityType    string  `yaml:"entity_type"`
	EntityID      int64   `yaml:"entity_id"`
	RequestPath   string  `yaml:"request_path"`
	TargetPath    string  `yaml:"target_path"`
	Redirect      string  `yaml:"redirect"`
	StoreID       int64   `yaml:"store_id"`
	Description   *string `yaml:"description"`
	Autogenerated bool    `yaml:"autogenerated"`
	Metadata      *string `yaml:"metadata"`
}

// Record converts the fixture row to a RewriteRecord.
func (f FixtureRewrite) Record() (ir.RewriteRecord, error) {
	redirect, err := ir.ParseRedirectType(f.Redirect)
	if err != nil {
		return ir.RewriteRecord{}, fmt.Errorf("rewrite %q: %w", f.RequestPath, err)
	}
	entityType := f.EntityType
	if entityType == "" {
		entityType = "product"
	}
	return ir.RewriteRecord{
		ID:              f.ID,
		EntityType:      entityType,
		EntityID:        f.EntityID,
		RequestPath:     f.RequestPath,
		TargetPath:      f.TargetPath,
		RedirectType:    redirect,
		StoreID:         f.StoreID,
		Description:     f.Description,
		IsAutogenerated: f.Autogenerated,
		Metadata:        f.Metadata,
	}, nil
}

// LoadFixture parses a fixture file. Unknown keys are rejected.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	var fx Fixture
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &fx, nil
}

// SeedStats counts what Seed wrote.
type SeedStats struct {
	Categories  int `json:"categories"`
	Roots       int `json:"roots"`
	Assignments int `json:"assignments"`
	Rewrites    int `json:"rewrites"`
}

// Seed writes a fixture in one transaction. Categories, roots and
// assignments are upserted; rewrites are inserted with their fixture ids
// when given.
func (s *Store) Seed(ctx context.Context, fx *Fixture) (SeedStats, error) {
	var stats SeedStats
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range fx.Categories {
			cat := ir.Category{ID: c.ID, ParentID: c.ParentID, Name: c.Name, Path: c.Path}
			if err := upsertCategory(ctx, tx, cat); err != nil {
				return fmt.Errorf("category %d: %w", c.ID, err)
			}
			stats.Categories++
		}
		for _, r := range fx.Roots {
			if err := setRootCategory(ctx, tx, r.StoreID, r.CategoryID); err != nil {
				return fmt.Errorf("root of store %d: %w", r.StoreID, err)
			}
			stats.Roots++
		}
		for _, a := range fx.Assignments {
			entityType := a.EntityType
			if entityType == "" {
				entityType = "product"
			}
			if err := assignCategories(ctx, tx, entityType, a.EntityID, a.Categories); err != nil {
				return fmt.Errorf("assignments of %s %d: %w", entityType, a.EntityID, err)
			}
			stats.Assignments++
		}
		for _, fr := range fx.Rewrites {
			rec, err := fr.Record()
			if err != nil {
				return err
			}
			if _, err := insertRewrite(ctx, tx, rec, true); err != nil {
				return fmt.Errorf("rewrite %q: %w", rec.RequestPath, err)
			}
			stats.Rewrites++
		}
		return nil
	})
	if err != nil {
		return SeedStats{}, fmt.Errorf("seed: %w", err)
	}
	return stats, nil
}
