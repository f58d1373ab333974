package repository

import (
	"context"
	"fmt"

	"github.com/indigenous-art-atlas/internal/database"
	"github.com/indigenous-art-atlas/internal/models"
)

// taxonomyRepo reads art_types, art_periods and regions
type taxonomyRepo struct {
	db *database.DB
}

// NewTaxonomyRepo creates a new taxonomy repository
func NewTaxonomyRepo(db *database.DB) TaxonomyRepository {
	return &taxonomyRepo{db: db}
}

// taxonomyTables whitelists the table behind each kind
var taxonomyTables = map[models.TaxonomyKind]string{
	models.TaxonomyArtTypes: "art_types",
	models.TaxonomyPeriods:  "art_periods",
	models.TaxonomyRegions:  "regions",
}

// List returns every entry of one classification table ordered by name
func (r *taxonomyRepo) List(ctx context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error) {
	table, ok := taxonomyTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown taxonomy %q", kind)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name, description FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	entries := make([]models.TaxonomyEntry, 0)
	for rows.Next() {
		var e models.TaxonomyEntry
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
