package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/repository"
)

// taxonomyCache keeps the classification tables in memory with a TTL.
// Entries are shared read-only slices.
type taxonomyCache struct {
	repo  repository.TaxonomyRepository
	cache *expirable.LRU[models.TaxonomyKind, []models.TaxonomyEntry]
}

func newTaxonomyCache(repo repository.TaxonomyRepository, ttl time.Duration) *taxonomyCache {
	return &taxonomyCache{
		repo:  repo,
		cache: expirable.NewLRU[models.TaxonomyKind, []models.TaxonomyEntry](len(models.TaxonomyKinds), nil, ttl),
	}
}

// Get returns one classification table
func (c *taxonomyCache) Get(ctx context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error) {
	if entries, ok := c.cache.Get(kind); ok {
		taxonomyCacheHitsTotal.Inc()
		return entries, nil
	}
	taxonomyCacheMissesTotal.Inc()

	entries, err := c.repo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	c.cache.Add(kind, entries)
	return entries, nil
}

// All returns every classification table
func (c *taxonomyCache) All(ctx context.Context) (*models.Taxonomies, error) {
	types, err := c.Get(ctx, models.TaxonomyArtTypes)
	if err != nil {
		return nil, err
	}
	periods, err := c.Get(ctx, models.TaxonomyPeriods)
	if err != nil {
		return nil, err
	}
	regions, err := c.Get(ctx, models.TaxonomyRegions)
	if err != nil {
		return nil, err
	}
	return &models.Taxonomies{ArtTypes: types, Periods: periods, Regions: regions}, nil
}

// Resolve maps a code onto its reference; empty codes resolve to nil.
// Unknown codes are a validation error on field.
func (c *taxonomyCache) Resolve(ctx context.Context, kind models.TaxonomyKind, field, code string) (*models.TaxonomyRef, error) {
	if code == "" {
		return nil, nil
	}
	entries, err := c.Get(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Code == code {
			return e.Ref(), nil
		}
	}
	return nil, models.NewValidationError(field, fmt.Sprintf("unknown %s code", field), code)
}
