package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atlas_submissions_total",
		Help: "Artworks submitted for moderation.",
	})
	moderationTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_moderation_transitions_total",
		Help: "Moderation transitions by action and outcome.",
	}, []string{"action", "outcome"})
	artworksDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atlas_artworks_deleted_total",
		Help: "Artworks deleted by administrators.",
	})
	flagsFiledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_flags_filed_total",
		Help: "Community flags filed by reason.",
	}, []string{"reason"})
	flagsResolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atlas_flags_resolved_total",
		Help: "Flags moved from open to resolved.",
	})
	inconsistenciesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atlas_inconsistencies_total",
		Help: "Multi-step writes that may have partially completed.",
	})
	taxonomyCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atlas_taxonomy_cache_hits_total",
		Help: "Taxonomy cache hits.",
	})
	taxonomyCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atlas_taxonomy_cache_misses_total",
		Help: "Taxonomy cache misses.",
	})
)
