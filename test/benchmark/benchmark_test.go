package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/indigenous-art-atlas/internal/config"
	"github.com/indigenous-art-atlas/internal/mocks"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/policy"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/indigenous-art-atlas/internal/service"
	"github.com/indigenous-art-atlas/internal/validation"
	"github.com/rs/zerolog"
)

var artTypes = []string{"rock-art", "mural", "carving", "textile", "painting"}

func benchConfig() *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{
			ObfuscationDegrees: 0.5,
			TaxonomyCacheTTL:   time.Minute,
			LogMaxLimit:        500,
		},
	}
}

// seedCatalog submits n artworks and approves every other one
func seedCatalog(b *testing.B, n int) (*service.Services, *models.Actor) {
	b.Helper()
	store := mocks.NewStore()
	svc := service.NewServices(mocks.NewRepositories(store), benchConfig(), zerolog.Nop())
	admin := store.AddUser("admin", models.RoleAdmin, true).Actor()
	contributor := store.AddUser("contributor", models.RoleContributor, true).Actor()

	ctx := context.Background()
	for i := 0; i < n; i++ {
		lat, lon := -30+float64(i%60)*0.1, 120+float64(i%40)*0.2
		art, err := svc.Submission.Submit(ctx, contributor, &models.SubmitRequest{
			Title:       fmt.Sprintf("Artwork %04d", i),
			Description: "Benchmark record",
			ArtType:     artTypes[i%len(artTypes)],
			Region:      "australia",
			Latitude:    &lat,
			Longitude:   &lon,
			Sensitive:   i%3 == 0,
		})
		if err != nil {
			b.Fatalf("submit failed: %v", err)
		}
		if i%2 == 0 {
			if _, err := svc.Moderation.Approve(ctx, admin, art.ID, ""); err != nil {
				b.Fatalf("approve failed: %v", err)
			}
		}
	}
	return svc, admin
}

// BenchmarkCatalogList benchmarks the public listing over an in-memory catalog
func BenchmarkCatalogList(b *testing.B) {
	svc, _ := seedCatalog(b, 1000)
	query := models.ArtworkQuery{Search: "artwork", ArtType: "mural", Sort: "title-asc"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svc.Catalog.List(context.Background(), nil, query); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkCatalogListParallel benchmarks concurrent listing by an administrator
func BenchmarkCatalogListParallel(b *testing.B) {
	svc, admin := seedCatalog(b, 1000)
	query := models.ArtworkQuery{Status: "all"}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.Catalog.List(context.Background(), admin, query); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchmarkSubmit benchmarks submission including its log entry
func BenchmarkSubmit(b *testing.B) {
	store := mocks.NewStore()
	svc := service.NewServices(mocks.NewRepositories(store), benchConfig(), zerolog.Nop())
	actor := store.AddUser("contributor", models.RoleContributor, true).Actor()
	req := &models.SubmitRequest{Title: "Shelter", Description: "Ochre figures", ArtType: "rock-art", Region: "australia"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svc.Submission.Submit(context.Background(), actor, req); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMatchArtwork benchmarks in-memory filter evaluation
func BenchmarkMatchArtwork(b *testing.B) {
	approved := models.StatusApproved
	artist := "Unknown"
	art := &models.Artwork{
		Title:       "Wandjina Gallery",
		Description: "Painted figures on a rock shelter ceiling",
		ArtistName:  &artist,
		Status:      models.StatusApproved,
		ArtType:     &models.TaxonomyRef{Code: "rock-art"},
		Region:      &models.TaxonomyRef{Code: "australia"},
	}
	filter := models.ArtworkFilter{Status: &approved, Search: "shelter", ArtType: "rock-art", Region: "australia"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		repository.MatchArtwork(art, filter)
	}
}

// BenchmarkValidateSubmit benchmarks submission validation
func BenchmarkValidateSubmit(b *testing.B) {
	v := validation.NewValidator()
	lat, lon := -17.3, 125.7
	req := &models.SubmitRequest{
		Title:       "Gwion Gwion",
		Description: "Fine-line figures",
		ArtType:     "rock-art",
		Latitude:    &lat,
		Longitude:   &lon,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := v.ValidateSubmit(req); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLocationObfuscation benchmarks coordinate snapping for sensitive records
func BenchmarkLocationObfuscation(b *testing.B) {
	o := policy.NewLocationObfuscator(0.5)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		lat, lon := -33.8688, 151.2093
		art := &models.Artwork{
			Status:   models.StatusApproved,
			Location: models.Location{Latitude: &lat, Longitude: &lon, Sensitive: true},
		}
		o.Apply(nil, art)
	}
}
