package repository

import (
	"testing"
	"time"

	"github.com/indigenous-art-atlas/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildArtworkWhere(t *testing.T) {
	approved := models.StatusApproved
	submitter := int64(7)

	tests := []struct {
		name      string
		filter    models.ArtworkFilter
		startArg  int
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			name:      "empty filter",
			filter:    models.ArtworkFilter{},
			startArg:  1,
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "status only",
			filter:    models.ArtworkFilter{Status: &approved},
			startArg:  1,
			wantWhere: "WHERE a.status = $1",
			wantArgs:  []interface{}{"approved"},
		},
		{
			name:      "taxonomies numbered from start",
			filter:    models.ArtworkFilter{ArtType: "mural", Region: "africa"},
			startArg:  3,
			wantWhere: "WHERE t.code = $3 AND rg.code = $4",
			wantArgs:  []interface{}{"mural", "africa"},
		},
		{
			name:      "every criterion",
			filter:    models.ArtworkFilter{Status: &approved, Search: "ochre", ArtType: "rock-art", Period: "ancient", Region: "australia", SubmittedBy: &submitter},
			startArg:  1,
			wantWhere: "WHERE a.status = $1 AND (a.title ILIKE $2 OR a.description ILIKE $2 OR COALESCE(a.artist_name, '') ILIKE $2) AND t.code = $3 AND pe.code = $4 AND rg.code = $5 AND a.submitted_by = $6",
			wantArgs:  []interface{}{"approved", "%ochre%", "rock-art", "ancient", "australia", int64(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildArtworkWhere(tt.filter, tt.startArg)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildArtworkOrderBy(t *testing.T) {
	assert.Equal(t, "ORDER BY a.submitted_at DESC, a.id ASC", buildArtworkOrderBy(""))
	assert.Equal(t, "ORDER BY a.submitted_at DESC, a.id ASC", buildArtworkOrderBy(models.SortDateDesc))
	assert.Equal(t, "ORDER BY a.submitted_at ASC, a.id ASC", buildArtworkOrderBy(models.SortDateAsc))
	assert.Equal(t, `ORDER BY LOWER(a.title) COLLATE "C" ASC, a.id ASC`, buildArtworkOrderBy(models.SortTitleAsc))
	assert.Equal(t, `ORDER BY LOWER(a.title) COLLATE "C" DESC, a.id ASC`, buildArtworkOrderBy(models.SortTitleDesc))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}

func TestMatchArtwork(t *testing.T) {
	approved := models.StatusApproved
	pending := models.StatusPending
	owner := int64(4)
	other := int64(5)
	artist := "Emily Kame Kngwarreye"

	art := &models.Artwork{
		Title:       "Earth's Creation",
		Description: "Dotted canvas",
		ArtistName:  &artist,
		Status:      models.StatusApproved,
		ArtType:     &models.TaxonomyRef{Code: "painting"},
		Period:      &models.TaxonomyRef{Code: "contemporary"},
		SubmittedBy: owner,
	}

	tests := []struct {
		name   string
		filter models.ArtworkFilter
		want   bool
	}{
		{"empty", models.ArtworkFilter{}, true},
		{"status match", models.ArtworkFilter{Status: &approved}, true},
		{"status mismatch", models.ArtworkFilter{Status: &pending}, false},
		{"search title any case", models.ArtworkFilter{Search: "CREATION"}, true},
		{"search description", models.ArtworkFilter{Search: "canvas"}, true},
		{"search artist", models.ArtworkFilter{Search: "kngwarreye"}, true},
		{"search miss", models.ArtworkFilter{Search: "bark"}, false},
		{"search wildcard is literal", models.ArtworkFilter{Search: "%"}, false},
		{"art type", models.ArtworkFilter{ArtType: "painting"}, true},
		{"art type miss", models.ArtworkFilter{ArtType: "mural"}, false},
		{"period", models.ArtworkFilter{Period: "contemporary"}, true},
		{"region unset on record", models.ArtworkFilter{Region: "australia"}, false},
		{"submitter", models.ArtworkFilter{SubmittedBy: &owner}, true},
		{"other submitter", models.ArtworkFilter{SubmittedBy: &other}, false},
		{"conjunction fails on one", models.ArtworkFilter{Status: &approved, ArtType: "painting", Period: "ancient"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchArtwork(art, tt.filter))
		})
	}
}

func TestSortArtworks(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	arts := func() []*models.Artwork {
		return []*models.Artwork{
			{ID: 1, Title: "beta", SubmittedAt: base},
			{ID: 2, Title: "Alpha", SubmittedAt: base.Add(time.Hour)},
			{ID: 3, Title: "gamma", SubmittedAt: base},
			{ID: 4, Title: "alpha", SubmittedAt: base.Add(-time.Hour)},
		}
	}
	ids := func(list []*models.Artwork) []int64 {
		out := make([]int64, len(list))
		for i, a := range list {
			out[i] = a.ID
		}
		return out
	}

	tests := []struct {
		sort models.ArtworkSort
		want []int64
	}{
		{models.SortDateDesc, []int64{2, 1, 3, 4}},
		{models.SortDateAsc, []int64{4, 1, 3, 2}},
		{models.SortTitleAsc, []int64{2, 4, 1, 3}},
		{models.SortTitleDesc, []int64{3, 1, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			list := arts()
			SortArtworks(list, tt.sort)
			assert.Equal(t, tt.want, ids(list))
		})
	}
}

func TestSortArtworksComparesTitlesBytewise(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	list := []*models.Artwork{
		{ID: 1, Title: "ab", SubmittedAt: at},
		{ID: 2, Title: "a-c", SubmittedAt: at},
		{ID: 3, Title: "A B", SubmittedAt: at},
	}

	// ' ' (0x20) < '-' (0x2d) < 'b', the same order as COLLATE "C"
	SortArtworks(list, models.SortTitleAsc)
	got := []int64{list[0].ID, list[1].ID, list[2].ID}
	assert.Equal(t, []int64{3, 2, 1}, got)
	assert.Contains(t, buildArtworkOrderBy(models.SortTitleAsc), `COLLATE "C"`)
}
