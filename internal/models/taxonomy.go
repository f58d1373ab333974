package models

// TaxonomyKind names one of the closed classification tables
type TaxonomyKind string

const (
	TaxonomyArtTypes TaxonomyKind = "art_types"
	TaxonomyPeriods  TaxonomyKind = "art_periods"
	TaxonomyRegions  TaxonomyKind = "regions"
)

// TaxonomyKinds lists every classification table
var TaxonomyKinds = []TaxonomyKind{TaxonomyArtTypes, TaxonomyPeriods, TaxonomyRegions}

// TaxonomyEntry is one classification value
type TaxonomyEntry struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Ref returns the compact form embedded in artworks
func (e TaxonomyEntry) Ref() *TaxonomyRef {
	return &TaxonomyRef{Code: e.Code, Name: e.Name}
}

// Taxonomies groups all classification tables
type Taxonomies struct {
	ArtTypes []TaxonomyEntry `json:"art_types"`
	Periods  []TaxonomyEntry `json:"periods"`
	Regions  []TaxonomyEntry `json:"regions"`
}

// Stats summarises catalog and community activity
type Stats struct {
	ApprovedArtworks int `json:"approved_artworks"`
	PendingArtworks  int `json:"pending_artworks"`
	RejectedArtworks int `json:"rejected_artworks"`
	TotalUsers       int `json:"total_users"`
	ActiveUsers      int `json:"active_users"`
	OpenFlags        int `json:"open_flags"`
}
