package models

import (
	"fmt"
	"time"
)

// ArtworkStatus is the moderation state of an art record
type ArtworkStatus string

const (
	StatusPending  ArtworkStatus = "pending"
	StatusApproved ArtworkStatus = "approved"
	StatusRejected ArtworkStatus = "rejected"
)

// ValidStatuses defines allowed artwork statuses
var ValidStatuses = map[ArtworkStatus]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

// ParseArtworkStatus converts a query/form value into an ArtworkStatus
func ParseArtworkStatus(s string) (ArtworkStatus, error) {
	status := ArtworkStatus(s)
	if !ValidStatuses[status] {
		return "", NewValidationError("status", "status must be one of: pending, approved, rejected", s)
	}
	return status, nil
}

// IsTerminal reports whether no further moderation transition is possible
func (s ArtworkStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// TaxonomyRef is the compact form of a taxonomy entry embedded in an artwork
type TaxonomyRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Location describes where an artwork can be found
type Location struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Name       string   `json:"location_name"`
	Country    string   `json:"country"`
	Sensitive  bool     `json:"is_sensitive_location"`
	Obfuscated bool     `json:"obfuscated,omitempty"`
}

// HasCoordinates reports whether both coordinates are present
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Artwork represents one catalog entry (an art record)
type Artwork struct {
	ID                   int64          `json:"artwork_id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	ArtistName           *string        `json:"artist_name"`
	Community            *string        `json:"indigenous_community"`
	CreationTechnique    string         `json:"creation_technique"`
	MaterialsUsed        string         `json:"materials_used"`
	CulturalSignificance string         `json:"cultural_significance"`
	ArtType              *TaxonomyRef   `json:"art_type"`
	Period               *TaxonomyRef   `json:"period"`
	Region               *TaxonomyRef   `json:"region"`
	Location             Location       `json:"location"`
	SubmittedBy          int64          `json:"submitted_by"`
	SubmitterUsername    string         `json:"submitted_by_username,omitempty"`
	SubmittedAt          time.Time      `json:"submission_date"`
	Status               ArtworkStatus  `json:"status"`
	ApprovedAt           *time.Time     `json:"approved_date,omitempty"`
	RejectedAt           *time.Time     `json:"rejected_date,omitempty"`
	RejectionReason      *string        `json:"rejection_reason,omitempty"`
	ModerationNotes      string         `json:"moderation_notes,omitempty"`
	ViewCount            int64          `json:"view_count"`
	UpdatedAt            time.Time      `json:"updated_at"`
	PrimaryImage         string         `json:"primary_image,omitempty"`
	Images               []ArtworkImage `json:"images,omitempty"`
}

// Clone returns a deep copy so callers can alter presentation fields safely
func (a *Artwork) Clone() *Artwork {
	if a == nil {
		return nil
	}
	c := *a
	c.ArtistName = cloneString(a.ArtistName)
	c.Community = cloneString(a.Community)
	c.RejectionReason = cloneString(a.RejectionReason)
	c.ApprovedAt = cloneTime(a.ApprovedAt)
	c.RejectedAt = cloneTime(a.RejectedAt)
	c.Location.Latitude = cloneFloat(a.Location.Latitude)
	c.Location.Longitude = cloneFloat(a.Location.Longitude)
	if a.ArtType != nil {
		ref := *a.ArtType
		c.ArtType = &ref
	}
	if a.Period != nil {
		ref := *a.Period
		c.Period = &ref
	}
	if a.Region != nil {
		ref := *a.Region
		c.Region = &ref
	}
	if a.Images != nil {
		c.Images = append([]ArtworkImage(nil), a.Images...)
	}
	return &c
}

// ArtworkImage is an image reference produced by the upload collaborator
type ArtworkImage struct {
	ID           int64     `json:"image_id"`
	ArtworkID    int64     `json:"artwork_id"`
	ImagePath    string    `json:"image_path"`
	Caption      string    `json:"image_caption"`
	IsPrimary    bool      `json:"is_primary"`
	DisplayOrder int       `json:"display_order"`
	FileSize     int64     `json:"file_size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// ArtworkSort selects catalog ordering
type ArtworkSort string

const (
	SortDateDesc  ArtworkSort = "date-desc"
	SortDateAsc   ArtworkSort = "date-asc"
	SortTitleAsc  ArtworkSort = "title-asc"
	SortTitleDesc ArtworkSort = "title-desc"
)

// ParseArtworkSort converts a query value, defaulting to newest first
func ParseArtworkSort(s string) (ArtworkSort, error) {
	switch ArtworkSort(s) {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortTitleAsc, SortTitleDesc:
		return ArtworkSort(s), nil
	}
	return "", NewValidationError("sort", "sort must be one of: date-desc, date-asc, title-asc, title-desc", s)
}

// ArtworkFilter holds conjunctive catalog filters. Zero values mean "not applied";
// a nil Status means every status.
type ArtworkFilter struct {
	Status      *ArtworkStatus
	Search      string
	ArtType     string
	Period      string
	Region      string
	SubmittedBy *int64
	Sort        ArtworkSort
}

// ArtworkUpdate carries a partial edit of descriptive fields. Nil means unchanged.
// Empty strings on nullable columns clear them.
type ArtworkUpdate struct {
	Title                *string
	Description          *string
	ArtistName           *string
	Community            *string
	CreationTechnique    *string
	MaterialsUsed        *string
	CulturalSignificance *string
	ArtType              *string
	Period               *string
	Region               *string
	Latitude             *float64
	Longitude            *float64
	LocationName         *string
	Country              *string
	Sensitive            *bool
}

// IsEmpty reports whether the update changes nothing
func (u ArtworkUpdate) IsEmpty() bool {
	return u == ArtworkUpdate{}
}

// Transition describes a guarded moderation status change
type Transition struct {
	ArtworkID   int64
	From        ArtworkStatus
	To          ArtworkStatus
	Action      ModerationAction
	PerformedBy int64
	Notes       string
	At          time.Time
}

// Validate checks the transition follows the moderation state machine
func (t Transition) Validate() error {
	if t.From != StatusPending || !t.To.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.From, t.To)
	}
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
