package models

// Request types decoded at the HTTP boundary and checked once by the validation package

// SubmitRequest is the body of a new artwork submission
type SubmitRequest struct {
	Title                string   `json:"title" validate:"required,max=255"`
	Description          string   `json:"description" validate:"required,max=10000"`
	ArtistName           *string  `json:"artist_name" validate:"omitempty,max=255"`
	Community            *string  `json:"indigenous_community" validate:"omitempty,max=255"`
	CreationTechnique    string   `json:"creation_technique" validate:"max=5000"`
	MaterialsUsed        string   `json:"materials_used" validate:"max=5000"`
	CulturalSignificance string   `json:"cultural_significance" validate:"max=5000"`
	ArtType              string   `json:"art_type" validate:"omitempty,max=50"`
	Period               string   `json:"period" validate:"omitempty,max=50"`
	Region               string   `json:"region" validate:"omitempty,max=50"`
	Latitude             *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude            *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	LocationName         string   `json:"location_name" validate:"max=255"`
	Country              string   `json:"country" validate:"max=100"`
	Sensitive            bool     `json:"is_sensitive_location"`
}

// EditRequest is a partial update of an artwork's descriptive fields
type EditRequest struct {
	Title                *string  `json:"title" validate:"omitempty,max=255"`
	Description          *string  `json:"description" validate:"omitempty,max=10000"`
	ArtistName           *string  `json:"artist_name" validate:"omitempty,max=255"`
	Community            *string  `json:"indigenous_community" validate:"omitempty,max=255"`
	CreationTechnique    *string  `json:"creation_technique" validate:"omitempty,max=5000"`
	MaterialsUsed        *string  `json:"materials_used" validate:"omitempty,max=5000"`
	CulturalSignificance *string  `json:"cultural_significance" validate:"omitempty,max=5000"`
	ArtType              *string  `json:"art_type" validate:"omitempty,max=50"`
	Period               *string  `json:"period" validate:"omitempty,max=50"`
	Region               *string  `json:"region" validate:"omitempty,max=50"`
	Latitude             *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude            *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	LocationName         *string  `json:"location_name" validate:"omitempty,max=255"`
	Country              *string  `json:"country" validate:"omitempty,max=100"`
	Sensitive            *bool    `json:"is_sensitive_location"`
}

// Update converts the request into a store-level partial update
func (r *EditRequest) Update() ArtworkUpdate {
	return ArtworkUpdate{
		Title:                r.Title,
		Description:          r.Description,
		ArtistName:           r.ArtistName,
		Community:            r.Community,
		CreationTechnique:    r.CreationTechnique,
		MaterialsUsed:        r.MaterialsUsed,
		CulturalSignificance: r.CulturalSignificance,
		ArtType:              r.ArtType,
		Period:               r.Period,
		Region:               r.Region,
		Latitude:             r.Latitude,
		Longitude:            r.Longitude,
		LocationName:         r.LocationName,
		Country:              r.Country,
		Sensitive:            r.Sensitive,
	}
}

// ModerationRequest carries the administrator's notes for approve/reject
type ModerationRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// FlagRequest is the body of a community flag
type FlagRequest struct {
	Reason  string `json:"reason" validate:"required,flag_reason"`
	Details string `json:"details" validate:"max=2000"`
}

// ImageRequest is an image reference produced by the upload collaborator
type ImageRequest struct {
	ImagePath string `json:"image_path" validate:"required,max=500,image_ext"`
	Caption   string `json:"image_caption" validate:"max=255"`
	IsPrimary bool   `json:"is_primary"`
	FileSize  int64  `json:"file_size" validate:"gte=0"`
}

// UserStatusRequest toggles a user account on or off
type UserStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ArtworkQuery holds raw catalog query parameters
type ArtworkQuery struct {
	Status  string `form:"status"`
	Search  string `form:"search" validate:"max=200"`
	ArtType string `form:"art_type" validate:"max=50"`
	Period  string `form:"period" validate:"max=50"`
	Region  string `form:"region" validate:"max=50"`
	Sort    string `form:"sort"`
}
