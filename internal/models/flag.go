package models

import (
	"time"
)

// FlagReason is the closed set of reasons a flag can be filed for
type FlagReason string

const (
	ReasonInappropriate       FlagReason = "inappropriate"
	ReasonInaccurate          FlagReason = "inaccurate"
	ReasonCulturalSensitivity FlagReason = "cultural-sensitivity"
	ReasonOther               FlagReason = "other"
)

// ValidFlagReasons defines allowed flag reasons
var ValidFlagReasons = map[FlagReason]bool{
	ReasonInappropriate:       true,
	ReasonInaccurate:          true,
	ReasonCulturalSensitivity: true,
	ReasonOther:               true,
}

// FlagStatus tracks whether a flag still needs attention
type FlagStatus string

const (
	FlagStatusOpen     FlagStatus = "open"
	FlagStatusResolved FlagStatus = "resolved"
)

// ParseFlagStatus converts a query value; empty means open
func ParseFlagStatus(s string) (*FlagStatus, error) {
	switch s {
	case "", string(FlagStatusOpen):
		status := FlagStatusOpen
		return &status, nil
	case string(FlagStatusResolved):
		status := FlagStatusResolved
		return &status, nil
	case "all":
		return nil, nil
	}
	return nil, NewValidationError("status", "status must be one of: open, resolved, all", s)
}

// Placeholders used when a flag's references cannot be resolved
const (
	UnknownDisplayName   = "Unknown"
	AnonymousDisplayName = "Anonymous"
)

// Flag is a community report of concern against an artwork
type Flag struct {
	ID           int64      `json:"flag_id"`
	ArtworkID    int64      `json:"artwork_id"`
	ReporterID   *int64     `json:"reported_by"`
	Reason       FlagReason `json:"reason"`
	Details      string     `json:"details,omitempty"`
	Status       FlagStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_date,omitempty"`
	ResolvedBy   *int64     `json:"resolved_by,omitempty"`
	ArtworkTitle string     `json:"artwork_title,omitempty"`
	ReporterName string     `json:"reporter_name,omitempty"`
}
