package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/indigenous-art-atlas/internal/models"
)

// artworkColumns selects an artwork with its taxonomy names, submitter and primary image.
// Scanned by scanArtwork.
const artworkColumns = `
	a.id, a.title, a.description, a.artist_name, a.indigenous_community,
	a.creation_technique, a.materials_used, a.cultural_significance,
	t.code, t.name, pe.code, pe.name, rg.code, rg.name,
	a.latitude, a.longitude, a.location_name, a.country, a.is_sensitive_location,
	a.submitted_by, COALESCE(u.username, ''), a.submitted_at, a.status,
	a.approved_at, a.rejected_at, a.rejection_reason, a.moderation_notes,
	a.view_count, a.updated_at,
	COALESCE((
		SELECT ai.image_path FROM artwork_images ai
		WHERE ai.artwork_id = a.id
		ORDER BY ai.is_primary DESC, ai.display_order, ai.id
		LIMIT 1
	), '')`

const artworkJoins = `
	FROM artworks a
	LEFT JOIN art_types t ON t.id = a.art_type_id
	LEFT JOIN art_periods pe ON pe.id = a.period_id
	LEFT JOIN regions rg ON rg.id = a.region_id
	LEFT JOIN users u ON u.id = a.submitted_by`

// buildArtworkWhere composes the conjunctive catalog filter.
// Placeholders are numbered from startArg.
func buildArtworkWhere(filter models.ArtworkFilter, startArg int) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argNum := startArg

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argNum))
		args = append(args, string(*filter.Status))
		argNum++
	}

	// Any of title, description, artist name; backslash is the default LIKE escape
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(a.title ILIKE $%[1]d OR a.description ILIKE $%[1]d OR COALESCE(a.artist_name, '') ILIKE $%[1]d)", argNum))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argNum++
	}

	if filter.ArtType != "" {
		conditions = append(conditions, fmt.Sprintf("t.code = $%d", argNum))
		args = append(args, filter.ArtType)
		argNum++
	}

	if filter.Period != "" {
		conditions = append(conditions, fmt.Sprintf("pe.code = $%d", argNum))
		args = append(args, filter.Period)
		argNum++
	}

	if filter.Region != "" {
		conditions = append(conditions, fmt.Sprintf("rg.code = $%d", argNum))
		args = append(args, filter.Region)
		argNum++
	}

	if filter.SubmittedBy != nil {
		conditions = append(conditions, fmt.Sprintf("a.submitted_by = $%d", argNum))
		args = append(args, *filter.SubmittedBy)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

// buildArtworkOrderBy maps a sort key onto a fixed ORDER BY clause; ties break on id.
// Titles compare bytewise so the database orders them as SortArtworks does.
func buildArtworkOrderBy(s models.ArtworkSort) string {
	switch s {
	case models.SortDateAsc:
		return "ORDER BY a.submitted_at ASC, a.id ASC"
	case models.SortTitleAsc:
		return `ORDER BY LOWER(a.title) COLLATE "C" ASC, a.id ASC`
	case models.SortTitleDesc:
		return `ORDER BY LOWER(a.title) COLLATE "C" DESC, a.id ASC`
	default:
		return "ORDER BY a.submitted_at DESC, a.id ASC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// MatchArtwork reports whether art satisfies filter, mirroring buildArtworkWhere
// for stores that filter in memory
func MatchArtwork(art *models.Artwork, filter models.ArtworkFilter) bool {
	if filter.Status != nil && art.Status != *filter.Status {
		return false
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		artist := ""
		if art.ArtistName != nil {
			artist = *art.ArtistName
		}
		if !strings.Contains(strings.ToLower(art.Title), term) &&
			!strings.Contains(strings.ToLower(art.Description), term) &&
			!strings.Contains(strings.ToLower(artist), term) {
			return false
		}
	}
	if filter.ArtType != "" && (art.ArtType == nil || art.ArtType.Code != filter.ArtType) {
		return false
	}
	if filter.Period != "" && (art.Period == nil || art.Period.Code != filter.Period) {
		return false
	}
	if filter.Region != "" && (art.Region == nil || art.Region.Code != filter.Region) {
		return false
	}
	if filter.SubmittedBy != nil && art.SubmittedBy != *filter.SubmittedBy {
		return false
	}
	return true
}

// SortArtworks orders arts in place, mirroring buildArtworkOrderBy
func SortArtworks(arts []*models.Artwork, s models.ArtworkSort) {
	sort.SliceStable(arts, func(i, j int) bool {
		a, b := arts[i], arts[j]
		switch s {
		case models.SortDateAsc:
			if !a.SubmittedAt.Equal(b.SubmittedAt) {
				return a.SubmittedAt.Before(b.SubmittedAt)
			}
		case models.SortTitleAsc, models.SortTitleDesc:
			ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if ta != tb {
				if s == models.SortTitleAsc {
					return ta < tb
				}
				return ta > tb
			}
		default:
			if !a.SubmittedAt.Equal(b.SubmittedAt) {
				return a.SubmittedAt.After(b.SubmittedAt)
			}
		}
		return a.ID < b.ID
	})
}
