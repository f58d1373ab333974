package policy

import (
	"math"

	"github.com/indigenous-art-atlas/internal/models"
)

// DefaultObfuscationDegrees is the grid cell size used for sensitive locations
const DefaultObfuscationDegrees = 0.5

// LocationObfuscator hides the exact coordinates of sensitive locations by
// snapping them to the centre of a fixed grid cell. The result is stable across reads.
type LocationObfuscator struct {
	cell float64
}

// NewLocationObfuscator creates an obfuscator; non-positive sizes use the default
func NewLocationObfuscator(cellDegrees float64) *LocationObfuscator {
	if cellDegrees <= 0 {
		cellDegrees = DefaultObfuscationDegrees
	}
	return &LocationObfuscator{cell: cellDegrees}
}

// CellDegrees returns the grid cell size
func (o *LocationObfuscator) CellDegrees() float64 {
	return o.cell
}

// Snap returns the centre of the grid cell containing lat/lon
func (o *LocationObfuscator) Snap(lat, lon float64) (float64, float64) {
	return clamp(o.snap(lat), -90, 90), clamp(o.snap(lon), -180, 180)
}

// Apply rewrites art's coordinates in place when the actor may not see them exactly.
// Callers pass a copy, never a stored record.
func (o *LocationObfuscator) Apply(actor *models.Actor, art *models.Artwork) {
	if art == nil || !art.Location.HasCoordinates() || CanViewExactLocation(actor, art) {
		return
	}
	lat, lon := o.Snap(*art.Location.Latitude, *art.Location.Longitude)
	art.Location.Latitude = &lat
	art.Location.Longitude = &lon
	art.Location.Obfuscated = true
}

func (o *LocationObfuscator) snap(v float64) float64 {
	return (math.Floor(v/o.cell) + 0.5) * o.cell
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
