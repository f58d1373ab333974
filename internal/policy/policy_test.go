package policy

import (
	"math"
	"testing"

	"github.com/indigenous-art-atlas/internal/models"
)

var (
	admin       = &models.Actor{ID: 1, Role: models.RoleAdmin, Active: true}
	contributor = &models.Actor{ID: 2, Role: models.RoleContributor, Active: true}
	visitor     = &models.Actor{ID: 3, Role: models.RoleVisitor, Active: true}
	inactive    = &models.Actor{ID: 4, Role: models.RoleAdmin, Active: false}
)

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		name         string
		actor        *models.Actor
		submit       bool
		moderate     bool
		resolveFlag  bool
		viewPending  bool
		viewApproved bool
	}{
		{"anonymous", nil, false, false, false, false, true},
		{"visitor", visitor, true, false, false, false, true},
		{"contributor", contributor, true, false, false, false, true},
		{"admin", admin, true, true, true, true, true},
		{"inactive admin", inactive, false, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanSubmit(tt.actor); got != tt.submit {
				t.Errorf("CanSubmit() = %v, want %v", got, tt.submit)
			}
			if got := CanModerate(tt.actor); got != tt.moderate {
				t.Errorf("CanModerate() = %v, want %v", got, tt.moderate)
			}
			if got := CanResolveFlag(tt.actor); got != tt.resolveFlag {
				t.Errorf("CanResolveFlag() = %v, want %v", got, tt.resolveFlag)
			}
			if got := CanViewStatus(tt.actor, models.StatusPending); got != tt.viewPending {
				t.Errorf("CanViewStatus(pending) = %v, want %v", got, tt.viewPending)
			}
			if got := CanViewStatus(tt.actor, models.StatusApproved); got != tt.viewApproved {
				t.Errorf("CanViewStatus(approved) = %v, want %v", got, tt.viewApproved)
			}
		})
	}
}

func TestRecordPredicates(t *testing.T) {
	pending := &models.Artwork{ID: 10, SubmittedBy: contributor.ID, Status: models.StatusPending}
	approved := &models.Artwork{ID: 11, SubmittedBy: contributor.ID, Status: models.StatusApproved}

	if CanView(visitor, pending) {
		t.Error("visitor should not see another user's pending artwork")
	}
	if !CanView(contributor, pending) {
		t.Error("owner should see their pending artwork")
	}
	if !CanView(nil, approved) {
		t.Error("anyone should see approved artwork")
	}
	if !CanEdit(contributor, pending) {
		t.Error("owner should edit pending artwork")
	}
	if CanEdit(contributor, approved) {
		t.Error("owner should not edit approved artwork")
	}
	if !CanEdit(admin, approved) {
		t.Error("admin should edit any artwork")
	}
	if CanAttachImage(visitor, approved) {
		t.Error("visitor should not attach images to another user's artwork")
	}
	if !CanFlag(nil, approved) {
		t.Error("anonymous callers should flag approved artwork")
	}
	if CanFlag(contributor, pending) {
		t.Error("pending artwork is not flaggable by non-admins")
	}
}

func TestLocationObfuscator_Snap(t *testing.T) {
	o := NewLocationObfuscator(0.5)

	tests := []struct {
		lat, lon         float64
		wantLat, wantLon float64
	}{
		{-12.4634, 130.8456, -12.25, 130.75},
		{0.1, -0.1, 0.25, -0.25},
		{90, 180, 90, 180},
		{-90, -180, -89.75, -179.75},
	}

	for _, tt := range tests {
		lat, lon := o.Snap(tt.lat, tt.lon)
		if math.Abs(lat-tt.wantLat) > 1e-9 || math.Abs(lon-tt.wantLon) > 1e-9 {
			t.Errorf("Snap(%v, %v) = (%v, %v), want (%v, %v)", tt.lat, tt.lon, lat, lon, tt.wantLat, tt.wantLon)
		}
	}
}

func TestLocationObfuscator_Apply(t *testing.T) {
	o := NewLocationObfuscator(0)
	if o.CellDegrees() != DefaultObfuscationDegrees {
		t.Fatalf("expected default cell size, got %v", o.CellDegrees())
	}

	newArt := func(sensitive bool) *models.Artwork {
		lat, lon := -12.4634, 130.8456
		return &models.Artwork{
			SubmittedBy: contributor.ID,
			Status:      models.StatusApproved,
			Location:    models.Location{Latitude: &lat, Longitude: &lon, Sensitive: sensitive},
		}
	}

	tests := []struct {
		name       string
		actor      *models.Actor
		sensitive  bool
		obfuscated bool
	}{
		{"public location for anonymous", nil, false, false},
		{"sensitive location for anonymous", nil, true, true},
		{"sensitive location for visitor", visitor, true, true},
		{"sensitive location for owner", contributor, true, false},
		{"sensitive location for admin", admin, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := newArt(tt.sensitive)
			o.Apply(tt.actor, art)
			if art.Location.Obfuscated != tt.obfuscated {
				t.Fatalf("Obfuscated = %v, want %v", art.Location.Obfuscated, tt.obfuscated)
			}
			exact := *art.Location.Latitude == -12.4634 && *art.Location.Longitude == 130.8456
			if exact == tt.obfuscated {
				t.Errorf("unexpected coordinates (%v, %v)", *art.Location.Latitude, *art.Location.Longitude)
			}
		})
	}

	// Stable across reads
	a, b := newArt(true), newArt(true)
	o.Apply(nil, a)
	o.Apply(nil, b)
	if *a.Location.Latitude != *b.Location.Latitude || *a.Location.Longitude != *b.Location.Longitude {
		t.Error("obfuscated coordinates should not vary between reads")
	}
}
