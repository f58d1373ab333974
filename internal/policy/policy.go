// Package policy answers whether an actor may perform an operation on an artwork.
// Every function is pure: it reads the actor's role and the record, nothing else.
package policy

import (
	"github.com/indigenous-art-atlas/internal/models"
)

// IsAuthenticated reports whether the caller is a known, active actor
func IsAuthenticated(actor *models.Actor) bool {
	return actor != nil && actor.Active
}

// CanSubmit reports whether the actor may submit new artworks
func CanSubmit(actor *models.Actor) bool {
	return IsAuthenticated(actor)
}

// CanModerate reports whether the actor may approve, reject or delete artworks
func CanModerate(actor *models.Actor) bool {
	return actor.IsAdmin()
}

// CanResolveFlag reports whether the actor may resolve, delete or list flags
func CanResolveFlag(actor *models.Actor) bool {
	return actor.IsAdmin()
}

// CanManageUsers reports whether the actor may list and (de)activate accounts
func CanManageUsers(actor *models.Actor) bool {
	return actor.IsAdmin()
}

// CanViewStatus reports whether the actor may list artworks in the given status
func CanViewStatus(actor *models.Actor, status models.ArtworkStatus) bool {
	return status == models.StatusApproved || actor.IsAdmin()
}

// IsOwner reports whether the actor submitted the artwork
func IsOwner(actor *models.Actor, art *models.Artwork) bool {
	return IsAuthenticated(actor) && art.SubmittedBy == actor.ID
}

// CanView reports whether the artwork's existence may be disclosed to the actor
func CanView(actor *models.Actor, art *models.Artwork) bool {
	return art.Status == models.StatusApproved || actor.IsAdmin() || IsOwner(actor, art)
}

// CanEdit allows the owner to edit while the record is pending; administrators always
func CanEdit(actor *models.Actor, art *models.Artwork) bool {
	if actor.IsAdmin() {
		return true
	}
	return IsOwner(actor, art) && art.Status == models.StatusPending
}

// CanAttachImage reports whether the actor may add image references to the artwork
func CanAttachImage(actor *models.Actor, art *models.Artwork) bool {
	return actor.IsAdmin() || IsOwner(actor, art)
}

// CanFlag reports whether the actor may file a flag against the artwork.
// Anonymous callers are allowed.
func CanFlag(actor *models.Actor, art *models.Artwork) bool {
	return art.Status == models.StatusApproved || actor.IsAdmin()
}

// CanViewExactLocation reports whether precise coordinates may be shown
func CanViewExactLocation(actor *models.Actor, art *models.Artwork) bool {
	return !art.Location.Sensitive || actor.IsAdmin() || IsOwner(actor, art)
}
