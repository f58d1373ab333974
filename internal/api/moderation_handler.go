package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/service"
	"github.com/rs/zerolog"
)

// ModerationHandler handles the administrator moderation and flag endpoints
type ModerationHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(services *service.Services, log zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		services: services,
		log:      log.With().Str("handler", "moderation").Logger(),
	}
}

// ListByStatus handles GET /api/moderation/artworks?status=
func (h *ModerationHandler) ListByStatus(c *gin.Context) {
	status := c.DefaultQuery("status", string(models.StatusPending))

	artworks, err := h.services.Moderation.ListByStatus(c.Request.Context(), actorFrom(c), status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "artworks": artworks, "count": len(artworks)})
}

// Pending handles GET /api/moderation/pending
func (h *ModerationHandler) Pending(c *gin.Context) {
	artworks, err := h.services.Moderation.Pending(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "artworks": artworks, "count": len(artworks)})
}

// Approve handles POST /api/moderation/artworks/:id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.transition(c, h.services.Moderation.Approve, "Artwork approved")
}

// Reject handles POST /api/moderation/artworks/:id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.transition(c, h.services.Moderation.Reject, "Artwork rejected")
}

type transitionFunc func(ctx context.Context, actor *models.Actor, id int64, notes string) (*models.Artwork, error)

func (h *ModerationHandler) transition(c *gin.Context, apply transitionFunc, message string) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.ModerationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	artwork, err := apply(c.Request.Context(), actorFrom(c), id, req.Notes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "artwork": artwork})
}

// Delete handles DELETE /api/moderation/artworks/:id
func (h *ModerationHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.services.Moderation.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Artwork deleted"})
}

// Log handles GET /api/moderation/log?limit=
func (h *ModerationHandler) Log(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, h.log, models.NewValidationError("limit", "limit must be a non-negative integer", raw))
			return
		}
		limit = parsed
	}

	logs, err := h.services.Moderation.Log(c.Request.Context(), actorFrom(c), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "logs": logs})
}

// History handles GET /api/moderation/artworks/:id/log
func (h *ModerationHandler) History(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	logs, err := h.services.Moderation.History(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "logs": logs})
}

// ListFlags handles GET /api/moderation/flags?status=
func (h *ModerationHandler) ListFlags(c *gin.Context) {
	flags, err := h.services.Flags.List(c.Request.Context(), actorFrom(c), c.Query("status"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "flags": flags, "count": len(flags)})
}

// ResolveFlag handles POST /api/moderation/flags/:id/resolve
func (h *ModerationHandler) ResolveFlag(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	flag, err := h.services.Flags.Resolve(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "flag": flag})
}

// DeleteFlag handles DELETE /api/moderation/flags/:id
func (h *ModerationHandler) DeleteFlag(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	deleted, err := h.services.Flags.Delete(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": deleted})
}
