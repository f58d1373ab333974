package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/service"
	"github.com/rs/zerolog"
)

// ArtworkHandler handles public catalog, submission and flag filing endpoints
type ArtworkHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArtworkHandler creates a new ArtworkHandler
func NewArtworkHandler(services *service.Services, log zerolog.Logger) *ArtworkHandler {
	return &ArtworkHandler{
		services: services,
		log:      log.With().Str("handler", "artwork").Logger(),
	}
}

// List handles GET /api/artworks
func (h *ArtworkHandler) List(c *gin.Context) {
	var query models.ArtworkQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, h.log, models.NewValidationError("query", "invalid query parameters", nil))
		return
	}

	artworks, err := h.services.Catalog.List(c.Request.Context(), actorFrom(c), query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "artworks": artworks, "count": len(artworks)})
}

// Get handles GET /api/artworks/:id
func (h *ArtworkHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	artwork, err := h.services.Catalog.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "artwork": artwork, "images": artwork.Images})
}

// Submit handles POST /api/artworks
func (h *ArtworkHandler) Submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	artwork, err := h.services.Submission.Submit(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"artwork_id": artwork.ID,
		"artwork":    artwork,
		"message":    "Artwork submitted for moderation",
	})
}

// Edit handles PATCH /api/artworks/:id
func (h *ArtworkHandler) Edit(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.EditRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	artwork, err := h.services.Catalog.Edit(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "artwork": artwork})
}

// AttachImage handles POST /api/artworks/:id/images
func (h *ArtworkHandler) AttachImage(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.ImageRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	image, err := h.services.Catalog.AttachImage(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "image": image})
}

// FileFlag handles POST /api/artworks/:id/flags
func (h *ArtworkHandler) FileFlag(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.FlagRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	flag, err := h.services.Flags.File(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "flag": flag})
}

// Taxonomies handles GET /api/taxonomies
func (h *ArtworkHandler) Taxonomies(c *gin.Context) {
	taxonomies, err := h.services.Catalog.Taxonomies(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"art_types": taxonomies.ArtTypes,
		"periods":   taxonomies.Periods,
		"regions":   taxonomies.Regions,
	})
}

// Stats handles GET /api/stats
func (h *ArtworkHandler) Stats(c *gin.Context) {
	stats, err := h.services.Catalog.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
