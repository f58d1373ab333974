package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/service"
	"github.com/rs/zerolog"
)

// AdminHandler handles account administration endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.services.Admin.ListUsers(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// SetUserActive handles PATCH /api/admin/users/:id
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.UserStatusRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.services.Admin.SetUserActive(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
