package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/rs/zerolog"
)

func errorBody(code, message string) gin.H {
	return gin.H{"success": false, "code": code, "message": message}
}

// respondError maps the error taxonomy onto HTTP statuses. Unexpected errors
// are logged and reported without detail.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		body := errorBody("validation_error", "validation failed")
		body["errors"] = verrs
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "authentication required"))
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, errorBody("forbidden", "insufficient permissions"))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not_found", "resource not found"))
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, errorBody("invalid_transition", "artwork is not pending moderation"))
	case errors.Is(err, models.ErrInconsistency):
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("Inconsistent write, operator attention required")
		c.JSON(http.StatusInternalServerError, errorBody("inconsistency", "the operation may have partially completed"))
	default:
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, errorBody("internal", "internal server error"))
	}
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, name+" must be a positive integer", raw)
	}
	return id, nil
}

// bindJSON decodes the request body, reporting malformed JSON as a validation error
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return models.NewValidationError("body", "invalid JSON body", nil)
	}
	return nil
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.ContentLength == 0 || c.Request.Body == nil {
		return nil
	}
	// Chunked requests report an unknown length; an empty one decodes to io.EOF
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return models.NewValidationError("body", "invalid JSON body", nil)
	}
	return nil
}
