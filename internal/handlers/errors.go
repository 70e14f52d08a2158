package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"unigang/annex/internal/catalog"
	"unigang/annex/internal/dashboard"
	"unigang/annex/internal/middleware"
	"unigang/annex/internal/models"
	"unigang/annex/internal/service"
)

// respondError maps service errors onto status codes and snake_case codes.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "fields": verr.Fields})
	case errors.Is(err, models.ErrTooManyImages):
		c.JSON(http.StatusBadRequest, gin.H{"error": "too_many_images", "max": models.MaxImages})
	case errors.Is(err, service.ErrInvalidPicture):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_picture"})
	case errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusForbidden, gin.H{"error": "wrong_password"})
	case errors.Is(err, service.ErrIdentityExchange):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity_exchange_failed"})
	case errors.Is(err, catalog.ErrListingNotFound), errors.Is(err, dashboard.ErrNotOwner):
		c.JSON(http.StatusNotFound, gin.H{"error": "listing_not_found"})
	case errors.Is(err, catalog.ErrDuplicateListing):
		c.JSON(http.StatusConflict, gin.H{"error": "listing_conflict"})
	case errors.Is(err, dashboard.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition"})
	case errors.Is(err, service.ErrAuthInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "auth_in_flight"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "request_cancelled"})
	default:
		middleware.LoggerFrom(c, h.log).Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error", "requestId": middleware.RequestIDFrom(c)})
	}
}

func (h HandlerSet) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "detail": err.Error()})
}
