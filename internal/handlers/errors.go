package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
)

func handleError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"field":   validationErr.Field,
			"details": validationErr.Details,
		})
		return
	}

	if isConflict(err) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	if errors.Is(err, apperrors.ErrUpstream) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service unavailable"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func isConflict(err error) bool {
	return errors.Is(err, apperrors.ErrSectionLocked) ||
		errors.Is(err, apperrors.ErrSubmitNotReady) ||
		errors.Is(err, apperrors.ErrAlreadySubmitting)
}

// respond renders snap. Errors that come with a snapshot keep the view so
// the page can show warnings and inline field errors.
func (h *Handlers) respond(c *gin.Context, okStatus int, snap *service.Snapshot, err error) {
	if snap == nil {
		if err == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		handleError(c, err)
		return
	}

	status := okStatus
	switch {
	case err == nil, apperrors.IsValidation(err):
	case isConflict(err):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrUpstream):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, h.renderer.Render(snap))
}
