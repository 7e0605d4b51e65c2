package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmawad/partsync/internal/adapter/marketplace"
	domainErrors "github.com/rmawad/partsync/internal/domain/errors"
	"github.com/rmawad/partsync/internal/server/http/dto"
)

// writeError maps domain errors to HTTP responses shared by all handlers.
func writeError(c *gin.Context, err error) {
	if fieldErr, ok := domainErrors.AsFieldError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error: fieldErr.Message,
			Field: fieldErr.Field,
		})
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrOrderNotFound),
		errors.Is(err, domainErrors.ErrQuoteNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrQuoteExpired),
		errors.Is(err, domainErrors.ErrOrderNotPending),
		errors.Is(err, domainErrors.ErrNoRejectedReceipt):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, marketplace.ErrUnauthorized):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "marketplace rejected credentials"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
