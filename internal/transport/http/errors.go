package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/usecase"
	"github.com/Gunvolt24/checkout_gateway/pkg/validate"
)

// writeError — ошибка сервиса → HTTP-статус и тело {"error": "..."}.
func (h *Handler) writeError(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, validate.ErrInvalidProduct),
		errors.Is(err, usecase.ErrInvalidPayment),
		errors.Is(err, usecase.ErrInvalidShipment),
		errors.Is(err, validate.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, domain.ErrOrderState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrGateway):
		h.log.Warnf(ctx, "%s: %v", op, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream gateway error"})
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warnf(ctx, "%s timed out: %v", op, err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timeout"})
	default:
		h.log.Errorf(ctx, "%s failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
