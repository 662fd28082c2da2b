package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/pkg/httpx"
)

// cancelRequest — тело отмены: email подтверждает владельца заказа.
type cancelRequest struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var draft domain.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.orders.CreateOrder(ctx, draft)
	if err != nil {
		h.writeError(c, "CreateOrder", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getOrder(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, c.Param("number"), c.Query("email"))
	if err != nil {
		h.writeError(c, "GetOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) trackOrder(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	tracking, err := h.orders.TrackOrder(ctx, c.Param("number"), c.Query("email"))
	if err != nil {
		h.writeError(c, "TrackOrder", err)
		return
	}
	c.JSON(http.StatusOK, tracking)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.orders.CancelOrder(ctx, c.Param("number"), req.Email, req.Reason)
	if err != nil {
		h.writeError(c, "CancelOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	limit, offset := httpx.ParseLimitOffset(c, defaultPageLimit, maxPageLimit)
	filter := domain.OrderFilter{
		Status: domain.OrderStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Limit:  limit,
		Offset: offset,
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	list, err := h.orders.ListOrders(ctx, filter)
	if err != nil {
		h.writeError(c, "ListOrders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "limit": limit, "offset": offset})
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var upd domain.OrderStatusUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.orders.UpdateStatus(ctx, c.Param("number"), upd)
	if err != nil {
		h.writeError(c, "UpdateOrderStatus", err)
		return
	}
	c.JSON(http.StatusOK, order)
}
