package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

func (h *Handler) createPaymentOrder(c *gin.Context) {
	var req domain.PaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.checkout.CreatePaymentOrder(ctx, req)
	if err != nil {
		h.writeError(c, "CreatePaymentOrder", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) verifyPayment(c *gin.Context) {
	var v domain.PaymentVerification
	if err := c.ShouldBindJSON(&v); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	ok, err := h.checkout.VerifyPayment(ctx, v)
	if err != nil {
		h.writeError(c, "VerifyPayment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": ok, "order_id": v.OrderID, "payment_id": v.PaymentID})
}

func (h *Handler) createShipment(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, "cannot read body: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	out, err := h.checkout.CreateShipment(ctx, json.RawMessage(raw))
	if err != nil {
		h.writeError(c, "CreateShipment", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

func (h *Handler) trackShipment(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	out, err := h.checkout.TrackShipment(ctx, c.Param("awb"))
	if err != nil {
		h.writeError(c, "TrackShipment", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}
