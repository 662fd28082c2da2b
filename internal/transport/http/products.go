package rest

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/pkg/httpx"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// productPatch — частичное обновление: nil-поля не меняются.
type productPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Category    *string `json:"category"`
	Stock       *int    `json:"stock"`
	SKU         *string `json:"sku"`
	IsFeatured  *bool   `json:"is_featured"`
}

func (p productPatch) apply(dst *domain.Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.SKU != nil {
		dst.SKU = *p.SKU
	}
	if p.IsFeatured != nil {
		dst.IsFeatured = *p.IsFeatured
	}
}

func (h *Handler) listProducts(c *gin.Context) {
	limit, offset := httpx.ParseLimitOffset(c, defaultPageLimit, maxPageLimit)
	filter := domain.ProductFilter{
		Category: strings.ToLower(strings.TrimSpace(c.Query("category"))),
		Query:    strings.TrimSpace(c.Query("q")),
		Limit:    limit,
		Offset:   offset,
	}
	if filter.Category != "" && !slices.Contains(domain.Categories, filter.Category) {
		badRequest(c, "unknown category")
		return
	}
	if v, ok := httpx.QueryInt64(c, "min_price"); ok && v > 0 {
		filter.MinPrice = v
	}
	if v, ok := httpx.QueryInt64(c, "max_price"); ok && v > 0 {
		filter.MaxPrice = v
	}
	if filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		badRequest(c, "min_price must not exceed max_price")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	list, err := h.products.ListProducts(ctx, filter)
	if err != nil {
		h.writeError(c, "ListProducts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list, "count": len(list), "limit": limit, "offset": offset})
}

func (h *Handler) featuredProducts(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	list, err := h.products.FeaturedProducts(ctx)
	if err != nil {
		h.writeError(c, "FeaturedProducts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list, "count": len(list)})
}

func (h *Handler) getProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		badRequest(c, "empty id")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	product, err := h.products.GetProduct(ctx, id)
	if err != nil {
		h.writeError(c, "GetProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var in domain.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	created, err := h.products.CreateProduct(ctx, &in)
	if err != nil {
		h.writeError(c, "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var patch productPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	current, err := h.products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, "UpdateProduct", err)
		return
	}
	patch.apply(current)

	updated, err := h.products.UpdateProduct(ctx, current)
	if err != nil {
		h.writeError(c, "UpdateProduct", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.products.DeleteProduct(ctx, c.Param("id")); err != nil {
		h.writeError(c, "DeleteProduct", err)
		return
	}
	c.Status(http.StatusNoContent)
}
