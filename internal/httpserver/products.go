package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type productResponse struct {
	ID              string      `json:"id"`
	Key             string      `json:"key"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	Price           json.Number `json:"price"`
	DiscountedPrice json.Number `json:"discountedPrice"`
	Currency        string      `json:"currency"`
	ImageURL        string      `json:"imageUrl,omitempty"`
	DiscountPercent *int        `json:"discountPercent,omitempty"`
	ColorVariant    *string     `json:"colorVariant,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type productListResponse struct {
	Count   int               `json:"count"`
	Results []productResponse `json:"results"`
}

func toProductResponse(p domain.Product) productResponse {
	d := p.Descriptor()
	return productResponse{
		ID:              p.ID,
		Key:             p.Key,
		Title:           p.Title,
		Description:     p.Description,
		Price:           money(d.UnitPrice),
		DiscountedPrice: money(effectivePrice(d)),
		Currency:        p.Currency,
		ImageURL:        p.ImageURL,
		DiscountPercent: p.DiscountPercent,
		ColorVariant:    p.ColorVariant,
		CreatedAt:       p.CreatedAt,
	}
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	results := make([]productResponse, 0, len(products))
	for _, p := range products {
		results = append(results, toProductResponse(p))
	}
	c.JSON(http.StatusOK, productListResponse{Count: len(results), Results: results})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}
