package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type cartResponse struct {
	Items           []lineItemResponse      `json:"items"`
	DeliveryAddress *domain.DeliveryAddress `json:"deliveryAddress"`
	DeliveryFee     json.Number             `json:"deliveryFee"`
	Subtotal        json.Number             `json:"subtotal"`
	DiscountTotal   json.Number             `json:"discountTotal"`
	Total           json.Number             `json:"total"`
	ItemCount       int                     `json:"itemCount"`
	Currency        string                  `json:"currency"`
}

type lineItemResponse struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	ImageRef           string      `json:"imageRef,omitempty"`
	UnitPrice          json.Number `json:"unitPrice"`
	EffectiveUnitPrice json.Number `json:"effectiveUnitPrice"`
	Quantity           int         `json:"quantity"`
	LineTotal          json.Number `json:"lineTotal"`
	DiscountPercent    *int        `json:"discountPercent,omitempty"`
	ColorVariant       *string     `json:"colorVariant,omitempty"`
}

type addItemRequest struct {
	ProductID string       `json:"productId"`
	Item      *itemRequest `json:"item"`
}

type itemRequest struct {
	ID              string          `json:"id" binding:"required"`
	Title           string          `json:"title" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	ImageRef        string          `json:"imageRef"`
	DiscountPercent *int            `json:"discountPercent" binding:"omitempty,min=0,max=100"`
	ColorVariant    *string         `json:"colorVariant"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type deliveryFeeRequest struct {
	Fee *decimal.Decimal `json:"fee" binding:"required"`
}

type addressRequest struct {
	Name       string `json:"name" binding:"required"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone"`
}

// money renders an amount with two fraction digits as a JSON number.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func effectivePrice(d domain.ProductDescriptor) decimal.Decimal {
	return cartsvc.EffectiveUnitPrice(domain.NewLineItem(d, 1))
}

func (h *handlers) toCartResponse(v cartsvc.View) cartResponse {
	items := make([]lineItemResponse, 0, len(v.State.Items))
	for _, it := range v.State.Items {
		items = append(items, lineItemResponse{
			ID:                 it.ID,
			Title:              it.Title,
			ImageRef:           it.ImageRef,
			UnitPrice:          money(it.UnitPrice),
			EffectiveUnitPrice: money(cartsvc.EffectiveUnitPrice(it)),
			Quantity:           it.Quantity,
			LineTotal:          money(cartsvc.LineTotal(it)),
			DiscountPercent:    it.DiscountPercent,
			ColorVariant:       it.ColorVariant,
		})
	}
	return cartResponse{
		Items:           items,
		DeliveryAddress: v.State.DeliveryAddress,
		DeliveryFee:     money(v.State.DeliveryFee),
		Subtotal:        money(v.Subtotal),
		DiscountTotal:   money(v.DiscountTotal),
		Total:           money(v.Total),
		ItemCount:       v.ItemCount,
		Currency:        h.currency,
	}
}

func (h *handlers) respondCart(c *gin.Context, status int, v cartsvc.View, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, h.toCartResponse(v))
}

func (h *handlers) getCart(c *gin.Context) {
	v, err := h.deps.CartSvc.Get(c.Request.Context(), c.GetString(sessionIDKey))
	h.respondCart(c, http.StatusOK, v, err)
}

// addItem accepts either a catalog product id or a full item descriptor.
func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	ctx := c.Request.Context()
	sessionID := c.GetString(sessionIDKey)

	var (
		v   cartsvc.View
		err error
	)
	switch {
	case req.Item != nil:
		v, err = h.deps.CartSvc.AddDescriptor(ctx, sessionID, domain.ProductDescriptor{
			ID:              req.Item.ID,
			Title:           req.Item.Title,
			UnitPrice:       req.Item.UnitPrice,
			ImageRef:        req.Item.ImageRef,
			DiscountPercent: req.Item.DiscountPercent,
			ColorVariant:    req.Item.ColorVariant,
		})
	case req.ProductID != "":
		v, err = h.deps.CartSvc.AddProduct(ctx, sessionID, req.ProductID)
	default:
		c.JSON(http.StatusBadRequest, errorBody("productId or item required"))
		return
	}
	h.respondCart(c, http.StatusOK, v, err)
}

func (h *handlers) updateQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	v, err := h.deps.CartSvc.UpdateQuantity(c.Request.Context(), c.GetString(sessionIDKey), c.Param("id"), *req.Quantity)
	h.respondCart(c, http.StatusOK, v, err)
}

func (h *handlers) decrement(c *gin.Context) {
	v, err := h.deps.CartSvc.Decrement(c.Request.Context(), c.GetString(sessionIDKey), c.Param("id"))
	h.respondCart(c, http.StatusOK, v, err)
}

func (h *handlers) removeItem(c *gin.Context) {
	v, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), c.GetString(sessionIDKey), c.Param("id"))
	h.respondCart(c, http.StatusOK, v, err)
}

func (h *handlers) clearCart(c *gin.Context) {
	v, err := h.deps.CartSvc.Clear(c.Request.Context(), c.GetString(sessionIDKey))
	h.respondCart(c, http.StatusOK, v, err)
}

func (h *handlers) setAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	v, err := h.deps.CartSvc.SetDeliveryAddress(c.Request.Context(), c.GetString(sessionIDKey), domain.DeliveryAddress(req))
	h.respondCart(c, http.StatusOK, v, err)
}

func (h *handlers) setDeliveryFee(c *gin.Context) {
	var req deliveryFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	v, err := h.deps.CartSvc.SetDeliveryFee(c.Request.Context(), c.GetString(sessionIDKey), *req.Fee)
	h.respondCart(c, http.StatusOK, v, err)
}

// checkout returns the cart as ordered; the live cart keeps only address and fee.
func (h *handlers) checkout(c *gin.Context) {
	v, err := h.deps.CartSvc.Checkout(c.Request.Context(), c.GetString(sessionIDKey))
	h.respondCart(c, http.StatusOK, v, err)
}
