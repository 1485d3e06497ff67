package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type handlers struct {
	deps     Deps
	logger   *zap.Logger
	currency string
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNegativeFee),
		errors.Is(err, cartsvc.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
}
