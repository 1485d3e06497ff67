package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type cartService interface {
	Get(ctx context.Context, sessionID string) (cartsvc.View, error)
	AddProduct(ctx context.Context, sessionID, productID string) (cartsvc.View, error)
	AddDescriptor(ctx context.Context, sessionID string, d domain.ProductDescriptor) (cartsvc.View, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (cartsvc.View, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (cartsvc.View, error)
	Decrement(ctx context.Context, sessionID, itemID string) (cartsvc.View, error)
	Clear(ctx context.Context, sessionID string) (cartsvc.View, error)
	SetDeliveryAddress(ctx context.Context, sessionID string, addr domain.DeliveryAddress) (cartsvc.View, error)
	SetDeliveryFee(ctx context.Context, sessionID string, fee decimal.Decimal) (cartsvc.View, error)
	Checkout(ctx context.Context, sessionID string) (cartsvc.View, error)
	Forget(ctx context.Context, sessionID string) error
}

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type sessionService interface {
	Issue(ctx context.Context) (accessToken, sessionID string, err error)
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) (string, error)
	TTLSeconds() int
}

// Deps are the services behind the API.
type Deps struct {
	CartSvc    cartService
	ProductSvc productService
	SessionSvc sessionService
}

type Options struct {
	Production     bool
	AllowedOrigins []string
	Currency       string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps, opts Options) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), loggingMiddleware(logger))
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger, currency: opts.Currency}

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)

	router.POST("/sessions", h.createSession)

	authed := router.Group("")
	authed.Use(h.sessionMiddleware(deps.SessionSvc))
	{
		authed.DELETE("/sessions/current", h.endSession)

		authed.GET("/cart", h.getCart)
		authed.POST("/cart/items", h.addItem)
		authed.DELETE("/cart/items", h.clearCart)
		authed.PUT("/cart/items/:id", h.updateQuantity)
		authed.POST("/cart/items/:id/decrement", h.decrement)
		authed.DELETE("/cart/items/:id", h.removeItem)
		authed.PUT("/cart/address", h.setAddress)
		authed.PUT("/cart/delivery-fee", h.setDeliveryFee)
		authed.POST("/cart/checkout", h.checkout)
	}

	return router
}

func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("http request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
