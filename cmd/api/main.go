package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	anonymoussvc "storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	productsvc "storefront/internal/service/product"
)

const janitorInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var cartStore cartrepo.Store
	switch cfg.CartStore {
	case config.StoreMemory:
		cartStore = cartrepo.NewMemory()
	default:
		cartStore = cartrepo.NewPostgres(dbpool, logger)
	}

	var tokenRepo tokenrepo.Repository
	switch cfg.SessionStore {
	case config.StoreMemory:
		tokenRepo = tokenrepo.NewMemory()
	default:
		tokenRepo = tokenrepo.NewPostgres(dbpool, logger)
	}
	logger.Info("stores selected",
		zap.String("cart", cfg.CartStore),
		zap.String("session", cfg.SessionStore),
	)

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	persister := cartsvc.NewPersister(cartStore, logger, cfg.CartWriteTimeout)
	cartService := cartsvc.New(cartStore, persister, productRepo, logger,
		cartsvc.WithDefaultDeliveryFee(cfg.DefaultDeliveryFee))
	sessionService := anonymoussvc.New(tokenRepo, cfg.SessionTTL)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:    cartService,
		ProductSvc: productService,
		SessionSvc: sessionService,
	}, httpserver.Options{
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Currency:       cfg.Currency.String(),
	})

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		runJanitor(janitorCtx, logger, sessionService, cartService, cfg.CartIdleTimeout)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	stopJanitor()
	<-janitorDone

	if err := persister.Close(shutdownCtx); err != nil {
		logger.Error("flush cart writes", zap.Error(err))
	}
	if n := persister.Failures(); n > 0 {
		logger.Warn("cart writes failed during run", zap.Int64("failures", n))
	}
	logger.Info("server stopped")
}

// runJanitor drops carts of expired sessions and unloads idle ones.
func runJanitor(ctx context.Context, logger *zap.Logger, sessions *anonymoussvc.Service, carts *cartsvc.Service, idle time.Duration) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		expired, err := sessions.Expired(ctx)
		if err != nil {
			logger.Warn("sweep expired sessions", zap.Error(err))
		}
		for _, sessionID := range expired {
			if err := carts.Forget(ctx, sessionID); err != nil {
				logger.Warn("forget expired cart", zap.String("session", sessionID), zap.Error(err))
			}
		}
		if n := carts.EvictIdle(idle); n > 0 {
			logger.Debug("evicted idle carts", zap.Int("count", n))
		}
	}
}
