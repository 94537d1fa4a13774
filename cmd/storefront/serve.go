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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/authclient"
	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/receipt"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireServe(); err != nil {
		return err
	}
	ctx := cmd.Context()

	gdb, err := openDB(ctx)
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer closeDB(gdb)

	if err := db.Migrate(ctx, gdb); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	r := &repo.GormRepo{DB: gdb}

	store, err := receipt.NewStore(cfg.ReceiptsDir)
	if err != nil {
		return err
	}
	receipts := &service.ReceiptIssuer{Store: store, StoreName: cfg.StoreName}
	images := &util.ImageResolver{StaticDir: cfg.StaticDir}

	var publisher service.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka_close_error", "error", err)
			}
		}()
		publisher = prod
	}

	var catalogCache service.CatalogCache
	if cfg.RedisAddr != "" {
		client := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		c := cache.NewCatalog(client, cfg.CacheTTL)
		if err := c.Ping(ctx); err != nil {
			logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		} else {
			catalogCache = c
		}
	}

	var searcher service.ProductSearcher
	if cfg.ESURL != "" {
		es, err := search.NewClient(ctx, search.Options{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			products := &search.Products{ES: es, Index: cfg.ESIndex}
			if err := products.EnsureIndex(ctx); err != nil {
				logger.Warn("search_index_error", "index", cfg.ESIndex, "error", err)
			}
			searcher = products
		}
	}

	var refresher authmw.Refresher
	if cfg.AuthHTTPURL != "" {
		refresher = authclient.NewClient(cfg.AuthHTTPURL)
	}

	reviews := &service.ReviewService{Repo: r, Events: publisher, Cache: catalogCache}
	deps := &httpserver.Deps{
		DB: gdb,
		CatalogHandler: &httpserver.CatalogHTTP{
			Svc:     &service.CatalogService{Repo: r, Cache: catalogCache, Search: searcher, Images: images},
			Reviews: reviews,
		},
		CartHandler: &httpserver.CartHTTP{
			Svc: &service.CartService{Repo: r, Images: images, Events: publisher},
		},
		CheckoutHandler: &httpserver.CheckoutHTTP{
			Svc: &service.CheckoutService{Repo: r, Receipts: receipts, Events: publisher, Cache: catalogCache},
		},
		OrderHandler:  &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Receipts: receipts}},
		ReviewHandler: &httpserver.ReviewHTTP{Svc: reviews},
		JWTSecret:     cfg.JWTAccessSecret,
		AuthClient:    refresher,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.SkipPaths = []string{"/health/live", "/health/ready"}
		e.Use(csrf.Middleware(csrfCfg))
	}

	httpserver.Register(e, deps)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("echo start: %w", err)
		}
	case <-stop:
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
