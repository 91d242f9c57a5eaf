package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tableorder/internal/cache"
	"tableorder/internal/config"
	"tableorder/internal/db"
	"tableorder/internal/events"
	"tableorder/internal/httpserver"
	"tableorder/internal/logging"
	orderrepo "tableorder/internal/repository/order"
	itemrepo "tableorder/internal/repository/orderitem"
	paymentrepo "tableorder/internal/repository/payment"
	productrepo "tableorder/internal/repository/product"
	cartsvc "tableorder/internal/service/cart"
	catalogsvc "tableorder/internal/service/catalog"
	paymentsvc "tableorder/internal/service/payment"
	querysvc "tableorder/internal/service/query"
	sessionsvc "tableorder/internal/service/session"
	"tableorder/internal/storage"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	catalogCache := cache.Catalog(cache.Nop{})
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer client.Close()
			catalogCache = cache.NewRedis(client, cfg.CatalogCacheTTL, logger)
		}
	}

	publisher := events.Publisher(events.Nop{})
	if len(cfg.KafkaBrokers) > 0 {
		writer := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer writer.Close()
		publisher = events.NewKafkaPublisher(writer, logger)
		logger.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	images, err := storage.NewLocalImages(cfg.ImageDir, cfg.FileURLHost)
	if err != nil {
		logger.Fatal("init image storage", zap.Error(err))
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	itemRepo := itemrepo.NewPostgres(dbpool, logger)
	paymentRepo := paymentrepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(productRepo, catalogCache, images, logger)
	sessionService := sessionsvc.New(orderRepo, publisher, logger)
	cartService := cartsvc.New(itemRepo, productRepo, orderRepo, publisher, logger)
	paymentService := paymentsvc.New(paymentRepo, orderRepo, publisher, logger)
	queryService := querysvc.New(orderRepo, itemRepo, paymentRepo, catalogService)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions: sessionService,
		Catalog:  catalogService,
		Cart:     cartService,
		Payments: paymentService,
		Query:    queryService,
		Settings: httpserver.Settings{
			OrderingURL:          cfg.OrderingURL,
			PublicBaseURL:        cfg.PublicBaseURL,
			StaffKeyHash:         cfg.StaffKeyHash,
			CORSOrigins:          cfg.CORSOrigins,
			ImageDir:             images.Dir(),
			SessionRatePerMinute: cfg.SessionRatePerMinute,
		},
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
