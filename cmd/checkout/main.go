package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/view"
)

func main() {
	cfg := config.Load()

	if z, err := logging.New(os.Getenv("LOG_LEVEL")); err == nil {
		logging.SetBase(z)
	}
	defer logging.Sync()

	logger := logging.NewLoggerV2("checkout-service")
	logging.Infof("Starting checkout-service on port %d", cfg.Server.Port)

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	readiness := []handlers.ReadinessCheck{
		{Name: "database", Check: db.PingContext},
	}

	var sessions repository.SessionStore
	if cfg.Features.EnableRedisSessions {
		redisClient := repository.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
		store := repository.NewRedisSessionStore(redisClient, cfg.Redis.TTL)
		readiness = append(readiness, handlers.ReadinessCheck{Name: "redis", Check: store.Ping})
		sessions = store
	} else {
		logger.Warn("Redis sessions disabled, using in-memory store")
		sessions = repository.NewMemorySessionStore()
	}

	provinces, err := repository.LoadProvinceCosts(cfg.Checkout.ProvinceCostsFile)
	if err != nil {
		logger.Fatal("Failed to load province costs", logging.Fields{
			"file":  cfg.Checkout.ProvinceCostsFile,
			"error": err.Error(),
		})
	}

	orderRepo := repository.NewPostgresOrderRepository(db)
	couponRepo := repository.NewPostgresCouponRepository(db)
	catalog := repository.NewPostgresProductCatalog(db)

	paymentClient := clients.NewHTTPPaymentClient(cfg.PaymentService, cfg.Server.PublicBaseURL)
	notificationClient := clients.NewHTTPNotificationClient(cfg.NotificationService)

	var eventPublisher service.OrderEventPublisher = events.NopPublisher{}
	if cfg.Features.EnableOrderEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka)
		defer kafkaPublisher.Close()
		eventPublisher = kafkaPublisher
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCheckoutMetrics(registry)

	validator := service.NewValidator(provinces)
	couponService := service.NewCouponService(couponRepo, orderRepo)
	orderService := service.NewOrderService(
		orderRepo,
		couponService,
		paymentClient,
		notificationClient,
		eventPublisher,
		cfg,
	)
	paymentService := service.NewPaymentService(orderService)
	checkoutService := service.NewCheckoutService(
		sessions,
		catalog,
		service.NewCalculator(service.NewPricingConfig(cfg.Checkout, provinces)),
		validator,
		couponService,
		orderService,
		m,
		cfg.Checkout,
	)

	h := handlers.NewHandlers(
		checkoutService,
		couponService,
		paymentService,
		view.NewRenderer(validator, provinces, cfg.Checkout.BlurDebounce),
		m,
		cfg,
		readiness...,
	)

	srv := server.New(h, cfg, m)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                    cfg.Server.Port,
			"enable_redis_sessions":   cfg.Features.EnableRedisSessions,
			"enable_order_events":     cfg.Features.EnableOrderEvents,
			"enable_payment_consumer": cfg.Features.EnablePaymentConsumer,
			"discount_policy":         cfg.Checkout.DiscountPolicy,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var eventConsumer *events.KafkaConsumer
	if cfg.Features.EnablePaymentConsumer {
		eventConsumer = events.NewKafkaConsumer(cfg.Kafka, orderService)
		go func() {
			if err := eventConsumer.Start(context.Background()); err != nil {
				logger.Error("Event consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if eventConsumer != nil {
		eventConsumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := repository.OpenDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	return db, nil
}
