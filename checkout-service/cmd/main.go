package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/checkout-service/internal/config"
	checkouthttp "github.com/fjod/go_cart/checkout-service/internal/http"
	"github.com/fjod/go_cart/checkout-service/internal/metrics"
	"github.com/fjod/go_cart/checkout-service/internal/notification"
	"github.com/fjod/go_cart/checkout-service/internal/payment"
	"github.com/fjod/go_cart/checkout-service/internal/pricing"
	"github.com/fjod/go_cart/checkout-service/internal/repository"
	"github.com/fjod/go_cart/checkout-service/internal/service"
	"github.com/fjod/go_cart/checkout-service/internal/session"
	"github.com/fjod/go_cart/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	if err := run(); err != nil {
		slog.Error("checkout-service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Service: "checkout-service",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})
	log.Info("checkout-service starting")

	// Incoming W3C trace context flows through otelhttp into request logs.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database setup
	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database migrations completed")

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer func() {
		_ = mongoDB.Client().Disconnect(context.Background())
	}()
	carts := repository.NewMongoCartStore(mongoDB)
	if err := carts.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create cart indexes: %w", err)
	}
	log.Info("connected to mongodb", "uri", cfg.MongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL)

	var gateway payment.Gateway
	if cfg.PaymentGatewayURL != "" {
		gateway = payment.NewHTTPClient(cfg.PaymentGatewayURL, cfg.PaymentAPIKey, cfg.PaymentTimeout, log)
		log.Info("using payment gateway", "url", cfg.PaymentGatewayURL)
	} else {
		gateway = payment.NewSimulator()
		log.Warn("PAYMENT_GATEWAY_URL not set, using payment simulator")
	}

	var notifier notification.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := notification.NewKafkaNotifier(cfg.EmailTopic, cfg.KafkaBrokers...)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	} else {
		notifier = notification.NewLogNotifier(log)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	checkoutService := service.NewCheckoutService(service.Deps{
		Repo:     repo,
		Carts:    carts,
		Sessions: sessions,
		Payment:  service.NewPaymentHandler(gateway, cfg.PaymentTimeout),
		Notifier: service.NewNotificationHandler(notifier, 5*time.Second),
		Shipping: pricing.FlatRate{
			Fee:      cfg.FlatShipping,
			FreeOver: cfg.FreeShippingThreshold,
		},
		LocationID: cfg.LocationID,
		Currency:   cfg.Currency,
		Metrics:    m,
		Logger:     log,
	})

	router := checkouthttp.NewRouter(checkouthttp.RouterConfig{
		Checkout:       checkouthttp.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		JWTSecret:      []byte(cfg.JWTSecret),
		SecureCookies:  cfg.AppEnv != "local",
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        metrics.Handler(registry),
		Logger:         log,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("checkout", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc health server listening", "port", cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down checkout-service")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("checkout-service stopped")
	return nil
}
