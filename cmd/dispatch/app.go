package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/general/config"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/jwt"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/general/postgres"
	"taxitrack/internal/general/rabbitmq"
	"taxitrack/internal/general/redisgeo"
	"taxitrack/internal/general/websocket"
	"taxitrack/internal/ports"
	driverhandler "taxitrack/internal/software/driver/handler"
	driverservice "taxitrack/internal/software/driver/service"
	ridehandler "taxitrack/internal/software/ride/handler"
	rideservice "taxitrack/internal/software/ride/service"
)

const driverGeoKey = "drivers:geo"

// run wires the dispatch service and blocks until ctx is cancelled.
func run(ctx context.Context, maxConcurrent int) error {
	log := logger.New("dispatch")
	ctx = contextx.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, log, "config_load_failed", "Failed to load configuration", err)
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg, log)
	if err != nil {
		logger.Error(ctx, log, "db_connection_failed", "Failed to initialize Postgres pool", err)
		return err
	}
	defer pool.Close()

	// RabbitMQ mirrors events for external consumers; the service still works
	// without it, so a failed connect only downgrades to in-process delivery.
	var bridge *rabbitmq.MQPublisher
	rmq, err := rabbitmq.Connect(ctx, cfg.AMQPURL(), log)
	if err != nil {
		logger.Warn(ctx, log, "rabbitmq_unavailable", "Continuing without the event bridge")
	} else {
		defer rmq.Close()
		bridge = rabbitmq.NewMQPublisher(rmq)
	}

	geo := redisgeo.New(cfg.RedisAddr(), cfg.Redis.Password, driverGeoKey)
	defer geo.Close()
	if err := geo.Ping(ctx); err != nil {
		logger.Warn(ctx, log, "redis_unavailable", "Geo index disabled, falling back to stored positions")
		geo = nil
	}

	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	rideStore := postgres.NewRideStore(pool)
	presenceStore := postgres.NewPresenceStore(pool)
	directory := postgres.NewProfileDirectory(pool)

	registry := ws.NewRegistry(log)
	dispatcher := ws.NewDispatcher(registry, log, bridge)

	rideSvc := rideservice.NewRideService(log, rideStore, directory, dispatcher)

	// a typed nil in the interface would defeat the nil checks downstream
	var index ports.LocationIndex
	if geo != nil {
		index = geo
	}
	driverSvc := driverservice.NewDriverService(log, rideStore, presenceStore, directory, index, dispatcher)

	wsHandler := websocket.NewWebSocket(log, jwtManager, registry, driverSvc)

	mux := http.NewServeMux()
	ridehandler.NewClientHTTPHandler(rideSvc, log, jwtManager).RegisterRoutes(mux)
	driverhandler.NewDriverHTTPHandler(rideSvc, driverSvc, log, jwtManager).RegisterRoutes(mux)
	wsHandler.RegisterRoutes(mux)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, `{"status":"degraded"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	limitedHandler := withConcurrencyLimit(maxConcurrent, mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           limitedHandler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, log, "service_started",
		fmt.Sprintf("Dispatch service started on port %d", cfg.Server.Port),
		"port", cfg.Server.Port, "max_concurrent", maxConcurrent)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, log, "shutdown_started", "Graceful shutdown started")
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, log, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, log, "http_server_error", "HTTP server terminated with error", err,
				"port", cfg.Server.Port)
			return err
		}
	}

	return nil
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
