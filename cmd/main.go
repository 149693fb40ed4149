package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/logger/pkg/logger"
	"github.com/wedding-dream/messaging-service/config"
	"github.com/wedding-dream/messaging-service/internal/auth"
	"github.com/wedding-dream/messaging-service/internal/postgres"
	"github.com/wedding-dream/messaging-service/internal/ratelimit"
	"github.com/wedding-dream/messaging-service/internal/service"
	httpx "github.com/wedding-dream/messaging-service/internal/transport/http"
	"github.com/wedding-dream/messaging-service/internal/transport/ws"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting messaging-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- redis (разделяемые счётчики admission control) ---
	counter, err := ratelimit.NewRedisCounter(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer counter.Close()

	// --- auth ---
	pub, err := auth.LoadRSAPublicKeyFromPEM(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("auth public key: %v", err)
	}
	verifier := auth.NewVerifier(pub, cfg.Auth.Issuer, cfg.Auth.Audience, 30*time.Second)

	// --- repos ---
	threadRepo := postgres.NewThreadRepository(db.Pool)
	messageRepo := postgres.NewMessageRepository(db.Pool)
	listingRepo := postgres.NewListingRepository(db.Pool)
	contactRepo := postgres.NewContactRepository(db.Pool)

	// --- hub & services ---
	hub := ws.NewHub()
	threadSvc := service.NewThreadService(threadRepo, listingRepo)
	msgSvc := service.NewMessageService(threadRepo, messageRepo, hub, cfg.WS.MaxMessageLen)
	contactSvc := service.NewContactService(contactRepo, listingRepo)

	limiter := ratelimit.NewLimiter(counter, ratelimit.Config{
		ConnPerMinute:  cfg.WS.ConnPerMinute,
		MsgPerMinute:   cfg.WS.MsgPerMinute,
		ContactPerHour: cfg.WS.ContactPerHour,
	})

	// --- transports ---
	wsServer := ws.NewServer(hub, threadSvc, msgSvc, verifier, limiter, cfg.WS.AllowedOrigins)
	handler := httpx.NewHandler(threadSvc, msgSvc, contactSvc, limiter)
	router := httpx.NewRouter(handler, verifier, wsServer, cfg.WS.AllowedOrigins)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
