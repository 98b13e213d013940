package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/handler"
	applog "go-inventory-ledger/internal/log"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/jwt"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load config (.env is optional)
	cfg, err := config.Load[config.Config]()
	if err != nil {
		return err
	}
	log := applog.NewSlogLogger(cfg.Log)

	// 2. Setup database
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		return err
	}

	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return err
	}

	// 3. Idempotency store, only when Redis is configured
	var idem service.IdempotencyStore
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		idem = cache.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
		log.Info("idempotency keys enabled", slog.String("redis", cfg.Redis.Addr))
	}

	// 4. WebSocket hub
	hub := ws.NewHub(log, 256)
	go hub.Run(ctx)

	// 5. Wiring
	productRepo := repository.NewProductRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	userRepo := repository.NewUserRepo(db)

	authService := service.NewAuthService(userRepo, tokens, log)
	userService := service.NewUserService(userRepo, log)
	catalogService := service.NewCatalogService(db, productRepo, ledgerRepo, hub, log)
	inventoryService := service.NewInventoryService(db, productRepo, ledgerRepo, idem, hub, log)

	if _, err := authService.EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	// 6. HTTP
	app := handler.NewApp(cfg.HTTP, log)
	handler.SetupRoutes(app, handler.Dependencies{
		Auth:        authService,
		Users:       userService,
		Catalog:     catalogService,
		Inventory:   inventoryService,
		Hub:         hub,
		AllowSignup: cfg.Auth.AllowSignup,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.Int("port", cfg.HTTP.Port))
		errCh <- app.Listen(":" + strconv.Itoa(cfg.HTTP.Port))
	}()

	// 7. Graceful shutdown
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.HTTP.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
