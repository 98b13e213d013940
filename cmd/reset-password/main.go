package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go-inventory-ledger/internal/config"
	applog "go-inventory-ledger/internal/log"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/jwt"
)

func main() {
	username := flag.String("username", "admin", "account whose password is replaced")
	password := flag.String("password", "", "new password (required)")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "reset-password: -password is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*username, *password); err != nil {
		slog.Error("reset password failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(username, password string) error {
	// 1. Load env
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

	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	auth := service.NewAuthService(repository.NewUserRepo(db), tokens, log)

	// 3. Update; existing sessions of the user are signed out
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := auth.UpdatePassword(ctx, username, password); err != nil {
		return err
	}

	log.Info("password reset", slog.String("username", username))
	return nil
}
