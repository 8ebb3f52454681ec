package main

import (
	"context"
	"fmt"
	"time"

	"github.com/caloxi/server/caloxi/accounts"
	"github.com/caloxi/server/internal/auth"
	"github.com/caloxi/server/internal/config"
	"github.com/caloxi/server/internal/identity"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	accountRepo := accounts.NewRepository(db)
	resolver := accounts.NewResolver(accountRepo)
	issuer := auth.NewIssuer(cfg, accountRepo)

	verifiers, err := InitializeVerifiers(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize identity verifiers: %w", err)
	}

	if !cfg.IsProduction() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		db:          db,
		config:      cfg,
		accountRepo: accountRepo,
		resolver:    resolver,
		issuer:      issuer,
		verifiers:   verifiers,
		router:      router,
	}

	RegisterRoutes(router, server)

	return server, nil
}

// constructs the Google and Apple verifiers with process-wide lifecycle
func InitializeVerifiers(ctx context.Context, cfg *config.Config) (*Verifiers, error) {
	google, err := identity.NewGoogleVerifier(cfg.GoogleClientID)
	if err != nil {
		return nil, err
	}

	apple, err := identity.NewAppleVerifier(ctx, cfg.AppleClientID)
	if err != nil {
		return nil, err
	}

	return &Verifiers{Google: google, Apple: apple}, nil
}
