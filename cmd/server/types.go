package main

import (
	"github.com/caloxi/server/caloxi/accounts"
	"github.com/caloxi/server/internal/auth"
	"github.com/caloxi/server/internal/config"
	"github.com/caloxi/server/internal/identity"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// holds all dependencies and state for the API server
type Server struct {
	db          *pgxpool.Pool
	config      *config.Config
	accountRepo *accounts.Repository
	resolver    *accounts.Resolver
	issuer      *auth.Issuer
	verifiers   *Verifiers
	router      *gin.Engine
}

// holds the identity verifiers, constructed once at startup
type Verifiers struct {
	Google identity.Verifier
	Apple  identity.Verifier
}
