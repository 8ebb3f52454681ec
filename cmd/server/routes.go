package main

import (
	"time"

	"github.com/caloxi/server/api/rest/auth"
	"github.com/caloxi/server/api/rest/health"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{server.config.BaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", health.Handler)

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(
			v1,
			server.accountRepo,
			server.resolver,
			server.issuer,
			server.verifiers.Google,
			server.verifiers.Apple,
		)
	}
}
