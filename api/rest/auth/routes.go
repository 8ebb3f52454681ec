package auth

import (
	"github.com/caloxi/server/caloxi/accounts"
	"github.com/caloxi/server/internal/auth"
	"github.com/caloxi/server/internal/identity"
	"github.com/gin-gonic/gin"
)

// registers all authentication routes
func RegisterRoutes(
	router *gin.RouterGroup,
	repo *accounts.Repository,
	resolver *accounts.Resolver,
	issuer *auth.Issuer,
	google identity.Verifier,
	apple identity.Verifier,
) {
	users := router.Group("/users")
	{
		users.POST("/register", RegisterHandler(repo))
		users.POST("/login", LoginHandler(repo, issuer))
		users.POST("/google", GoogleLoginHandler(google, resolver, issuer))
		users.POST("/apple", AppleLoginHandler(apple, resolver, issuer))
		users.POST("/refresh", RefreshHandler(issuer))
		users.POST("/logout", auth.AuthMiddleware(issuer), LogoutHandler(issuer))
		users.GET("/me", auth.AuthMiddleware(issuer), GetCurrentUserHandler(repo))

		users.GET("/oauth/:provider", BeginOAuthHandler())
		users.GET("/oauth/:provider/callback", OAuthCallbackHandler(resolver, issuer))
	}
}
