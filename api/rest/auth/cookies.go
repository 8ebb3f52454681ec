package auth

import (
	"net/http"

	"github.com/caloxi/server/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// both cookies are httpOnly and secure; tokens are also returned in
// the body for clients that keep them in native secure storage
func setAuthCookies(c *gin.Context, pair auth.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, pair.AccessToken, 0, "/", "", true, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, 0, "/", "", true, true)
}

func clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", true, true)
}
