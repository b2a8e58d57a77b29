package middleware

import (
	"net/http"
	"strings"

	"employment-api/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessCookieName holds the access token for browser clients.
	AccessCookieName = "jwt"
	// RefreshCookieName holds the refresh token for browser clients.
	RefreshCookieName = "refresh_token"

	bearerPrefix = "Bearer "
)

const (
	ContextClaimsKey  = "claims"
	ContextSubjectKey = "subject"
)

// ExtractToken locates a candidate token on the request. The jwt cookie
// wins; the Authorization header with an exact "Bearer " prefix is the
// fallback for programmatic clients. Both transports hit the same routes.
func ExtractToken(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(AccessCookieName); err == nil && cookie != "" {
		return cookie, true
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix), true
	}
	return "", false
}

// RequireLogin authenticates the request before any protected handler
// runs. Refresh tokens are rejected here; only the refresh endpoint
// accepts them.
func RequireLogin(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := ExtractToken(c)
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "not authenticated (no JWT found in cookie or header)",
			})
			return
		}

		claims, ok := tokens.Verify(tokenString)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		if services.TokenType(claims) != services.TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		subject, ok := services.Subject(claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token payload: 'sub' not found",
			})
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(ContextSubjectKey, subject)
		c.Next()
	}
}

// SubjectFromContext returns the authenticated subject email set by
// RequireLogin.
func SubjectFromContext(c *gin.Context) (string, bool) {
	subject, ok := c.Get(ContextSubjectKey)
	if !ok {
		return "", false
	}
	email, ok := subject.(string)
	return email, ok && email != ""
}

// ClaimsFromContext returns the decoded claims set by RequireLogin.
func ClaimsFromContext(c *gin.Context) (jwt.MapClaims, bool) {
	value, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(jwt.MapClaims)
	return claims, ok
}
