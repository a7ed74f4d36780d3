package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/constants"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/logger"
)

// TokenValidator turns a bearer token into the caller's session.
type TokenValidator interface {
	ValidateToken(token string) (session.Session, error)
}

// AuthMiddleware rejects requests without a valid token. The token is read
// from the Authorization header first and the auth cookie second.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization credentials required"})
			return
		}

		sess, err := validator.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		attachSession(c, sess)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches a session when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := extractToken(c); ok && tokenString != "" {
			if sess, err := validator.ValidateToken(tokenString); err == nil {
				attachSession(c, sess)
			}
		}
		c.Next()
	}
}

// RequirePermission must run after AuthMiddleware.
func RequirePermission(permission authorization.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization credentials required"})
			return
		}
		if !sess.Can(permission) {
			logger.FromContext(c.Request.Context()).WithField("permission", string(permission)).Warn("Permission denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by the auth middleware.
func CurrentSession(c *gin.Context) (session.Session, bool) {
	if value, exists := c.Get(constants.ContextSessionKey); exists {
		if sess, ok := value.(session.Session); ok && sess.Authenticated() {
			return sess, true
		}
	}
	return session.FromContext(c.Request.Context())
}

func attachSession(c *gin.Context, sess session.Session) {
	c.Set(constants.ContextSessionKey, sess)
	c.Set(constants.ContextUserIDKey, sess.UserID)
	c.Set(constants.ContextRoleKey, sess.Role.String())
	c.Set(constants.ContextTenantKey, sess.TenantName)

	ctx := session.WithContext(c.Request.Context(), sess)
	ctx = logger.ContextWithFields(ctx, map[string]interface{}{"user_id": sess.UserID})
	c.Request = c.Request.WithContext(ctx)
}

// extractToken reports ok=false only for a malformed Authorization header
// with no cookie to fall back on.
func extractToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1]), true
		}
	}

	if cookieToken, err := c.Cookie(constants.AuthTokenCookieName); err == nil && strings.TrimSpace(cookieToken) != "" {
		return strings.TrimSpace(cookieToken), true
	}
	if authHeader != "" {
		return "", false
	}
	return "", true
}
