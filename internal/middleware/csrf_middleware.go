package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/constants"
)

var stateChangingMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

var csrfExemptPaths = map[string]struct{}{
	"/api/v1/login":    {},
	"/api/v1/register": {},
	"/api/v1/logout":   {},
}

// CSRFMiddleware applies the double-submit check to cookie-authenticated
// requests. Form posts may carry the token in a csrf_token field instead of
// the header.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, shouldCheck := stateChangingMethods[c.Request.Method]; !shouldCheck {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if _, exempt := csrfExemptPaths[path]; exempt {
			c.Next()
			return
		}

		if strings.TrimSpace(c.GetHeader("Authorization")) != "" {
			c.Next()
			return
		}

		tokenCookie, err := c.Cookie(constants.AuthTokenCookieName)
		if err != nil || strings.TrimSpace(tokenCookie) == "" {
			c.Next()
			return
		}

		csrfCookie, err := c.Cookie(constants.CSRFTokenCookieName)
		if err != nil || strings.TrimSpace(csrfCookie) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing CSRF token"})
			return
		}

		submitted := strings.TrimSpace(c.GetHeader(constants.CSRFHeaderName))
		if submitted == "" {
			submitted = strings.TrimSpace(c.PostForm(constants.CSRFTokenCookieName))
		}
		if submitted == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing CSRF header"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(csrfCookie), []byte(submitted)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid CSRF token"})
			return
		}

		c.Next()
	}
}
