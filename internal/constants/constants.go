package constants

const (
	// AuthTokenCookieName holds the JWT for browser sessions.
	AuthTokenCookieName = "auth_token"
	// CSRFTokenCookieName is mirrored into the X-CSRF-Token header by browser clients.
	CSRFTokenCookieName = "csrf_token"

	CSRFHeaderName      = "X-CSRF-Token"
	RequestIDHeaderName = "X-Request-ID"
)

// Keys set on the gin context by the middleware chain.
const (
	ContextSessionKey   = "session"
	ContextUserIDKey    = "user_id"
	ContextRoleKey      = "role"
	ContextTenantKey    = "tenant_name"
	ContextRequestIDKey = "request_id"
)

const (
	DefaultUploadRateLimitRequests = 10
	DefaultUploadRateLimitWindow   = 300
)
