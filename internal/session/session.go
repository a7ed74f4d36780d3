// Package session carries the authenticated caller through request handling.
package session

import (
	"context"

	"pagecraft-backend/internal/authorization"
)

// Session identifies who is acting. It is derived from a verified token and
// never from request bodies.
type Session struct {
	UserID     uint                   `json:"user_id"`
	Username   string                 `json:"username"`
	Email      string                 `json:"email"`
	Role       authorization.UserRole `json:"role"`
	TenantName string                 `json:"tenant_name,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.UserID != 0
}

func (s Session) Can(permission authorization.Permission) bool {
	return s.Authenticated() && authorization.RoleHasPermission(s.Role, permission)
}

func (s Session) IsSuperadmin() bool {
	return s.Role == authorization.RoleSuperadmin
}

type contextKey struct{}

func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(contextKey{}).(Session)
	if !ok || !s.Authenticated() {
		return Session{}, false
	}
	return s, true
}
