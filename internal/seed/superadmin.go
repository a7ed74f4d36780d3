package seed

import (
	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/service"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/logger"
)

// EnsureSuperadmin creates the bootstrap account when none exists and
// returns a session for the first superadmin, which owns seeded content.
// The returned session is empty when no superadmin could be found.
func EnsureSuperadmin(auth *service.AuthService, users repository.UserRepository, email, password string) session.Session {
	if auth != nil {
		if _, err := auth.EnsureSuperadmin(email, password); err != nil {
			logger.Error(err, "Failed to ensure superadmin account", map[string]interface{}{"email": email})
		}
	}
	if users == nil {
		return session.Session{}
	}

	found, _, err := users.List(models.ListFilter{Role: string(authorization.RoleSuperadmin), Page: 1, Limit: 1})
	if err != nil {
		logger.Error(err, "Failed to look up superadmin account", nil)
		return session.Session{}
	}
	if len(found) == 0 {
		return session.Session{}
	}

	root := found[0]
	return session.Session{
		UserID:   root.ID,
		Username: root.Username,
		Email:    root.Email,
		Role:     root.Role,
	}
}
