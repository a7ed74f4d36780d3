package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/logger"
)

var (
	ErrForbidden        = errors.New("operation not permitted")
	ErrSelfModification = errors.New("cannot change your own role or delete yourself")
	ErrInvalidRole      = errors.New("invalid role")
	ErrTenantNotFound   = errors.New("tenant not found")
)

// UserService backs the admin management screens.
type UserService struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
}

func NewUserService(userRepo repository.UserRepository, tenantRepo repository.TenantRepository) *UserService {
	return &UserService{userRepo: userRepo, tenantRepo: tenantRepo}
}

// List returns users visible to actor. Admins only see their own tenant when
// they belong to one.
func (s *UserService) List(actor session.Session, filter models.ListFilter) ([]models.User, int64, error) {
	if !actor.Can(authorization.PermissionManageUsers) {
		return nil, 0, ErrForbidden
	}
	filter = filter.Normalize()
	if !actor.IsSuperadmin() && actor.TenantName != "" {
		filter.TenantName = actor.TenantName
	}
	if filter.Role != "" {
		if _, ok := authorization.ParseUserRole(filter.Role); !ok {
			return nil, 0, ErrInvalidRole
		}
	}
	return s.userRepo.List(filter)
}

func (s *UserService) ListAdmins(actor session.Session, filter models.ListFilter) ([]models.User, int64, error) {
	if !actor.Can(authorization.PermissionManageAdmins) {
		return nil, 0, ErrForbidden
	}
	filter = filter.Normalize()
	filter.Role = authorization.RoleAdmin.String()
	return s.userRepo.List(filter)
}

func (s *UserService) CreateAdmin(actor session.Session, req models.CreateAdminRequest) (*models.User, error) {
	if !actor.Can(authorization.PermissionManageAdmins) {
		return nil, ErrForbidden
	}
	if err := validatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	tenantName := strings.TrimSpace(req.TenantName)
	if tenantName != "" {
		if _, err := s.tenantRepo.GetByName(tenantName); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTenantNotFound
			}
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Password:   string(hashed),
		Role:       authorization.RoleAdmin,
		TenantName: tenantName,
		Status:     "active",
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	logger.Info("Admin created", map[string]interface{}{"user_id": user.ID, "by": actor.UserID, "tenant": tenantName})
	return user, nil
}

// UpdateRole lets superadmins set any role and admins toggle users within
// their tenant between user and admin.
func (s *UserService) UpdateRole(actor session.Session, id uint, rawRole string) (*models.User, error) {
	if !actor.Can(authorization.PermissionManageUsers) {
		return nil, ErrForbidden
	}
	role, ok := authorization.ParseUserRole(rawRole)
	if !ok {
		return nil, ErrInvalidRole
	}
	if id == actor.UserID {
		return nil, ErrSelfModification
	}

	target, err := s.getUser(id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, target) || (role == authorization.RoleSuperadmin && !actor.IsSuperadmin()) {
		return nil, ErrForbidden
	}

	if err := s.userRepo.UpdateRole(id, role); err != nil {
		return nil, err
	}
	target.Role = role

	logger.Info("User role changed", map[string]interface{}{"user_id": id, "role": role, "by": actor.UserID})
	return target, nil
}

func (s *UserService) Delete(actor session.Session, id uint) error {
	if !actor.Can(authorization.PermissionManageUsers) {
		return ErrForbidden
	}
	if id == actor.UserID {
		return ErrSelfModification
	}

	target, err := s.getUser(id)
	if err != nil {
		return err
	}
	if !s.canManage(actor, target) {
		return ErrForbidden
	}
	return s.userRepo.Delete(id)
}

func (s *UserService) canManage(actor session.Session, target *models.User) bool {
	if actor.IsSuperadmin() {
		return true
	}
	if target.Role != authorization.RoleUser && target.Role != authorization.RoleAdmin {
		return false
	}
	if target.Role == authorization.RoleAdmin && !actor.Can(authorization.PermissionManageAdmins) {
		return false
	}
	return actor.TenantName == "" || actor.TenantName == target.TenantName
}

func (s *UserService) getUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
