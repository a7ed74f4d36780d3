package authorization

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type UserRole string

const (
	RoleSuperadmin UserRole = "superadmin"
	RoleAdmin      UserRole = "admin"
	RoleUser       UserRole = "user"
)

var validRoles = map[UserRole]struct{}{
	RoleSuperadmin: {},
	RoleAdmin:      {},
	RoleUser:       {},
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	_, ok := validRoles[r]
	return ok
}

func (r UserRole) Value() (driver.Value, error) {
	if r == "" {
		return string(RoleUser), nil
	}
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid user role: %q", r)
	}
	return string(r), nil
}

func (r *UserRole) Scan(value interface{}) error {
	if value == nil {
		*r = RoleUser
		return nil
	}

	role, ok := ParseUserRole(value)
	if !ok {
		return fmt.Errorf("invalid user role: %v", value)
	}
	*r = role
	return nil
}

type Permission string

const (
	PermissionManageTenants   Permission = "manage_tenants"
	PermissionManageAdmins    Permission = "manage_admins"
	PermissionManageUsers     Permission = "manage_users"
	PermissionManageTemplates Permission = "manage_templates"
	PermissionManageQuestions Permission = "manage_questions"
	PermissionReviewFeedback  Permission = "review_feedback"
	PermissionReviewResponses Permission = "review_responses"
	PermissionSubmitContent   Permission = "submit_content"
	PermissionShortenLinks    Permission = "shorten_links"
)

var rolePermissions = map[UserRole]map[Permission]struct{}{
	RoleSuperadmin: {
		PermissionManageTenants:   {},
		PermissionManageAdmins:    {},
		PermissionManageUsers:     {},
		PermissionManageTemplates: {},
		PermissionManageQuestions: {},
		PermissionReviewFeedback:  {},
		PermissionReviewResponses: {},
		PermissionSubmitContent:   {},
		PermissionShortenLinks:    {},
	},
	RoleAdmin: {
		PermissionManageUsers:     {},
		PermissionManageTemplates: {},
		PermissionManageQuestions: {},
		PermissionReviewFeedback:  {},
		PermissionReviewResponses: {},
		PermissionSubmitContent:   {},
		PermissionShortenLinks:    {},
	},
	RoleUser: {
		PermissionSubmitContent: {},
		PermissionShortenLinks:  {},
	},
}

func RoleHasPermission(role UserRole, permission Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[permission]
	return ok
}

func ParseUserRole(value interface{}) (UserRole, bool) {
	var raw string
	switch v := value.(type) {
	case UserRole:
		raw = string(v)
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return "", false
	}

	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", false
	}
	return role, true
}

// ValidRoles lists roles from most to least privileged.
func ValidRoles() []UserRole {
	return []UserRole{RoleSuperadmin, RoleAdmin, RoleUser}
}
