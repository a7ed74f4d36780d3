package session

import (
	"context"
	"testing"

	"pagecraft-backend/internal/authorization"
)

func TestFromContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("expected no session on empty context")
	}

	ctx := WithContext(context.Background(), Session{UserID: 3, Role: authorization.RoleUser, TenantName: "acme"})
	s, ok := FromContext(ctx)
	if !ok {
		t.Fatalf("expected session")
	}
	if s.UserID != 3 || s.TenantName != "acme" {
		t.Fatalf("unexpected session %+v", s)
	}

	anonymous := WithContext(context.Background(), Session{Role: authorization.RoleAdmin})
	if _, ok := FromContext(anonymous); ok {
		t.Fatalf("a session without user id must not count as authenticated")
	}
}

func TestCan(t *testing.T) {
	user := Session{UserID: 1, Role: authorization.RoleUser}
	if !user.Can(authorization.PermissionSubmitContent) {
		t.Fatalf("users submit content")
	}
	if user.Can(authorization.PermissionManageTemplates) {
		t.Fatalf("users must not manage templates")
	}

	admin := Session{UserID: 2, Role: authorization.RoleAdmin}
	if !admin.Can(authorization.PermissionManageTemplates) {
		t.Fatalf("admins manage templates")
	}
	if admin.IsSuperadmin() {
		t.Fatalf("admin is not superadmin")
	}

	if (Session{Role: authorization.RoleSuperadmin}).Can(authorization.PermissionManageTenants) {
		t.Fatalf("unauthenticated sessions have no permissions")
	}
}
