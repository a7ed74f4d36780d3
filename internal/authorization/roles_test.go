package authorization

import "testing"

func TestParseUserRole(t *testing.T) {
	cases := []struct {
		input interface{}
		want  UserRole
	}{
		{"Admin", RoleAdmin},
		{" superadmin ", RoleSuperadmin},
		{[]byte("user"), RoleUser},
		{RoleAdmin, RoleAdmin},
	}
	for _, tc := range cases {
		got, ok := ParseUserRole(tc.input)
		if !ok || got != tc.want {
			t.Fatalf("ParseUserRole(%v) = %q, %v; want %q", tc.input, got, ok, tc.want)
		}
	}

	if _, ok := ParseUserRole("editor"); ok {
		t.Fatal("expected unknown role to be rejected")
	}
	if _, ok := ParseUserRole(42); ok {
		t.Fatal("expected non-string input to be rejected")
	}
}

func TestRolePermissions(t *testing.T) {
	if !RoleHasPermission(RoleSuperadmin, PermissionManageTenants) {
		t.Fatal("superadmin must manage tenants")
	}
	if RoleHasPermission(RoleAdmin, PermissionManageTenants) {
		t.Fatal("admin must not manage tenants")
	}
	if !RoleHasPermission(RoleAdmin, PermissionManageTemplates) {
		t.Fatal("admin must manage templates")
	}
	if RoleHasPermission(RoleUser, PermissionManageTemplates) {
		t.Fatal("user must not manage templates")
	}
	if !RoleHasPermission(RoleUser, PermissionSubmitContent) {
		t.Fatal("user must be able to submit content")
	}
}

func TestScanDefaultsToUser(t *testing.T) {
	var r UserRole
	if err := r.Scan(nil); err != nil || r != RoleUser {
		t.Fatalf("expected user role for NULL, got %q, %v", r, err)
	}
	if err := r.Scan("bogus"); err == nil {
		t.Fatal("expected scan error for unknown role")
	}
}
