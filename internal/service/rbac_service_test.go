package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
)

func newTestRBAC(t *testing.T) (RBACService, *fakeGrantRepo, *fakeAuditRepo) {
	t.Helper()
	grants := newFakeGrantRepo()
	auditRepo := &fakeAuditRepo{}
	audit := NewAuditService(auditRepo, nil)
	return NewRBACService(grants, audit), grants, auditRepo
}

func TestHasPermissionDirectGrant(t *testing.T) {
	svc, grants, _ := newTestRBAC(t)
	ctx := context.Background()
	userID := uuid.New()

	if err := grants.CreatePermissionGrant(ctx, &model.PermissionGrant{
		UserID: userID, Permission: model.PermViewReports, IsActive: true,
	}); err != nil {
		t.Fatalf("CreatePermissionGrant failed: %v", err)
	}

	allowed, err := svc.HasPermission(ctx, userID, model.PermViewReports)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if !allowed {
		t.Error("direct grant not honored")
	}

	allowed, err = svc.HasPermission(ctx, userID, model.PermManageUsers)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if allowed {
		t.Error("ungranted permission reported allowed")
	}
}

func TestHasPermissionViaRole(t *testing.T) {
	svc, grants, _ := newTestRBAC(t)
	ctx := context.Background()
	userID := uuid.New()

	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := grants.CreateRoleAssignment(ctx, &model.RoleAssignment{
		UserID: userID, Role: model.RoleQualityCommittee, IsActive: true,
	}); err != nil {
		t.Fatalf("CreateRoleAssignment failed: %v", err)
	}

	allowed, err := svc.HasPermission(ctx, userID, model.PermViewQuality)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if !allowed {
		t.Error("role-derived permission not honored")
	}

	// The quality committee can observe but never manage
	allowed, err = svc.HasPermission(ctx, userID, model.PermManageQuality)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if allowed {
		t.Error("quality committee member resolved manage_quality")
	}
}

func TestHasPermissionExpiredGrant(t *testing.T) {
	svc, grants, _ := newTestRBAC(t)
	ctx := context.Background()
	userID := uuid.New()
	past := time.Now().UTC().Add(-time.Hour)

	if err := grants.CreatePermissionGrant(ctx, &model.PermissionGrant{
		UserID: userID, Permission: model.PermViewReports, IsActive: true, ExpiresAt: &past,
	}); err != nil {
		t.Fatalf("CreatePermissionGrant failed: %v", err)
	}

	allowed, err := svc.HasPermission(ctx, userID, model.PermViewReports)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if allowed {
		t.Error("expired grant still resolves")
	}
}

func TestHasPermissionRevokedAssignment(t *testing.T) {
	svc, grants, _ := newTestRBAC(t)
	ctx := context.Background()
	userID := uuid.New()

	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	assignment := &model.RoleAssignment{UserID: userID, Role: model.RoleDepartmentHead, IsActive: true}
	if err := grants.CreateRoleAssignment(ctx, assignment); err != nil {
		t.Fatalf("CreateRoleAssignment failed: %v", err)
	}

	allowed, err := svc.HasPermission(ctx, userID, model.PermManageUsers)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if !allowed {
		t.Fatal("active department head lacks manage_users")
	}

	if err := grants.RevokeRoleAssignment(ctx, assignment.ID); err != nil {
		t.Fatalf("RevokeRoleAssignment failed: %v", err)
	}

	allowed, err = svc.HasPermission(ctx, userID, model.PermManageUsers)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if allowed {
		t.Error("revoked assignment still resolves")
	}
}

func TestSeedIdempotent(t *testing.T) {
	svc, grants, _ := newTestRBAC(t)
	ctx := context.Background()

	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("first Seed failed: %v", err)
	}
	first := len(grants.rolePerms)
	if first == 0 {
		t.Fatal("seed installed no pairs")
	}

	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if len(grants.rolePerms) != first {
		t.Errorf("second seed grew the table from %d to %d pairs", first, len(grants.rolePerms))
	}
}

func TestRevocationAudited(t *testing.T) {
	svc, grants, auditRepo := newTestRBAC(t)
	ctx := context.Background()
	actor := &model.User{ID: uuid.New(), Username: "head"}

	assignment := &model.RoleAssignment{UserID: uuid.New(), Role: model.RoleTrainer, IsActive: true}
	if err := grants.CreateRoleAssignment(ctx, assignment); err != nil {
		t.Fatalf("CreateRoleAssignment failed: %v", err)
	}

	if err := svc.RevokeRoleAssignment(ctx, actor, assignment.ID, ClientMeta{IP: "10.0.0.1"}); err != nil {
		t.Fatalf("RevokeRoleAssignment failed: %v", err)
	}

	if !auditRepo.hasAction(model.ActionRoleRevoked) {
		t.Error("revocation did not produce a ROLE_REVOKED audit entry")
	}
}

// TestHasPermissionRandomized cross-checks the resolver against a naive
// reference over randomized grant and assignment sets.
func TestHasPermissionRandomized(t *testing.T) {
	svc, grants, _ := newTestRBAC(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	for trial := 0; trial < 50; trial++ {
		userID := uuid.New()
		expectedPerms := make(map[model.Permission]bool)

		// Random direct grants
		for i := 0; i < rng.Intn(4); i++ {
			perm := model.AllPermissions[rng.Intn(len(model.AllPermissions))]
			active := rng.Intn(2) == 0
			var expiresAt *time.Time
			switch rng.Intn(3) {
			case 0:
				expiresAt = &past
			case 1:
				expiresAt = &future
			}
			if err := grants.CreatePermissionGrant(ctx, &model.PermissionGrant{
				UserID: userID, Permission: perm, IsActive: active, ExpiresAt: expiresAt,
			}); err != nil {
				t.Fatalf("CreatePermissionGrant failed: %v", err)
			}
			if active && (expiresAt == nil || expiresAt.After(now)) {
				expectedPerms[perm] = true
			}
		}

		// Random role assignments
		for i := 0; i < rng.Intn(3); i++ {
			role := model.AllRoles[rng.Intn(len(model.AllRoles))]
			active := rng.Intn(2) == 0
			var expiresAt *time.Time
			if rng.Intn(3) == 0 {
				expiresAt = &past
			}
			if err := grants.CreateRoleAssignment(ctx, &model.RoleAssignment{
				UserID: userID, Role: role, IsActive: active, ExpiresAt: expiresAt,
			}); err != nil {
				t.Fatalf("CreateRoleAssignment failed: %v", err)
			}
			if active && expiresAt == nil {
				for _, p := range model.DefaultRolePermissions[role] {
					expectedPerms[p] = true
				}
			}
		}

		for _, perm := range model.AllPermissions {
			got, err := svc.HasPermission(ctx, userID, perm)
			if err != nil {
				t.Fatalf("trial %d: HasPermission failed: %v", trial, err)
			}
			if got != expectedPerms[perm] {
				t.Errorf("trial %d: HasPermission(%s) = %v, reference says %v", trial, perm, got, expectedPerms[perm])
			}
		}
	}
}
