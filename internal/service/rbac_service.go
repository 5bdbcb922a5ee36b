package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type AssignRoleRequest struct {
	UserID    string     `json:"user_id" binding:"required"`
	Role      string     `json:"role" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type GrantPermissionRequest struct {
	UserID     string     `json:"user_id" binding:"required"`
	Permission string     `json:"permission" binding:"required"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

type GrantResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	AssignedBy string     `json:"assigned_by"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IsActive   bool       `json:"is_active"`
}

// --- Interface ---

// RBACService resolves permissions and manages role assignments and direct
// grants. The model is purely additive: more roles or grants only ever widen
// access.
type RBACService interface {
	// HasPermission reports whether the user holds the permission, either via
	// an active unexpired direct grant or through an active unexpired role
	// assignment whose role maps to it.
	HasPermission(ctx context.Context, userID uuid.UUID, perm model.Permission) (bool, error)
	AssignRole(ctx context.Context, actor *model.User, req AssignRoleRequest, meta ClientMeta) (*GrantResponse, error)
	GrantPermission(ctx context.Context, actor *model.User, req GrantPermissionRequest, meta ClientMeta) (*GrantResponse, error)
	RevokeRoleAssignment(ctx context.Context, actor *model.User, id uuid.UUID, meta ClientMeta) error
	RevokePermissionGrant(ctx context.Context, actor *model.User, id uuid.UUID, meta ClientMeta) error
	// Seed installs the declarative default role → permission table, idempotently.
	Seed(ctx context.Context) error
	// UserAccess returns the roles and effective permissions active right now,
	// for profile responses.
	UserAccess(ctx context.Context, userID uuid.UUID) ([]model.Role, []model.Permission, error)
}

type rbacService struct {
	grants repository.GrantRepository
	audit  AuditService
}

func NewRBACService(grants repository.GrantRepository, audit AuditService) RBACService {
	return &rbacService{grants: grants, audit: audit}
}

// --- Implementation ---

func (s *rbacService) HasPermission(ctx context.Context, userID uuid.UUID, perm model.Permission) (bool, error) {
	now := time.Now().UTC()

	// Direct grants first. Order has no effect on the result, only on which
	// justification a caller could log.
	grants, err := s.grants.PermissionGrantsOf(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if g.Permission == perm && g.ActiveAt(now) {
			return true, nil
		}
	}

	assignments, err := s.grants.RoleAssignmentsOf(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if !a.ActiveAt(now) {
			continue
		}
		pairs, err := s.grants.RolePermissions(ctx, a.Role)
		if err != nil {
			return false, err
		}
		for _, pair := range pairs {
			if pair.Permission == perm {
				return true, nil
			}
		}
	}

	return false, nil
}

func (s *rbacService) AssignRole(ctx context.Context, actor *model.User, req AssignRoleRequest, meta ClientMeta) (*GrantResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, &auth.ValidationError{Field: "user_id", Message: "must be a valid uuid"}
	}
	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, &auth.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role '%s'", req.Role)}
	}

	assignment := &model.RoleAssignment{
		UserID:     userID,
		Role:       role,
		AssignedBy: &actor.ID,
		ExpiresAt:  req.ExpiresAt,
		IsActive:   true,
	}
	if err := s.grants.CreateRoleAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionRoleAssigned, "user", userID.String(),
		fmt.Sprintf("assigned role '%s'", role), meta)

	return toGrantResponse(assignment.ID, userID, actor.ID, role.String(), assignment.ExpiresAt, true), nil
}

func (s *rbacService) GrantPermission(ctx context.Context, actor *model.User, req GrantPermissionRequest, meta ClientMeta) (*GrantResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, &auth.ValidationError{Field: "user_id", Message: "must be a valid uuid"}
	}
	perm := model.Permission(req.Permission)
	if !perm.Valid() {
		return nil, &auth.ValidationError{Field: "permission", Message: fmt.Sprintf("unknown permission '%s'", req.Permission)}
	}

	grant := &model.PermissionGrant{
		UserID:     userID,
		Permission: perm,
		AssignedBy: &actor.ID,
		ExpiresAt:  req.ExpiresAt,
		IsActive:   true,
	}
	if err := s.grants.CreatePermissionGrant(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to grant permission: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionPermissionGranted, "user", userID.String(),
		fmt.Sprintf("granted permission '%s'", perm), meta)

	return toGrantResponse(grant.ID, userID, actor.ID, perm.String(), grant.ExpiresAt, true), nil
}

// RevokeRoleAssignment deactivates an assignment. Revocation is terminal: a
// revoked assignment is never reactivated, a new one must be created instead.
func (s *rbacService) RevokeRoleAssignment(ctx context.Context, actor *model.User, id uuid.UUID, meta ClientMeta) error {
	assignment, err := s.grants.GetRoleAssignment(ctx, id)
	if err != nil {
		return fmt.Errorf("role assignment not found: %w", err)
	}
	if err := s.grants.RevokeRoleAssignment(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke role assignment: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionRoleRevoked, "user", assignment.UserID.String(),
		fmt.Sprintf("revoked role '%s'", assignment.Role), meta)
	return nil
}

func (s *rbacService) RevokePermissionGrant(ctx context.Context, actor *model.User, id uuid.UUID, meta ClientMeta) error {
	grant, err := s.grants.GetPermissionGrant(ctx, id)
	if err != nil {
		return fmt.Errorf("permission grant not found: %w", err)
	}
	if err := s.grants.RevokePermissionGrant(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke permission grant: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionPermissionRevoked, "user", grant.UserID.String(),
		fmt.Sprintf("revoked permission '%s'", grant.Permission), meta)
	return nil
}

func (s *rbacService) Seed(ctx context.Context) error {
	return s.grants.SeedRolePermissions(ctx, model.DefaultRolePermissions)
}

func (s *rbacService) UserAccess(ctx context.Context, userID uuid.UUID) ([]model.Role, []model.Permission, error) {
	now := time.Now().UTC()

	assignments, err := s.grants.RoleAssignmentsOf(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	grants, err := s.grants.PermissionGrantsOf(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	roles := make([]model.Role, 0, len(assignments))
	permSet := make(map[model.Permission]struct{})
	for _, g := range grants {
		if g.ActiveAt(now) {
			permSet[g.Permission] = struct{}{}
		}
	}
	for _, a := range assignments {
		if !a.ActiveAt(now) {
			continue
		}
		roles = append(roles, a.Role)
		pairs, err := s.grants.RolePermissions(ctx, a.Role)
		if err != nil {
			return nil, nil, err
		}
		for _, pair := range pairs {
			permSet[pair.Permission] = struct{}{}
		}
	}

	perms := make([]model.Permission, 0, len(permSet))
	for _, p := range model.AllPermissions {
		if _, ok := permSet[p]; ok {
			perms = append(perms, p)
		}
	}
	return roles, perms, nil
}

// --- Helpers ---

func toGrantResponse(id, userID, assignedBy uuid.UUID, name string, expiresAt *time.Time, active bool) *GrantResponse {
	return &GrantResponse{
		ID:         id.String(),
		UserID:     userID.String(),
		Name:       name,
		AssignedBy: assignedBy.String(),
		ExpiresAt:  expiresAt,
		IsActive:   active,
	}
}
