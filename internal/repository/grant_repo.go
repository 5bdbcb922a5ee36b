package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GrantRepository persists role assignments, direct permission grants and the
// seeded role → permission table. Assignments and grants are never hard-deleted;
// revocation flips is_active so the audit history keeps its meaning.
type GrantRepository interface {
	CreateRoleAssignment(ctx context.Context, a *model.RoleAssignment) error
	CreatePermissionGrant(ctx context.Context, g *model.PermissionGrant) error
	RoleAssignmentsOf(ctx context.Context, userID uuid.UUID) ([]model.RoleAssignment, error)
	PermissionGrantsOf(ctx context.Context, userID uuid.UUID) ([]model.PermissionGrant, error)
	GetRoleAssignment(ctx context.Context, id uuid.UUID) (*model.RoleAssignment, error)
	GetPermissionGrant(ctx context.Context, id uuid.UUID) (*model.PermissionGrant, error)
	RevokeRoleAssignment(ctx context.Context, id uuid.UUID) error
	RevokePermissionGrant(ctx context.Context, id uuid.UUID) error
	RolePermissions(ctx context.Context, role model.Role) ([]model.RolePermission, error)
	SeedRolePermissions(ctx context.Context, table map[model.Role][]model.Permission) error
}

type grantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) GrantRepository {
	return &grantRepository{db: db}
}

func (r *grantRepository) CreateRoleAssignment(ctx context.Context, a *model.RoleAssignment) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *grantRepository) CreatePermissionGrant(ctx context.Context, g *model.PermissionGrant) error {
	return GetDB(ctx, r.db).Create(g).Error
}

func (r *grantRepository) RoleAssignmentsOf(ctx context.Context, userID uuid.UUID) ([]model.RoleAssignment, error) {
	var assignments []model.RoleAssignment
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *grantRepository) PermissionGrantsOf(ctx context.Context, userID uuid.UUID) ([]model.PermissionGrant, error) {
	var grants []model.PermissionGrant
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *grantRepository) GetRoleAssignment(ctx context.Context, id uuid.UUID) (*model.RoleAssignment, error) {
	var a model.RoleAssignment
	if err := GetDB(ctx, r.db).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *grantRepository) GetPermissionGrant(ctx context.Context, id uuid.UUID) (*model.PermissionGrant, error) {
	var g model.PermissionGrant
	if err := GetDB(ctx, r.db).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *grantRepository) RevokeRoleAssignment(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.RoleAssignment{}).
		Where("id = ?", id).Update("is_active", false).Error
}

func (r *grantRepository) RevokePermissionGrant(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.PermissionGrant{}).
		Where("id = ?", id).Update("is_active", false).Error
}

func (r *grantRepository) RolePermissions(ctx context.Context, role model.Role) ([]model.RolePermission, error) {
	var pairs []model.RolePermission
	if err := GetDB(ctx, r.db).Where("role = ?", role).Find(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

// SeedRolePermissions inserts the declarative role → permission table. Seeding
// is idempotent: existing pairs are left untouched, re-running never duplicates
// rows.
func (r *grantRepository) SeedRolePermissions(ctx context.Context, table map[model.Role][]model.Permission) error {
	db := GetDB(ctx, r.db)
	for role, perms := range table {
		for _, perm := range perms {
			pair := model.RolePermission{Role: role, Permission: perm}
			if err := db.Where("role = ? AND permission = ?", role, perm).
				FirstOrCreate(&pair).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
