package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered member of the training department.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username       string     `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	Email          string     `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash   string     `gorm:"type:varchar(255);not null" json:"-"` // Never serialized
	FullName       string     `gorm:"type:varchar(200);not null" json:"full_name"`
	NationalID     string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"national_id"`
	Phone          string     `gorm:"type:varchar(20)" json:"phone"`
	Department     string     `gorm:"type:varchar(100)" json:"department"`
	Specialization string     `gorm:"type:varchar(100)" json:"specialization"`
	Position       string     `gorm:"type:varchar(100)" json:"position"`
	HireDate       *time.Time `gorm:"type:date" json:"hire_date"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Roles       []RoleAssignment  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
	Permissions []PermissionGrant `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// RoleAssignment binds a user to one of the fixed roles. Assignments are never
// hard-deleted: revocation flips is_active and expiry is evaluated at read time.
type RoleAssignment struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Role       Role       `gorm:"type:varchar(50);not null" json:"role"`
	AssignedBy *uuid.UUID `gorm:"type:uuid" json:"assigned_by"`
	AssignedAt time.Time  `gorm:"autoCreateTime" json:"assigned_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
}

func (RoleAssignment) TableName() string { return "user_roles" }

// ActiveAt reports whether the assignment confers its role at instant t.
// An assignment whose expiry equals t is already expired.
func (a RoleAssignment) ActiveAt(t time.Time) bool {
	return a.IsActive && (a.ExpiresAt == nil || t.Before(*a.ExpiresAt))
}

// PermissionGrant binds a permission directly to a user, additive to whatever
// the user's roles confer. Same lifecycle rules as RoleAssignment.
type PermissionGrant struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Permission Permission `gorm:"type:varchar(50);not null" json:"permission"`
	AssignedBy *uuid.UUID `gorm:"type:uuid" json:"assigned_by"`
	AssignedAt time.Time  `gorm:"autoCreateTime" json:"assigned_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
}

func (PermissionGrant) TableName() string { return "user_permissions" }

// ActiveAt reports whether the grant confers its permission at instant t.
func (g PermissionGrant) ActiveAt(t time.Time) bool {
	return g.IsActive && (g.ExpiresAt == nil || t.Before(*g.ExpiresAt))
}

// RolePermission is a seeded role → permission pair. Rows are created once by
// the idempotent seeder and define what each role confers.
type RolePermission struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Role       Role       `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_perm" json:"role"`
	Permission Permission `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_perm" json:"permission"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
