package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type RegisterUserRequest struct {
	Username       string   `json:"username" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required"`
	FullName       string   `json:"full_name" binding:"required"`
	NationalID     string   `json:"national_id" binding:"required"`
	Phone          string   `json:"phone"`
	Department     string   `json:"department"`
	Specialization string   `json:"specialization"`
	Position       string   `json:"position"`
	HireDate       string   `json:"hire_date"` // YYYY-MM-DD
	Roles          []string `json:"roles"`
	Permissions    []string `json:"permissions"`
}

type InitSystemRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	NationalID string `json:"national_id" binding:"required"`
	Phone      string `json:"phone"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UserResponse exposes a user without the password hash.
type UserResponse struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	FullName       string   `json:"full_name"`
	NationalID     string   `json:"national_id"`
	Phone          string   `json:"phone"`
	Department     string   `json:"department"`
	Specialization string   `json:"specialization"`
	Position       string   `json:"position"`
	IsActive       bool     `json:"is_active"`
	LastLogin      string   `json:"last_login,omitempty"`
	CreatedAt      string   `json:"created_at"`
	Roles          []string `json:"roles"`
	Permissions    []string `json:"permissions"`
}

// --- Interface ---

// AuthService is the authorization boundary. Every protected operation calls
// Authorize explicitly at its top; there is no implicit middleware
// interception.
type AuthService interface {
	Authenticate(ctx context.Context, req LoginRequest, meta ClientMeta) (*LoginResponse, error)
	// Authorize composes token verification, the account standing check and
	// permission resolution. Denials are audited before the error is returned.
	Authorize(ctx context.Context, token string, perm model.Permission, meta ClientMeta) (*model.User, error)
	// AuthorizeToken verifies the token and account standing only, for
	// operations any authenticated actor may perform.
	AuthorizeToken(ctx context.Context, token string, meta ClientMeta) (*model.User, error)
	Register(ctx context.Context, actor *model.User, req RegisterUserRequest, meta ClientMeta) (*UserResponse, error)
	InitSystem(ctx context.Context, req InitSystemRequest, meta ClientMeta) (*UserResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error)
	UpdateProfile(ctx context.Context, actor *model.User, req UpdateProfileRequest, meta ClientMeta) (*UserResponse, error)
	ChangePassword(ctx context.Context, actor *model.User, req ChangePasswordRequest, meta ClientMeta) error
	ListUsers(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error)
	SetActive(ctx context.Context, actor *model.User, targetID uuid.UUID, active bool, meta ClientMeta) error
}

type authService struct {
	users  repository.UserRepository
	grants repository.GrantRepository
	rbac   RBACService
	audit  AuditService
	tokens *auth.TokenService
	tx     repository.TransactionManager
}

func NewAuthService(
	users repository.UserRepository,
	grants repository.GrantRepository,
	rbac RBACService,
	audit AuditService,
	tokens *auth.TokenService,
	tx repository.TransactionManager,
) AuthService {
	return &authService{users: users, grants: grants, rbac: rbac, audit: audit, tokens: tokens, tx: tx}
}

// --- Implementation ---

// Authenticate verifies credentials and issues a token. Unknown usernames and
// wrong passwords produce the same ErrInvalidCredentials so responses cannot
// be used to enumerate accounts.
func (s *authService) Authenticate(ctx context.Context, req LoginRequest, meta ClientMeta) (*LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		s.audit.Record(ctx, nil, model.ActionLoginFailed, "user", req.Username,
			"failed login attempt for username: "+req.Username, meta)
		return nil, auth.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.audit.Record(ctx, &user.ID, model.ActionLoginFailed, "user", req.Username,
			"failed login attempt for username: "+req.Username, meta)
		return nil, auth.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.audit.Record(ctx, &user.ID, model.ActionLoginFailed, "user", req.Username,
			"login attempt for deactivated account", meta)
		return nil, auth.ErrInactiveAccount
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.audit.Record(ctx, &user.ID, model.ActionLoginSuccess, "user", req.Username, "successful login", meta)

	resp, err := s.toUserResponse(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User:      *resp,
	}, nil
}

func (s *authService) Authorize(ctx context.Context, token string, perm model.Permission, meta ClientMeta) (*model.User, error) {
	user, err := s.AuthorizeToken(ctx, token, meta)
	if err != nil {
		return nil, err
	}

	allowed, err := s.rbac.HasPermission(ctx, user.ID, perm)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permission: %w", err)
	}
	if !allowed {
		// Audited synchronously, before the caller can return its rejection.
		s.audit.Record(ctx, &user.ID, model.ActionPermissionDenied, "permission", perm.String(),
			"unauthorized access attempt for permission: "+perm.String(), meta)
		return nil, auth.ErrPermissionDenied
	}

	return user, nil
}

func (s *authService) AuthorizeToken(ctx context.Context, token string, meta ClientMeta) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.audit.Record(ctx, nil, model.ActionAuthFailed, "token", "", err.Error(), meta)
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, auth.ErrTokenMalformed
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.audit.Record(ctx, nil, model.ActionAuthFailed, "token", claims.Subject,
			"token references unknown user", meta)
		return nil, auth.ErrTokenMalformed
	}

	// Deactivation takes effect for already-issued tokens: standing is
	// re-checked on every verification, not only at issuance.
	if !user.IsActive {
		s.audit.Record(ctx, &user.ID, model.ActionAuthFailed, "user", user.Username,
			"token presented for deactivated account", meta)
		return nil, auth.ErrInactiveAccount
	}

	return user, nil
}

func (s *authService) Register(ctx context.Context, actor *model.User, req RegisterUserRequest, meta ClientMeta) (*UserResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	roles := make([]model.Role, 0, len(req.Roles))
	for _, r := range req.Roles {
		role := model.Role(r)
		if !role.Valid() {
			return nil, &auth.ValidationError{Field: "roles", Message: fmt.Sprintf("unknown role '%s'", r)}
		}
		roles = append(roles, role)
	}
	perms := make([]model.Permission, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		perm := model.Permission(p)
		if !perm.Valid() {
			return nil, &auth.ValidationError{Field: "permissions", Message: fmt.Sprintf("unknown permission '%s'", p)}
		}
		perms = append(perms, perm)
	}

	var hireDate *time.Time
	if req.HireDate != "" {
		parsed, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			return nil, &auth.ValidationError{Field: "hire_date", Message: "must be formatted YYYY-MM-DD"}
		}
		hireDate = &parsed
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   hash,
		FullName:       req.FullName,
		NationalID:     req.NationalID,
		Phone:          req.Phone,
		Department:     req.Department,
		Specialization: req.Specialization,
		Position:       req.Position,
		HireDate:       hireDate,
		IsActive:       true,
	}

	// User plus initial assignments and grants are one atomic unit; a user
	// without its intended roles must never be observable.
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		for _, role := range roles {
			assignment := &model.RoleAssignment{UserID: user.ID, Role: role, AssignedBy: &actor.ID, IsActive: true}
			if err := s.grants.CreateRoleAssignment(txCtx, assignment); err != nil {
				return err
			}
		}
		for _, perm := range perms {
			grant := &model.PermissionGrant{UserID: user.ID, Permission: perm, AssignedBy: &actor.ID, IsActive: true}
			if err := s.grants.CreatePermissionGrant(txCtx, grant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateIdentity) {
			return nil, auth.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionUserCreated, "user", user.ID.String(),
		"created user: "+user.Username, meta)

	return s.toUserResponse(ctx, user)
}

// InitSystem bootstraps the very first department head. The zero-users check
// and the insert run in one transaction so two concurrent calls cannot both
// create a "first" administrator.
func (s *authService) InitSystem(ctx context.Context, req InitSystemRequest, meta ClientMeta) (*UserResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		NationalID:   req.NationalID,
		Phone:        req.Phone,
		Department:   "Computer Technology and Information Department",
		Position:     "Department Head",
		IsActive:     true,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.users.Count(txCtx)
		if err != nil {
			return err
		}
		if count > 0 {
			return &auth.ValidationError{Field: "system", Message: "system is already initialized"}
		}

		if err := s.rbac.Seed(txCtx); err != nil {
			return fmt.Errorf("failed to seed role permissions: %w", err)
		}

		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}

		assignment := &model.RoleAssignment{
			UserID:     user.ID,
			Role:       model.RoleDepartmentHead,
			AssignedBy: &user.ID,
			IsActive:   true,
		}
		return s.grants.CreateRoleAssignment(txCtx, assignment)
	})
	if err != nil {
		var vErr *auth.ValidationError
		if errors.As(err, &vErr) || errors.Is(err, auth.ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to initialize system: %w", err)
	}

	s.audit.Record(ctx, &user.ID, model.ActionSystemInitialized, "system", "init",
		"system initialized, first department head created", meta)

	return s.toUserResponse(ctx, user)
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return s.toUserResponse(ctx, user)
}

func (s *authService) UpdateProfile(ctx context.Context, actor *model.User, req UpdateProfileRequest, meta ClientMeta) (*UserResponse, error) {
	if req.FullName != "" {
		actor.FullName = req.FullName
	}
	if req.Email != "" {
		actor.Email = req.Email
	}
	if req.Phone != "" {
		actor.Phone = req.Phone
	}

	if err := s.users.Update(ctx, actor); err != nil {
		if errors.Is(err, auth.ErrDuplicateIdentity) {
			return nil, auth.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionProfileUpdated, "user", actor.ID.String(),
		"profile updated", meta)

	return s.toUserResponse(ctx, actor)
}

func (s *authService) ChangePassword(ctx context.Context, actor *model.User, req ChangePasswordRequest, meta ClientMeta) error {
	if !auth.CheckPassword(actor.PasswordHash, req.CurrentPassword) {
		s.audit.Record(ctx, &actor.ID, model.ActionPasswordChangeFailed, "user", actor.ID.String(),
			"password change attempt with wrong current password", meta)
		return auth.ErrInvalidCredentials
	}

	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	actor.PasswordHash = hash

	if err := s.users.Update(ctx, actor); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionPasswordChanged, "user", actor.ID.String(),
		"password changed", meta)
	return nil
}

func (s *authService) ListUsers(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.users.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserResponse(&users[i], activeRoles(users[i].Roles, now), activePerms(users[i].Permissions, now)))
	}
	return responses, total, nil
}

// SetActive deactivates or reactivates an account. Deactivation invalidates
// the target's outstanding tokens on their next verification.
func (s *authService) SetActive(ctx context.Context, actor *model.User, targetID uuid.UUID, active bool, meta ClientMeta) error {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	target.IsActive = active
	if err := s.users.Update(ctx, target); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	action := model.ActionUserDeactivated
	details := "deactivated user: " + target.Username
	if active {
		action = model.ActionUserReactivated
		details = "reactivated user: " + target.Username
	}
	s.audit.Record(ctx, &actor.ID, action, "user", target.ID.String(), details, meta)
	return nil
}

// --- Helpers ---

func (s *authService) toUserResponse(ctx context.Context, user *model.User) (*UserResponse, error) {
	roles, perms, err := s.rbac.UserAccess(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, r.String())
	}
	permNames := make([]string, 0, len(perms))
	for _, p := range perms {
		permNames = append(permNames, p.String())
	}
	return mapUserResponse(user, roleNames, permNames), nil
}

func mapUserResponse(user *model.User, roles, perms []string) *UserResponse {
	lastLogin := ""
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.Format(time.RFC3339)
	}
	return &UserResponse{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		NationalID:     user.NationalID,
		Phone:          user.Phone,
		Department:     user.Department,
		Specialization: user.Specialization,
		Position:       user.Position,
		IsActive:       user.IsActive,
		LastLogin:      lastLogin,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
		Roles:          roles,
		Permissions:    perms,
	}
}

func activeRoles(assignments []model.RoleAssignment, now time.Time) []string {
	out := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if a.ActiveAt(now) {
			out = append(out, a.Role.String())
		}
	}
	return out
}

func activePerms(grants []model.PermissionGrant, now time.Time) []string {
	out := make([]string, 0, len(grants))
	for _, g := range grants {
		if g.ActiveAt(now) {
			out = append(out, g.Permission.String())
		}
	}
	return out
}
