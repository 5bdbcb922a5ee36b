package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// In-memory fakes backing the service tests. They mimic only the behavior the
// services rely on: ID assignment on insert, unique identity columns and
// filtered listing.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email || existing.NationalID == user.NationalID {
			return auth.ErrDuplicateIdentity
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *fakeUserRepo) List(ctx context.Context, search string, page, limit int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.User
	for _, user := range r.users {
		if search == "" ||
			strings.Contains(user.Username, search) ||
			strings.Contains(user.FullName, search) ||
			strings.Contains(user.Email, search) ||
			strings.Contains(user.NationalID, search) {
			matched = append(matched, *user)
		}
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.New("record not found")
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type fakeGrantRepo struct {
	mu          sync.Mutex
	assignments map[uuid.UUID]*model.RoleAssignment
	grants      map[uuid.UUID]*model.PermissionGrant
	rolePerms   []model.RolePermission
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{
		assignments: make(map[uuid.UUID]*model.RoleAssignment),
		grants:      make(map[uuid.UUID]*model.PermissionGrant),
	}
}

func (r *fakeGrantRepo) CreateRoleAssignment(ctx context.Context, a *model.RoleAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	clone := *a
	r.assignments[a.ID] = &clone
	return nil
}

func (r *fakeGrantRepo) CreatePermissionGrant(ctx context.Context, g *model.PermissionGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	clone := *g
	r.grants[g.ID] = &clone
	return nil
}

func (r *fakeGrantRepo) RoleAssignmentsOf(ctx context.Context, userID uuid.UUID) ([]model.RoleAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.RoleAssignment
	for _, a := range r.assignments {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeGrantRepo) PermissionGrantsOf(ctx context.Context, userID uuid.UUID) ([]model.PermissionGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PermissionGrant
	for _, g := range r.grants {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGrantRepo) GetRoleAssignment(ctx context.Context, id uuid.UUID) (*model.RoleAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	clone := *a
	return &clone, nil
}

func (r *fakeGrantRepo) GetPermissionGrant(ctx context.Context, id uuid.UUID) (*model.PermissionGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	clone := *g
	return &clone, nil
}

func (r *fakeGrantRepo) RevokeRoleAssignment(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return errors.New("record not found")
	}
	a.IsActive = false
	return nil
}

func (r *fakeGrantRepo) RevokePermissionGrant(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[id]
	if !ok {
		return errors.New("record not found")
	}
	g.IsActive = false
	return nil
}

func (r *fakeGrantRepo) RolePermissions(ctx context.Context, role model.Role) ([]model.RolePermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.RolePermission
	for _, pair := range r.rolePerms {
		if pair.Role == role {
			out = append(out, pair)
		}
	}
	return out, nil
}

func (r *fakeGrantRepo) SeedRolePermissions(ctx context.Context, table map[model.Role][]model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for role, perms := range table {
		for _, perm := range perms {
			exists := false
			for _, pair := range r.rolePerms {
				if pair.Role == role && pair.Permission == perm {
					exists = true
					break
				}
			}
			if !exists {
				r.rolePerms = append(r.rolePerms, model.RolePermission{Role: role, Permission: perm})
			}
		}
	}
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
	failErr error
}

func (r *fakeAuditRepo) Append(ctx context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.AuditLog
	for _, e := range r.entries {
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Resource != "" && e.Resource != filter.Resource {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.CreatedAt.Before(*filter.To) {
			continue
		}
		matched = append(matched, e)
	}
	// Same contract as the real repo: newest first
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// actions returns the recorded action names in append order.
func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func (r *fakeAuditRepo) hasAction(action string) bool {
	for _, a := range r.actions() {
		if a == action {
			return true
		}
	}
	return false
}

// fakeTxManager runs the callback directly; the fakes have no transactional
// semantics to enforce.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
