package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"backend/internal/auth"
	"backend/internal/model"

	"github.com/google/uuid"
)

const testPassword = "Str0ng!pass"

var (
	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash hashes the shared test password once; bcrypt is slow enough
// to matter across the suite.
func testPasswordHash(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		var err error
		testHash, err = auth.HashPassword(testPassword)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}
	})
	return testHash
}

type authFixture struct {
	svc    AuthService
	rbac   RBACService
	users  *fakeUserRepo
	grants *fakeGrantRepo
	audit  *fakeAuditRepo
	tokens *auth.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	grants := newFakeGrantRepo()
	auditRepo := &fakeAuditRepo{}
	auditSvc := NewAuditService(auditRepo, nil)
	rbac := NewRBACService(grants, auditSvc)
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	svc := NewAuthService(users, grants, rbac, auditSvc, tokens, fakeTxManager{})
	return &authFixture{svc: svc, rbac: rbac, users: users, grants: grants, audit: auditRepo, tokens: tokens}
}

func (f *authFixture) seedUser(t *testing.T, username string, active bool) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@dept.local",
		PasswordHash: testPasswordHash(t),
		FullName:     "Test " + username,
		NationalID:   "nid-" + username,
		IsActive:     active,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return user
}

func TestAuthenticateMergesUnknownUserAndWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "amal", true)

	_, errUnknown := f.svc.Authenticate(ctx, LoginRequest{Username: "nobody", Password: testPassword}, ClientMeta{})
	_, errWrongPw := f.svc.Authenticate(ctx, LoginRequest{Username: "amal", Password: "Wr0ng!pass"}, ClientMeta{})

	if !errors.Is(errUnknown, auth.ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrongPw, auth.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Error("unknown-user and wrong-password errors differ, account enumeration is possible")
	}
	if !f.audit.hasAction(model.ActionLoginFailed) {
		t.Error("failed logins were not audited")
	}
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "amal", false)

	_, err := f.svc.Authenticate(context.Background(), LoginRequest{Username: "amal", Password: testPassword}, ClientMeta{})
	if !errors.Is(err, auth.ErrInactiveAccount) {
		t.Fatalf("got %v, want ErrInactiveAccount", err)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "amal", true)

	res, err := f.svc.Authenticate(ctx, LoginRequest{Username: "amal", Password: testPassword}, ClientMeta{IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	claims, err := f.tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("token subject = %q, want %q", claims.Subject, user.ID.String())
	}

	stored, err := f.users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.LastLogin == nil {
		t.Error("LastLogin was not updated")
	}
	if !f.audit.hasAction(model.ActionLoginSuccess) {
		t.Error("successful login was not audited")
	}
}

func TestAuthorizeDeniedIsAudited(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "amal", true)

	token, _, err := f.tokens.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = f.svc.Authorize(ctx, token, model.PermManageUsers, ClientMeta{IP: "10.0.0.1"})
	if !errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatalf("got %v, want ErrPermissionDenied", err)
	}
	if !f.audit.hasAction(model.ActionPermissionDenied) {
		t.Error("denial was not audited")
	}
}

func TestAuthorizeGranted(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "amal", true)

	if err := f.grants.CreatePermissionGrant(ctx, &model.PermissionGrant{
		UserID: user.ID, Permission: model.PermViewReports, IsActive: true,
	}); err != nil {
		t.Fatalf("CreatePermissionGrant failed: %v", err)
	}

	token, _, err := f.tokens.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	actor, err := f.svc.Authorize(ctx, token, model.PermViewReports, ClientMeta{})
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if actor.ID != user.ID {
		t.Errorf("actor = %s, want %s", actor.ID, user.ID)
	}
	if f.audit.hasAction(model.ActionPermissionDenied) {
		t.Error("granted access produced a denial audit entry")
	}
}

func TestDeactivationInvalidatesOutstandingToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "head", true)
	user := f.seedUser(t, "amal", true)

	token, _, err := f.tokens.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Token works while the account is active
	if _, err := f.svc.AuthorizeToken(ctx, token, ClientMeta{}); err != nil {
		t.Fatalf("AuthorizeToken failed before deactivation: %v", err)
	}

	if err := f.svc.SetActive(ctx, admin, user.ID, false, ClientMeta{}); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	_, err = f.svc.AuthorizeToken(ctx, token, ClientMeta{})
	if !errors.Is(err, auth.ErrInactiveAccount) {
		t.Fatalf("got %v, want ErrInactiveAccount for deactivated account's token", err)
	}
	if !f.audit.hasAction(model.ActionUserDeactivated) {
		t.Error("deactivation was not audited")
	}
}

func TestAuthorizeTokenMalformed(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.AuthorizeToken(context.Background(), "garbage", ClientMeta{})
	if !errors.Is(err, auth.ErrTokenMalformed) {
		t.Fatalf("got %v, want ErrTokenMalformed", err)
	}
	if !f.audit.hasAction(model.ActionAuthFailed) {
		t.Error("token failure was not audited")
	}
}

func TestInitSystemGuard(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	req := InitSystemRequest{
		Username:   "head",
		Email:      "head@dept.local",
		Password:   testPassword,
		FullName:   "Department Head",
		NationalID: "nid-head",
	}
	res, err := f.svc.InitSystem(ctx, req, ClientMeta{})
	if err != nil {
		t.Fatalf("InitSystem failed: %v", err)
	}

	// The bootstrap user must come out holding every permission via the
	// department head role.
	if len(res.Permissions) != len(model.AllPermissions) {
		t.Errorf("bootstrap user resolved %d permissions, want %d", len(res.Permissions), len(model.AllPermissions))
	}
	if !f.audit.hasAction(model.ActionSystemInitialized) {
		t.Error("initialization was not audited")
	}

	// Second call must refuse: the system already has users
	req.Username = "second"
	req.Email = "second@dept.local"
	req.NationalID = "nid-second"
	_, err = f.svc.InitSystem(ctx, req, ClientMeta{})
	var vErr *auth.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("second InitSystem: got %v, want ValidationError", err)
	}
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	actor := f.seedUser(t, "head", true)

	req := RegisterUserRequest{
		Username:   "head", // collides with the seeded user
		Email:      "other@dept.local",
		Password:   testPassword,
		FullName:   "Someone Else",
		NationalID: "nid-other",
	}
	_, err := f.svc.Register(ctx, actor, req, ClientMeta{})
	if !errors.Is(err, auth.ErrDuplicateIdentity) {
		t.Fatalf("got %v, want ErrDuplicateIdentity", err)
	}
}

func TestRegisterConcurrentDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	actor := f.seedUser(t, "head", true)

	// Two registrations race for the same username. The store's uniqueness
	// check is the arbiter: exactly one must win, the loser must see
	// ErrDuplicateIdentity rather than a silent overwrite.
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := RegisterUserRequest{
				Username:   "amal",
				Email:      fmt.Sprintf("amal%d@dept.local", i),
				Password:   testPassword,
				FullName:   "Amal",
				NationalID: fmt.Sprintf("nid-amal-%d", i),
			}
			_, err := f.svc.Register(ctx, actor, req, ClientMeta{})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, duplicates int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, auth.ErrDuplicateIdentity):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || duplicates != 1 {
		t.Fatalf("got %d successes and %d duplicate errors, want exactly 1 of each", successes, duplicates)
	}

	if _, err := f.users.GetByUsername(ctx, "amal"); err != nil {
		t.Errorf("winning registration not stored: %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)
	actor := f.seedUser(t, "head", true)

	req := RegisterUserRequest{
		Username:   "amal",
		Email:      "amal@dept.local",
		Password:   "short",
		FullName:   "Amal",
		NationalID: "nid-amal",
	}
	_, err := f.svc.Register(context.Background(), actor, req, ClientMeta{})
	var vErr *auth.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	f := newAuthFixture(t)
	actor := f.seedUser(t, "head", true)

	req := RegisterUserRequest{
		Username:   "amal",
		Email:      "amal@dept.local",
		Password:   testPassword,
		FullName:   "Amal",
		NationalID: "nid-amal",
		Roles:      []string{"janitor"},
	}
	_, err := f.svc.Register(context.Background(), actor, req, ClientMeta{})
	var vErr *auth.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError for unknown role", err)
	}
}

func TestRegisterWithInitialAccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	actor := f.seedUser(t, "head", true)

	if err := f.rbac.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	req := RegisterUserRequest{
		Username:    "amal",
		Email:       "amal@dept.local",
		Password:    testPassword,
		FullName:    "Amal",
		NationalID:  "nid-amal",
		Roles:       []string{string(model.RoleTrainer)},
		Permissions: []string{string(model.PermViewReports)},
	}
	res, err := f.svc.Register(ctx, actor, req, ClientMeta{})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	hasRole := false
	for _, r := range res.Roles {
		if r == string(model.RoleTrainer) {
			hasRole = true
		}
	}
	if !hasRole {
		t.Error("initial role assignment missing from response")
	}

	userID, err := uuid.Parse(res.ID)
	if err != nil {
		t.Fatalf("response ID is not a uuid: %v", err)
	}
	allowed, err := f.rbac.HasPermission(ctx, userID, model.PermViewReports)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if !allowed {
		t.Error("initial direct grant does not resolve")
	}
	if !f.audit.hasAction(model.ActionUserCreated) {
		t.Error("registration was not audited")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	f := newAuthFixture(t)
	actor := f.seedUser(t, "amal", true)

	err := f.svc.ChangePassword(context.Background(), actor,
		ChangePasswordRequest{CurrentPassword: "Wr0ng!pass", NewPassword: "N3w!passw0rd"}, ClientMeta{})
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	if !f.audit.hasAction(model.ActionPasswordChangeFailed) {
		t.Error("failed password change was not audited")
	}
}

func TestAuditFailureDoesNotBlockLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "amal", true)
	f.audit.failErr = errors.New("audit store down")

	res, err := f.svc.Authenticate(context.Background(), LoginRequest{Username: "amal", Password: testPassword}, ClientMeta{})
	if err != nil {
		t.Fatalf("Authenticate failed when audit store was down: %v", err)
	}
	if res.Token == "" {
		t.Error("no token issued")
	}
}
