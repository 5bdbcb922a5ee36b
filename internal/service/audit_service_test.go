package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
)

func TestRecordStoresEntry(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, nil)
	ctx := context.Background()
	userID := uuid.New()

	svc.Record(ctx, &userID, model.ActionLoginSuccess, "user", "amal", "successful login",
		ClientMeta{IP: "10.0.0.1", UserAgent: "test-agent"})

	if len(repo.entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.Action != model.ActionLoginSuccess {
		t.Errorf("action = %q, want %q", entry.Action, model.ActionLoginSuccess)
	}
	if entry.IPAddress != "10.0.0.1" || entry.UserAgent != "test-agent" {
		t.Errorf("client meta not recorded: %q %q", entry.IPAddress, entry.UserAgent)
	}
	if entry.UserID == nil || *entry.UserID != userID {
		t.Error("user id not recorded")
	}
}

func TestRecordBestEffort(t *testing.T) {
	repo := &fakeAuditRepo{failErr: errors.New("disk full")}
	svc := NewAuditService(repo, nil)

	// Must return normally despite the storage failure
	svc.Record(context.Background(), nil, model.ActionLoginFailed, "user", "amal", "", ClientMeta{})

	if len(repo.entries) != 0 {
		t.Errorf("stored %d entries despite failing repo", len(repo.entries))
	}
}

func TestListFilters(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, nil)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	svc.Record(ctx, &alice, model.ActionLoginSuccess, "user", "alice", "", ClientMeta{})
	svc.Record(ctx, &alice, model.ActionPermissionDenied, "permission", "manage_users", "", ClientMeta{})
	svc.Record(ctx, &bob, model.ActionLoginFailed, "user", "bob", "", ClientMeta{})

	logs, total, err := svc.List(ctx, AuditQuery{UserID: alice.String(), Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Errorf("user filter: got %d/%d entries, want 2/2", len(logs), total)
	}

	logs, total, err = svc.List(ctx, AuditQuery{Action: model.ActionPermissionDenied, Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("action filter: got %d entries, want 1", total)
	}
	if logs[0].ResourceID != "manage_users" {
		t.Errorf("resource id = %q, want %q", logs[0].ResourceID, "manage_users")
	}
}

func TestListTimeWindow(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, nil)
	ctx := context.Background()

	svc.Record(ctx, nil, model.ActionLoginFailed, "user", "amal", "", ClientMeta{})

	future := time.Now().UTC().Add(time.Hour)
	_, total, err := svc.List(ctx, AuditQuery{From: &future, Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 0 {
		t.Errorf("future window returned %d entries, want 0", total)
	}

	past := time.Now().UTC().Add(-time.Hour)
	_, total, err = svc.List(ctx, AuditQuery{From: &past, Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Errorf("open window returned %d entries, want 1", total)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, nil)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Appended out of chronological order on purpose
	entries := []struct {
		action string
		at     time.Time
	}{
		{model.ActionLoginFailed, base.Add(time.Minute)},
		{model.ActionPermissionDenied, base.Add(2 * time.Minute)},
		{model.ActionLoginSuccess, base},
	}
	for _, e := range entries {
		if err := repo.Append(ctx, &model.AuditLog{Action: e.action, CreatedAt: e.at}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	logs, _, err := svc.List(ctx, AuditQuery{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{model.ActionPermissionDenied, model.ActionLoginFailed, model.ActionLoginSuccess}
	if len(logs) != len(want) {
		t.Fatalf("got %d entries, want %d", len(logs), len(want))
	}
	for i, action := range want {
		if logs[i].Action != action {
			t.Errorf("position %d: action = %q, want %q (entries must come newest first)", i, logs[i].Action, action)
		}
	}
}

func TestListSystemEntries(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, nil)
	ctx := context.Background()

	// Entries recorded with no acting user label themselves as System
	svc.Record(ctx, nil, model.ActionLoginFailed, "user", "ghost", "", ClientMeta{})

	logs, _, err := svc.List(ctx, AuditQuery{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d entries, want 1", len(logs))
	}
	if logs[0].Username != "System" {
		t.Errorf("username = %q, want %q", logs[0].Username, "System")
	}
}
