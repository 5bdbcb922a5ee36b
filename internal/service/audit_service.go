package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
)

// ClientMeta carries the request origin recorded with every audit entry.
type ClientMeta struct {
	IP        string
	UserAgent string
}

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	Resource   string `json:"resource"`
	ResourceID string `json:"resource_id"`
	Details    string `json:"details"`
	IPAddress  string `json:"ip_address"`
	UserAgent  string `json:"user_agent"`
	CreatedAt  string `json:"created_at"`
}

type AuditQuery struct {
	UserID   string
	Action   string
	Resource string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

type AuditService interface {
	// Record appends one immutable entry. It never fails the caller: a write
	// failure degrades to an operational warning.
	Record(ctx context.Context, userID *uuid.UUID, action, resource, resourceID, details string, meta ClientMeta)
	List(ctx context.Context, q AuditQuery) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
	hub  *websocket.Hub
}

// NewAuditService creates a new AuditService instance. hub may be nil; when
// set, recorded entries are also broadcast to connected event-feed clients.
func NewAuditService(repo repository.AuditRepository, hub *websocket.Hub) AuditService {
	return &auditService{repo: repo, hub: hub}
}

func (s *auditService) Record(ctx context.Context, userID *uuid.UUID, action, resource, resourceID, details string, meta ClientMeta) {
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		log.Printf("WARNING: failed to write audit entry (action=%s resource=%s): %v", action, resource, err)
		return
	}

	if s.hub != nil {
		if payload, err := json.Marshal(entry); err == nil {
			s.hub.Publish(payload)
		}
	}
}

func (s *auditService) List(ctx context.Context, q AuditQuery) ([]AuditLogResponse, int64, error) {
	filter := repository.AuditFilter{
		Action:   q.Action,
		Resource: q.Resource,
		From:     q.From,
		To:       q.To,
	}
	if q.UserID != "" {
		id, err := uuid.Parse(q.UserID)
		if err == nil {
			filter.UserID = &id
		}
	}

	logs, total, err := s.repo.List(ctx, filter, q.Page, q.Limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Username
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			Username:   username,
			Action:     l.Action,
			Resource:   l.Resource,
			ResourceID: l.ResourceID,
			Details:    l.Details,
			IPAddress:  l.IPAddress,
			UserAgent:  l.UserAgent,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
