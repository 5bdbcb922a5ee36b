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

type CreateInitiativeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`
}

type UpdateInitiativeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type InitiativeResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   string `json:"created_at"`
}

var initiativeStatuses = map[string]bool{
	"planned": true, "active": true, "completed": true, "cancelled": true,
}

type InitiativeService interface {
	Create(ctx context.Context, actor *model.User, req CreateInitiativeRequest, meta ClientMeta) (*InitiativeResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*InitiativeResponse, error)
	List(ctx context.Context, category, status string, page, limit int) ([]InitiativeResponse, int64, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateInitiativeRequest, meta ClientMeta) (*InitiativeResponse, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID, meta ClientMeta) error
}

type initiativeService struct {
	repo  repository.InitiativeRepository
	audit AuditService
}

func NewInitiativeService(repo repository.InitiativeRepository, audit AuditService) InitiativeService {
	return &initiativeService{repo: repo, audit: audit}
}

func (s *initiativeService) Create(ctx context.Context, actor *model.User, req CreateInitiativeRequest, meta ClientMeta) (*InitiativeResponse, error) {
	status := req.Status
	if status == "" {
		status = "planned"
	}
	if !initiativeStatuses[status] {
		return nil, &auth.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status '%s'", status)}
	}

	startDate, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}

	ini := &model.Initiative{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      status,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedBy:   &actor.ID,
	}
	if err := s.repo.Create(ctx, ini); err != nil {
		return nil, fmt.Errorf("failed to create initiative: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionCreateInitiative, "initiative", ini.ID.String(), ini.Title, meta)
	return toInitiativeResponse(ini), nil
}

func (s *initiativeService) Get(ctx context.Context, id uuid.UUID) (*InitiativeResponse, error) {
	ini, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("initiative not found: %w", err)
	}
	return toInitiativeResponse(ini), nil
}

func (s *initiativeService) List(ctx context.Context, category, status string, page, limit int) ([]InitiativeResponse, int64, error) {
	items, total, err := s.repo.List(ctx, category, status, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]InitiativeResponse, 0, len(items))
	for i := range items {
		res = append(res, *toInitiativeResponse(&items[i]))
	}
	return res, total, nil
}

func (s *initiativeService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateInitiativeRequest, meta ClientMeta) (*InitiativeResponse, error) {
	ini, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("initiative not found: %w", err)
	}

	if req.Title != "" {
		ini.Title = req.Title
	}
	if req.Description != "" {
		ini.Description = req.Description
	}
	if req.Category != "" {
		ini.Category = req.Category
	}
	if req.Status != "" {
		if !initiativeStatuses[req.Status] {
			return nil, &auth.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status '%s'", req.Status)}
		}
		ini.Status = req.Status
	}
	if req.StartDate != "" {
		startDate, err := parseDate(req.StartDate, "start_date")
		if err != nil {
			return nil, err
		}
		ini.StartDate = startDate
	}
	if req.EndDate != "" {
		endDate, err := parseDate(req.EndDate, "end_date")
		if err != nil {
			return nil, err
		}
		ini.EndDate = endDate
	}

	if err := s.repo.Update(ctx, ini); err != nil {
		return nil, fmt.Errorf("failed to update initiative: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionUpdateInitiative, "initiative", ini.ID.String(), ini.Title, meta)
	return toInitiativeResponse(ini), nil
}

func (s *initiativeService) Delete(ctx context.Context, actor *model.User, id uuid.UUID, meta ClientMeta) error {
	ini, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("initiative not found: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete initiative: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionDeleteInitiative, "initiative", id.String(), ini.Title, meta)
	return nil
}

// --- Helpers ---

func parseDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, &auth.ValidationError{Field: field, Message: "must be formatted YYYY-MM-DD"}
	}
	return &parsed, nil
}

func toInitiativeResponse(ini *model.Initiative) *InitiativeResponse {
	res := &InitiativeResponse{
		ID:          ini.ID.String(),
		Title:       ini.Title,
		Description: ini.Description,
		Category:    ini.Category,
		Status:      ini.Status,
		CreatedAt:   ini.CreatedAt.Format(time.RFC3339),
	}
	if ini.StartDate != nil {
		res.StartDate = ini.StartDate.Format("2006-01-02")
	}
	if ini.EndDate != nil {
		res.EndDate = ini.EndDate.Format("2006-01-02")
	}
	if ini.CreatedBy != nil {
		res.CreatedBy = ini.CreatedBy.String()
	}
	return res
}
