package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
)

type CreateBehaviorRecordRequest struct {
	TraineeID    string `json:"trainee_id" binding:"required"`
	BehaviorType string `json:"behavior_type" binding:"required"`
	Description  string `json:"description"`
}

type BehaviorRecordResponse struct {
	ID           string `json:"id"`
	TraineeID    string `json:"trainee_id"`
	BehaviorType string `json:"behavior_type"`
	Description  string `json:"description"`
	RecordedBy   string `json:"recorded_by,omitempty"`
	RecordedAt   string `json:"recorded_at"`
}

type BehaviorService interface {
	Create(ctx context.Context, actor *model.User, req CreateBehaviorRecordRequest, meta ClientMeta) (*BehaviorRecordResponse, error)
	List(ctx context.Context, traineeID string, page, limit int) ([]BehaviorRecordResponse, int64, error)
}

type behaviorService struct {
	repo  repository.BehaviorRepository
	audit AuditService
}

func NewBehaviorService(repo repository.BehaviorRepository, audit AuditService) BehaviorService {
	return &behaviorService{repo: repo, audit: audit}
}

func (s *behaviorService) Create(ctx context.Context, actor *model.User, req CreateBehaviorRecordRequest, meta ClientMeta) (*BehaviorRecordResponse, error) {
	rec := &model.BehaviorRecord{
		TraineeID:    req.TraineeID,
		BehaviorType: req.BehaviorType,
		Description:  req.Description,
		RecordedBy:   &actor.ID,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create behavior record: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionCreateBehaviorRecord, "behavior_record", rec.ID.String(),
		fmt.Sprintf("recorded '%s' for trainee %s", rec.BehaviorType, rec.TraineeID), meta)
	return toBehaviorResponse(rec), nil
}

func (s *behaviorService) List(ctx context.Context, traineeID string, page, limit int) ([]BehaviorRecordResponse, int64, error) {
	records, total, err := s.repo.List(ctx, traineeID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]BehaviorRecordResponse, 0, len(records))
	for i := range records {
		res = append(res, *toBehaviorResponse(&records[i]))
	}
	return res, total, nil
}

func toBehaviorResponse(rec *model.BehaviorRecord) *BehaviorRecordResponse {
	res := &BehaviorRecordResponse{
		ID:           rec.ID.String(),
		TraineeID:    rec.TraineeID,
		BehaviorType: rec.BehaviorType,
		Description:  rec.Description,
		RecordedAt:   rec.RecordedAt.Format(time.RFC3339),
	}
	if rec.RecordedBy != nil {
		res.RecordedBy = rec.RecordedBy.String()
	}
	return res
}
