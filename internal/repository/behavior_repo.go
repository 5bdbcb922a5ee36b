package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

type BehaviorRepository interface {
	Create(ctx context.Context, rec *model.BehaviorRecord) error
	List(ctx context.Context, traineeID string, page, limit int) ([]model.BehaviorRecord, int64, error)
}

type behaviorRepository struct {
	db *gorm.DB
}

func NewBehaviorRepository(db *gorm.DB) BehaviorRepository {
	return &behaviorRepository{db: db}
}

func (r *behaviorRepository) Create(ctx context.Context, rec *model.BehaviorRecord) error {
	return GetDB(ctx, r.db).Create(rec).Error
}

func (r *behaviorRepository) List(ctx context.Context, traineeID string, page, limit int) ([]model.BehaviorRecord, int64, error) {
	var records []model.BehaviorRecord
	var total int64

	query := GetDB(ctx, r.db).Model(&model.BehaviorRecord{})
	if traineeID != "" {
		query = query.Where("trainee_id = ?", traineeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("recorded_at desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
