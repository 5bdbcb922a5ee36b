package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InitiativeRepository interface {
	Create(ctx context.Context, ini *model.Initiative) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Initiative, error)
	List(ctx context.Context, category, status string, page, limit int) ([]model.Initiative, int64, error)
	Update(ctx context.Context, ini *model.Initiative) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type initiativeRepository struct {
	db *gorm.DB
}

func NewInitiativeRepository(db *gorm.DB) InitiativeRepository {
	return &initiativeRepository{db: db}
}

func (r *initiativeRepository) Create(ctx context.Context, ini *model.Initiative) error {
	return GetDB(ctx, r.db).Create(ini).Error
}

func (r *initiativeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Initiative, error) {
	var ini model.Initiative
	if err := GetDB(ctx, r.db).First(&ini, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ini, nil
}

func (r *initiativeRepository) List(ctx context.Context, category, status string, page, limit int) ([]model.Initiative, int64, error) {
	var items []model.Initiative
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Initiative{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *initiativeRepository) Update(ctx context.Context, ini *model.Initiative) error {
	return GetDB(ctx, r.db).Save(ini).Error
}

func (r *initiativeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Initiative{}).Error
}
