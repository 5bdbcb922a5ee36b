package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/auth"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateQualityStandardRequest struct {
	Code            string          `json:"code" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	TargetValue     decimal.Decimal `json:"target_value"`
	MeasurementUnit string          `json:"measurement_unit"`
}

type CreateQualityIndicatorRequest struct {
	Code              string          `json:"code" binding:"required"`
	Name              string          `json:"name" binding:"required"`
	TargetValue       decimal.Decimal `json:"target_value"`
	WarningThreshold  decimal.Decimal `json:"warning_threshold"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold"`
	Weight            decimal.Decimal `json:"weight"`
}

type RecordMeasurementRequest struct {
	IndicatorID     string          `json:"indicator_id" binding:"required"`
	MeasurementDate string          `json:"measurement_date" binding:"required"` // YYYY-MM-DD
	Value           decimal.Decimal `json:"value"`
	Notes           string          `json:"notes"`
}

type QualityService interface {
	CreateStandard(ctx context.Context, actor *model.User, req CreateQualityStandardRequest, meta ClientMeta) (*model.QualityStandard, error)
	ListStandards(ctx context.Context, page, limit int) ([]model.QualityStandard, int64, error)
	AddIndicator(ctx context.Context, actor *model.User, standardID uuid.UUID, req CreateQualityIndicatorRequest, meta ClientMeta) (*model.QualityIndicator, error)
	RecordMeasurement(ctx context.Context, actor *model.User, req RecordMeasurementRequest, meta ClientMeta) (*model.QualityMeasurement, error)
	VerifyMeasurement(ctx context.Context, actor *model.User, id uuid.UUID, meta ClientMeta) (*model.QualityMeasurement, error)
	ListMeasurements(ctx context.Context, indicatorID uuid.UUID, page, limit int) ([]model.QualityMeasurement, int64, error)
}

type qualityService struct {
	db    *gorm.DB
	audit AuditService
}

func NewQualityService(db *gorm.DB, audit AuditService) QualityService {
	return &qualityService{db: db, audit: audit}
}

// --- Implementation ---

func (s *qualityService) CreateStandard(ctx context.Context, actor *model.User, req CreateQualityStandardRequest, meta ClientMeta) (*model.QualityStandard, error) {
	standard := &model.QualityStandard{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		TargetValue:     req.TargetValue,
		MeasurementUnit: req.MeasurementUnit,
		IsActive:        true,
	}
	if err := s.db.WithContext(ctx).Create(standard).Error; err != nil {
		return nil, fmt.Errorf("failed to create quality standard: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionCreateQualityStandard, "quality_standard", standard.ID.String(), standard.Code, meta)
	return standard, nil
}

func (s *qualityService) ListStandards(ctx context.Context, page, limit int) ([]model.QualityStandard, int64, error) {
	var standards []model.QualityStandard
	var total int64

	if err := s.db.WithContext(ctx).Model(&model.QualityStandard{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := s.db.WithContext(ctx).Preload("Indicators").
		Order("code asc").Offset(offset).Limit(limit).Find(&standards).Error; err != nil {
		return nil, 0, err
	}
	return standards, total, nil
}

func (s *qualityService) AddIndicator(ctx context.Context, actor *model.User, standardID uuid.UUID, req CreateQualityIndicatorRequest, meta ClientMeta) (*model.QualityIndicator, error) {
	var standard model.QualityStandard
	if err := s.db.WithContext(ctx).First(&standard, "id = ?", standardID).Error; err != nil {
		return nil, fmt.Errorf("quality standard not found: %w", err)
	}

	weight := req.Weight
	if weight.IsZero() {
		weight = decimal.NewFromInt(1)
	}

	indicator := &model.QualityIndicator{
		StandardID:        standard.ID,
		Code:              req.Code,
		Name:              req.Name,
		TargetValue:       req.TargetValue,
		WarningThreshold:  req.WarningThreshold,
		CriticalThreshold: req.CriticalThreshold,
		Weight:            weight,
		IsActive:          true,
	}
	if err := s.db.WithContext(ctx).Create(indicator).Error; err != nil {
		return nil, fmt.Errorf("failed to create quality indicator: %w", err)
	}
	return indicator, nil
}

func (s *qualityService) RecordMeasurement(ctx context.Context, actor *model.User, req RecordMeasurementRequest, meta ClientMeta) (*model.QualityMeasurement, error) {
	indicatorID, err := uuid.Parse(req.IndicatorID)
	if err != nil {
		return nil, &auth.ValidationError{Field: "indicator_id", Message: "must be a valid uuid"}
	}
	date, err := time.Parse("2006-01-02", req.MeasurementDate)
	if err != nil {
		return nil, &auth.ValidationError{Field: "measurement_date", Message: "must be formatted YYYY-MM-DD"}
	}

	var indicator model.QualityIndicator
	if err := s.db.WithContext(ctx).First(&indicator, "id = ?", indicatorID).Error; err != nil {
		return nil, fmt.Errorf("quality indicator not found: %w", err)
	}

	measurement := &model.QualityMeasurement{
		StandardID:      indicator.StandardID,
		IndicatorID:     indicator.ID,
		MeasurementDate: date,
		Value:           req.Value,
		Notes:           req.Notes,
		MeasuredBy:      &actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(measurement).Error; err != nil {
		return nil, fmt.Errorf("failed to record measurement: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionRecordMeasurement, "quality_measurement", measurement.ID.String(),
		fmt.Sprintf("indicator %s value %s", indicator.Code, req.Value.String()), meta)
	return measurement, nil
}

func (s *qualityService) VerifyMeasurement(ctx context.Context, actor *model.User, id uuid.UUID, meta ClientMeta) (*model.QualityMeasurement, error) {
	var measurement model.QualityMeasurement
	if err := s.db.WithContext(ctx).First(&measurement, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("measurement not found: %w", err)
	}

	measurement.IsVerified = true
	measurement.VerifiedBy = &actor.ID
	if err := s.db.WithContext(ctx).Save(&measurement).Error; err != nil {
		return nil, fmt.Errorf("failed to verify measurement: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.ActionVerifyMeasurement, "quality_measurement", measurement.ID.String(), "", meta)
	return &measurement, nil
}

func (s *qualityService) ListMeasurements(ctx context.Context, indicatorID uuid.UUID, page, limit int) ([]model.QualityMeasurement, int64, error) {
	var measurements []model.QualityMeasurement
	var total int64

	query := s.db.WithContext(ctx).Model(&model.QualityMeasurement{}).Where("indicator_id = ?", indicatorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("measurement_date desc").Offset(offset).Limit(limit).Find(&measurements).Error; err != nil {
		return nil, 0, err
	}
	return measurements, total, nil
}
