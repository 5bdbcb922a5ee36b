package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QualityStandard is a department quality criterion with a numeric target.
type QualityStandard struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code            string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Name            string          `gorm:"type:varchar(200);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	TargetValue     decimal.Decimal `gorm:"type:decimal(12,4)" json:"target_value"`
	MeasurementUnit string          `gorm:"type:varchar(50)" json:"measurement_unit"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Indicators []QualityIndicator `gorm:"foreignKey:StandardID;constraint:OnDelete:CASCADE" json:"indicators,omitempty"`
}

// QualityIndicator is a measurable KPI belonging to a standard.
type QualityIndicator struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StandardID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"standard_id"`
	Code              string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Name              string          `gorm:"type:varchar(200);not null" json:"name"`
	TargetValue       decimal.Decimal `gorm:"type:decimal(12,4)" json:"target_value"`
	WarningThreshold  decimal.Decimal `gorm:"type:decimal(12,4)" json:"warning_threshold"`
	CriticalThreshold decimal.Decimal `gorm:"type:decimal(12,4)" json:"critical_threshold"`
	Weight            decimal.Decimal `gorm:"type:decimal(6,3);default:1" json:"weight"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// QualityMeasurement is one recorded value for an indicator. Verification is a
// separate privileged step.
type QualityMeasurement struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StandardID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"standard_id"`
	IndicatorID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"indicator_id"`
	MeasurementDate time.Time       `gorm:"type:date;not null" json:"measurement_date"`
	Value           decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"value"`
	Notes           string          `gorm:"type:text" json:"notes"`
	MeasuredBy      *uuid.UUID      `gorm:"type:uuid" json:"measured_by"`
	VerifiedBy      *uuid.UUID      `gorm:"type:uuid" json:"verified_by"`
	IsVerified      bool            `gorm:"default:false" json:"is_verified"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
