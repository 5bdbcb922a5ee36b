package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM. TranslateError
// maps driver-level unique violations onto gorm.ErrDuplicatedKey so the
// repositories can surface them as duplicate-identity failures.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RoleAssignment{},
		&model.PermissionGrant{},
		&model.RolePermission{},
		&model.AuditLog{},
		&model.Initiative{},
		&model.BehaviorRecord{},
		&model.QualityStandard{},
		&model.QualityIndicator{},
		&model.QualityMeasurement{},
		&model.Survey{},
		&model.SurveyQuestion{},
		&model.SurveyResponse{},
		&model.QuestionAnswer{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
