package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionLoginSuccess         = "LOGIN_SUCCESS"
	ActionLoginFailed          = "LOGIN_FAILED"
	ActionAuthFailed           = "AUTH_FAILED"
	ActionPermissionDenied     = "PERMISSION_DENIED"
	ActionSystemInitialized    = "SYSTEM_INITIALIZED"
	ActionUserCreated          = "USER_CREATED"
	ActionUserDeactivated      = "USER_DEACTIVATED"
	ActionUserReactivated      = "USER_REACTIVATED"
	ActionProfileUpdated       = "PROFILE_UPDATED"
	ActionPasswordChanged      = "PASSWORD_CHANGED"
	ActionPasswordChangeFailed = "PASSWORD_CHANGE_FAILED"
	ActionRoleAssigned         = "ROLE_ASSIGNED"
	ActionRoleRevoked          = "ROLE_REVOKED"
	ActionPermissionGranted    = "PERMISSION_GRANTED"
	ActionPermissionRevoked    = "PERMISSION_REVOKED"

	ActionCreateInitiative      = "CREATE_INITIATIVE"
	ActionUpdateInitiative      = "UPDATE_INITIATIVE"
	ActionDeleteInitiative      = "DELETE_INITIATIVE"
	ActionCreateBehaviorRecord  = "CREATE_BEHAVIOR_RECORD"
	ActionCreateQualityStandard = "CREATE_QUALITY_STANDARD"
	ActionRecordMeasurement     = "RECORD_MEASUREMENT"
	ActionVerifyMeasurement     = "VERIFY_MEASUREMENT"
	ActionCreateSurvey          = "CREATE_SURVEY"
	ActionSubmitSurveyResponse  = "SUBMIT_SURVEY_RESPONSE"
)

// AuditLog is an append-only record of a security-relevant event. The
// application exposes no update or delete path for these rows, and UserID is
// nullable so that failed or anonymous attempts can still be recorded and the
// history outlives any actor.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Resource   string     `gorm:"type:varchar(100);index" json:"resource"`
	ResourceID string     `gorm:"type:varchar(50)" json:"resource_id"`
	Details    string     `gorm:"type:text" json:"details"`
	IPAddress  string     `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent  string     `gorm:"type:varchar(500)" json:"user_agent"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
