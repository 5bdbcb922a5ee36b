package model

import (
	"time"

	"github.com/google/uuid"
)

// BehaviorRecord documents a trainee behavior incident. TraineeID comes from
// the external registration system and is not a foreign key here.
type BehaviorRecord struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TraineeID    string     `gorm:"type:varchar(50);not null;index" json:"trainee_id"`
	BehaviorType string     `gorm:"type:varchar(100);not null" json:"behavior_type"`
	Description  string     `gorm:"type:text" json:"description"`
	RecordedBy   *uuid.UUID `gorm:"type:uuid" json:"recorded_by"`
	RecordedAt   time.Time  `gorm:"autoCreateTime" json:"recorded_at"`
}
