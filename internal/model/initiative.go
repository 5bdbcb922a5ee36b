package model

import (
	"time"

	"github.com/google/uuid"
)

// Initiative is a department project or program tracked by the talent committee.
type Initiative struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"type:varchar(100);index" json:"category"`
	Status      string     `gorm:"type:varchar(50);default:'planned'" json:"status"` // planned, active, completed, cancelled
	StartDate   *time.Time `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
