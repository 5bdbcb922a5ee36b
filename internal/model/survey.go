package model

import (
	"time"

	"github.com/google/uuid"
)

// Survey is a questionnaire distributed to trainees or trainers.
type Survey struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Questions []SurveyQuestion `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type SurveyQuestion struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SurveyID     uuid.UUID `gorm:"type:uuid;not null;index" json:"survey_id"`
	QuestionText string    `gorm:"type:text;not null" json:"question_text"`
	QuestionType string    `gorm:"type:varchar(50);not null" json:"question_type"` // text, radio, checkbox, rating
	Options      string    `gorm:"type:text" json:"options"`                       // JSON-encoded option list
}

type SurveyResponse struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SurveyID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"survey_id"`
	RespondentID *uuid.UUID `gorm:"type:uuid" json:"respondent_id"` // Nullable for anonymous responses
	SubmittedAt  time.Time  `gorm:"autoCreateTime" json:"submitted_at"`

	Answers []QuestionAnswer `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

type QuestionAnswer struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ResponseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"response_id"`
	QuestionID  uuid.UUID `gorm:"type:uuid;not null" json:"question_id"`
	AnswerText  string    `gorm:"type:text" json:"answer_text"`
	AnswerValue *int      `json:"answer_value"` // For rating questions
}
