package service

import (
	"context"
	"encoding/json"
	"fmt"

	"backend/internal/auth"
	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateSurveyRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Questions   []SurveyQuestionInput `json:"questions"`
}

type SurveyQuestionInput struct {
	QuestionText string   `json:"question_text" binding:"required"`
	QuestionType string   `json:"question_type" binding:"required"`
	Options      []string `json:"options"`
}

type SubmitResponseRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required"`
}

type AnswerInput struct {
	QuestionID  string `json:"question_id" binding:"required"`
	AnswerText  string `json:"answer_text"`
	AnswerValue *int   `json:"answer_value"`
}

var surveyQuestionTypes = map[string]bool{
	"text": true, "radio": true, "checkbox": true, "rating": true,
}

type SurveyService interface {
	Create(ctx context.Context, actor *model.User, req CreateSurveyRequest, meta ClientMeta) (*model.Survey, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Survey, error)
	List(ctx context.Context, page, limit int) ([]model.Survey, int64, error)
	SubmitResponse(ctx context.Context, actor *model.User, surveyID uuid.UUID, req SubmitResponseRequest, meta ClientMeta) (*model.SurveyResponse, error)
}

type surveyService struct {
	db    *gorm.DB
	audit AuditService
}

func NewSurveyService(db *gorm.DB, audit AuditService) SurveyService {
	return &surveyService{db: db, audit: audit}
}

// --- Implementation ---

func (s *surveyService) Create(ctx context.Context, actor *model.User, req CreateSurveyRequest, meta ClientMeta) (*model.Survey, error) {
	survey := &model.Survey{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   &actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(survey).Error; err != nil {
			return fmt.Errorf("failed to create survey: %w", err)
		}
		for _, q := range req.Questions {
			if !surveyQuestionTypes[q.QuestionType] {
				return &auth.ValidationError{Field: "question_type", Message: fmt.Sprintf("unknown question type '%s'", q.QuestionType)}
			}
			options := ""
			if len(q.Options) > 0 {
				encoded, err := json.Marshal(q.Options)
				if err != nil {
					return fmt.Errorf("failed to encode options: %w", err)
				}
				options = string(encoded)
			}
			question := &model.SurveyQuestion{
				SurveyID:     survey.ID,
				QuestionText: q.QuestionText,
				QuestionType: q.QuestionType,
				Options:      options,
			}
			if err := tx.Create(question).Error; err != nil {
				return fmt.Errorf("failed to create survey question: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &actor.ID, model.ActionCreateSurvey, "survey", survey.ID.String(), survey.Title, meta)
	return s.Get(ctx, survey.ID)
}

func (s *surveyService) Get(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	var survey model.Survey
	if err := s.db.WithContext(ctx).Preload("Questions").First(&survey, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("survey not found: %w", err)
	}
	return &survey, nil
}

func (s *surveyService) List(ctx context.Context, page, limit int) ([]model.Survey, int64, error) {
	var surveys []model.Survey
	var total int64

	if err := s.db.WithContext(ctx).Model(&model.Survey{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := s.db.WithContext(ctx).Preload("Questions").
		Order("created_at desc").Offset(offset).Limit(limit).Find(&surveys).Error; err != nil {
		return nil, 0, err
	}
	return surveys, total, nil
}

func (s *surveyService) SubmitResponse(ctx context.Context, actor *model.User, surveyID uuid.UUID, req SubmitResponseRequest, meta ClientMeta) (*model.SurveyResponse, error) {
	var survey model.Survey
	if err := s.db.WithContext(ctx).First(&survey, "id = ?", surveyID).Error; err != nil {
		return nil, fmt.Errorf("survey not found: %w", err)
	}
	if !survey.IsActive {
		return nil, &auth.ValidationError{Field: "survey", Message: "survey is closed"}
	}

	response := &model.SurveyResponse{
		SurveyID:     survey.ID,
		RespondentID: &actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(response).Error; err != nil {
			return fmt.Errorf("failed to create response: %w", err)
		}
		for _, a := range req.Answers {
			questionID, err := uuid.Parse(a.QuestionID)
			if err != nil {
				return &auth.ValidationError{Field: "question_id", Message: "must be a valid uuid"}
			}
			answer := &model.QuestionAnswer{
				ResponseID:  response.ID,
				QuestionID:  questionID,
				AnswerText:  a.AnswerText,
				AnswerValue: a.AnswerValue,
			}
			if err := tx.Create(answer).Error; err != nil {
				return fmt.Errorf("failed to save answer: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &actor.ID, model.ActionSubmitSurveyResponse, "survey", survey.ID.String(), survey.Title, meta)
	return response, nil
}
