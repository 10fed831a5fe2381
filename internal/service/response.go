package service

import (
	"context"
	"errors"
	"fmt"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Scores are a 1..7 Likert scale.
	MinScore = 1
	MaxScore = 7
)

type ResponseService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewResponseService(db *gorm.DB, log *zap.Logger) *ResponseService {
	return &ResponseService{db: db, log: log}
}

func validateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return apperror.New(apperror.CodeValidation,
			fmt.Sprintf("score must be between %d and %d", MinScore, MaxScore))
	}
	return nil
}

// Create records a score for one (instance, question) pair. The score bound
// is checked before any database round trip; it is the cheapest and most
// common failure.
func (s *ResponseService) Create(ctx context.Context, instanceID, questionID uint, score int) (*models.AssessmentResponse, error) {
	if err := validateScore(score); err != nil {
		return nil, err
	}

	response := models.AssessmentResponse{
		InstanceID: instanceID,
		QuestionID: questionID,
		Score:      score,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.AssessmentInstance{}, instanceID, "assessment instance"); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.AssessmentQuestion{}, questionID, "question"); err != nil {
			return err
		}

		var count int64
		err := tx.Model(&models.AssessmentResponse{}).
			Where("instance_id = ? AND question_id = ?", instanceID, questionID).
			Count(&count).Error
		if err != nil {
			return dbError(s.log, "createResponse", err)
		}
		if count > 0 {
			return apperror.New(apperror.CodeConflict, "a response already exists for this instance and question")
		}

		if err := tx.Create(&response).Error; err != nil {
			return dbError(s.log, "createResponse", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *ResponseService) GetByID(ctx context.Context, id uint) (*models.AssessmentResponse, error) {
	var response models.AssessmentResponse
	if err := s.db.WithContext(ctx).First(&response, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "response not found")
		}
		return nil, dbError(s.log, "getResponse", err)
	}
	return &response, nil
}

func (s *ResponseService) GetByInstance(ctx context.Context, instanceID uint) ([]models.AssessmentResponse, error) {
	if err := ensureExists(s.db.WithContext(ctx), &models.AssessmentInstance{}, instanceID, "assessment instance"); err != nil {
		return nil, err
	}
	var responses []models.AssessmentResponse
	err := s.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		Order("question_id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, dbError(s.log, "listResponses", err)
	}
	return responses, nil
}

// Update re-scores an existing response.
func (s *ResponseService) Update(ctx context.Context, id uint, score int) (*models.AssessmentResponse, error) {
	if err := validateScore(score); err != nil {
		return nil, err
	}

	var response models.AssessmentResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&response, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "response not found")
			}
			return dbError(s.log, "updateResponse", err)
		}
		if err := tx.Model(&response).Update("score", score).Error; err != nil {
			return dbError(s.log, "updateResponse", err)
		}
		return tx.First(&response, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ValidateInstanceCompletion diffs the instance's template questions against
// its recorded responses. Pure read; no side effects.
func (s *ResponseService) ValidateInstanceCompletion(ctx context.Context, instanceID uint) (*CompletionResult, error) {
	var instance models.AssessmentInstance
	if err := s.db.WithContext(ctx).First(&instance, instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "assessment instance not found")
		}
		return nil, dbError(s.log, "validateInstanceCompletion", err)
	}

	var questionIDs []uint
	err := s.db.WithContext(ctx).
		Model(&models.AssessmentQuestion{}).
		Where("template_id = ? AND is_active = ?", instance.TemplateID, true).
		Order("display_order ASC, id ASC").
		Pluck("id", &questionIDs).Error
	if err != nil {
		return nil, dbError(s.log, "validateInstanceCompletion", err)
	}

	var answeredIDs []uint
	err = s.db.WithContext(ctx).
		Model(&models.AssessmentResponse{}).
		Where("instance_id = ?", instanceID).
		Pluck("question_id", &answeredIDs).Error
	if err != nil {
		return nil, dbError(s.log, "validateInstanceCompletion", err)
	}

	answered := make(map[uint]struct{}, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = struct{}{}
	}

	missing := []uint{}
	for _, id := range questionIDs {
		if _, ok := answered[id]; !ok {
			missing = append(missing, id)
		}
	}

	return &CompletionResult{
		IsComplete:       len(missing) == 0,
		MissingQuestions: missing,
	}, nil
}
