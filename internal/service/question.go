package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestionService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewQuestionService(db *gorm.DB, log *zap.Logger) *QuestionService {
	return &QuestionService{db: db, log: log}
}

func (s *QuestionService) Create(ctx context.Context, input CreateQuestionInput) (*models.AssessmentQuestion, error) {
	text, err := normalizeQuestionText(input.QuestionText)
	if err != nil {
		return nil, err
	}

	question := models.AssessmentQuestion{
		TemplateID:   input.TemplateID,
		CategoryID:   input.CategoryID,
		QuestionText: text,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.AssessmentTemplate{}, input.TemplateID, "assessment template"); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.AssessmentCategory{}, input.CategoryID, "category"); err != nil {
			return err
		}
		taken, err := questionTextExists(tx, input.TemplateID, text, nil)
		if err != nil {
			return dbError(s.log, "createQuestion", err)
		}
		if taken {
			return apperror.New(apperror.CodeConflict, "question text already exists in this template")
		}
		if err := tx.Create(&question).Error; err != nil {
			return dbError(s.log, "createQuestion", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *QuestionService) GetByID(ctx context.Context, id uint) (*models.AssessmentQuestion, error) {
	var question models.AssessmentQuestion
	if err := s.db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "question not found")
		}
		return nil, dbError(s.log, "getQuestion", err)
	}
	return &question, nil
}

// GetByTemplate returns a template's questions in display order.
func (s *QuestionService) GetByTemplate(ctx context.Context, templateID uint) ([]models.AssessmentQuestion, error) {
	if err := ensureExists(s.db.WithContext(ctx), &models.AssessmentTemplate{}, templateID, "assessment template"); err != nil {
		return nil, err
	}
	var questions []models.AssessmentQuestion
	err := s.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("display_order ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, dbError(s.log, "listQuestions", err)
	}
	return questions, nil
}

func (s *QuestionService) Update(ctx context.Context, id uint, input UpdateQuestionInput) (*models.AssessmentQuestion, error) {
	var question models.AssessmentQuestion

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&question, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "question not found")
			}
			return dbError(s.log, "updateQuestion", err)
		}

		updates := map[string]interface{}{}
		if input.QuestionText != nil {
			text, err := normalizeQuestionText(*input.QuestionText)
			if err != nil {
				return err
			}
			taken, err := questionTextExists(tx, question.TemplateID, text, &id)
			if err != nil {
				return dbError(s.log, "updateQuestion", err)
			}
			if taken {
				return apperror.New(apperror.CodeConflict, "question text already exists in this template")
			}
			updates["question_text"] = text
		}
		if input.CategoryID != nil {
			if err := ensureExists(tx, &models.AssessmentCategory{}, *input.CategoryID, "category"); err != nil {
				return err
			}
			updates["category_id"] = *input.CategoryID
		}
		if input.DisplayOrder != nil {
			updates["display_order"] = *input.DisplayOrder
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&question).Updates(updates).Error; err != nil {
			return dbError(s.log, "updateQuestion", err)
		}
		return tx.First(&question, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// Delete removes a question. Deletion is blocked while responses reference
// it.
func (s *QuestionService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.AssessmentQuestion
		if err := tx.First(&question, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "question not found")
			}
			return dbError(s.log, "deleteQuestion", err)
		}

		var responseCount int64
		if err := tx.Model(&models.AssessmentResponse{}).Where("question_id = ?", id).Count(&responseCount).Error; err != nil {
			return dbError(s.log, "deleteQuestion", err)
		}
		if responseCount > 0 {
			return apperror.New(apperror.CodeDependency,
				fmt.Sprintf("question has %d responses; remove them first", responseCount)).
				WithDetails(map[string]interface{}{"response_count": responseCount})
		}

		if err := tx.Delete(&models.AssessmentQuestion{}, id).Error; err != nil {
			return dbError(s.log, "deleteQuestion", err)
		}
		return nil
	})
}

// Deactivate soft-disables the question without deleting it.
func (s *QuestionService) Deactivate(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.AssessmentQuestion{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return dbError(s.log, "deactivateQuestion", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.CodeNotFound, "question not found")
	}
	return nil
}

// Reorder applies a batch of display-order updates for one template's
// questions in a single transaction and returns the fresh ordering.
func (s *QuestionService) Reorder(ctx context.Context, templateID uint, items []ReorderItem) ([]models.AssessmentQuestion, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.AssessmentTemplate{}, templateID, "assessment template"); err != nil {
			return err
		}
		for _, item := range items {
			result := tx.Model(&models.AssessmentQuestion{}).
				Where("id = ? AND template_id = ?", item.ID, templateID).
				Update("display_order", item.DisplayOrder)
			if result.Error != nil {
				return dbError(s.log, "reorderQuestions", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperror.New(apperror.CodeNotFound,
					fmt.Sprintf("question %d not found for this template", item.ID))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByTemplate(ctx, templateID)
}

func normalizeQuestionText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(text)
	if length < 5 || length > 500 {
		return "", apperror.New(apperror.CodeValidation, "question_text length must be in range 5..500")
	}
	return text, nil
}

func questionTextExists(tx *gorm.DB, templateID uint, text string, excludeID *uint) (bool, error) {
	query := tx.Model(&models.AssessmentQuestion{}).
		Where("template_id = ?", templateID).
		Where("LOWER(question_text) = LOWER(?)", text)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
