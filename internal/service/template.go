package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TemplateService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTemplateService(db *gorm.DB, log *zap.Logger) *TemplateService {
	return &TemplateService{db: db, log: log}
}

func (s *TemplateService) Create(ctx context.Context, input CreateTemplateInput) (*models.AssessmentTemplate, error) {
	name, err := normalizeRequiredString(input.Name, "name")
	if err != nil {
		return nil, err
	}
	version := strings.TrimSpace(input.Version)
	if version == "" {
		return nil, apperror.New(apperror.CodeValidation, "version is required")
	}

	template := models.AssessmentTemplate{
		AssessmentTypeID: input.AssessmentTypeID,
		Name:             name,
		Version:          version,
		Description:      input.Description,
		IsActive:         true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.AssessmentType{}, input.AssessmentTypeID, "assessment type"); err != nil {
			return err
		}
		taken, err := templateVersionExists(tx, name, version, nil)
		if err != nil {
			return dbError(s.log, "createTemplate", err)
		}
		if taken {
			return apperror.New(apperror.CodeConflict, "template with this name and version already exists")
		}
		if err := tx.Create(&template).Error; err != nil {
			return dbError(s.log, "createTemplate", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (s *TemplateService) GetByID(ctx context.Context, id uint) (*models.AssessmentTemplate, error) {
	var template models.AssessmentTemplate
	if err := s.db.WithContext(ctx).First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "assessment template not found")
		}
		return nil, dbError(s.log, "getTemplate", err)
	}
	return &template, nil
}

func (s *TemplateService) GetByType(ctx context.Context, assessmentTypeID uint) ([]models.AssessmentTemplate, error) {
	if err := ensureExists(s.db.WithContext(ctx), &models.AssessmentType{}, assessmentTypeID, "assessment type"); err != nil {
		return nil, err
	}
	var templates []models.AssessmentTemplate
	err := s.db.WithContext(ctx).
		Where("assessment_type_id = ?", assessmentTypeID).
		Order("name ASC, version ASC").
		Find(&templates).Error
	if err != nil {
		return nil, dbError(s.log, "listTemplates", err)
	}
	return templates, nil
}

func (s *TemplateService) GetActive(ctx context.Context) ([]models.AssessmentTemplate, error) {
	var templates []models.AssessmentTemplate
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC, version ASC").
		Find(&templates).Error
	if err != nil {
		return nil, dbError(s.log, "listActiveTemplates", err)
	}
	return templates, nil
}

func (s *TemplateService) Update(ctx context.Context, id uint, input UpdateTemplateInput) (*models.AssessmentTemplate, error) {
	var template models.AssessmentTemplate

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&template, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "assessment template not found")
			}
			return dbError(s.log, "updateTemplate", err)
		}

		newName := template.Name
		newVersion := template.Version
		updates := map[string]interface{}{}

		if input.Name != nil {
			name, err := normalizeRequiredString(*input.Name, "name")
			if err != nil {
				return err
			}
			newName = name
			updates["name"] = name
		}
		if input.Version != nil {
			version := strings.TrimSpace(*input.Version)
			if version == "" {
				return apperror.New(apperror.CodeValidation, "version is required")
			}
			newVersion = version
			updates["version"] = version
		}
		if input.Name != nil || input.Version != nil {
			taken, err := templateVersionExists(tx, newName, newVersion, &id)
			if err != nil {
				return dbError(s.log, "updateTemplate", err)
			}
			if taken {
				return apperror.New(apperror.CodeConflict, "template with this name and version already exists")
			}
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&template).Updates(updates).Error; err != nil {
			return dbError(s.log, "updateTemplate", err)
		}
		return tx.First(&template, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// Delete removes a template. Deletion is blocked while questions or
// assessment instances reference it.
func (s *TemplateService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var template models.AssessmentTemplate
		if err := tx.First(&template, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "assessment template not found")
			}
			return dbError(s.log, "deleteTemplate", err)
		}

		var questionCount, instanceCount int64
		if err := tx.Model(&models.AssessmentQuestion{}).Where("template_id = ?", id).Count(&questionCount).Error; err != nil {
			return dbError(s.log, "deleteTemplate", err)
		}
		if err := tx.Model(&models.AssessmentInstance{}).Where("template_id = ?", id).Count(&instanceCount).Error; err != nil {
			return dbError(s.log, "deleteTemplate", err)
		}
		if questionCount > 0 || instanceCount > 0 {
			return apperror.New(apperror.CodeDependency,
				fmt.Sprintf("template has %d questions and %d instances; remove them first", questionCount, instanceCount)).
				WithDetails(map[string]interface{}{
					"question_count": questionCount,
					"instance_count": instanceCount,
				})
		}

		if err := tx.Delete(&models.AssessmentTemplate{}, id).Error; err != nil {
			return dbError(s.log, "deleteTemplate", err)
		}
		return nil
	})
}

// Deactivate soft-disables the template without deleting it.
func (s *TemplateService) Deactivate(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.AssessmentTemplate{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return dbError(s.log, "deactivateTemplate", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.CodeNotFound, "assessment template not found")
	}
	return nil
}

func templateVersionExists(tx *gorm.DB, name, version string, excludeID *uint) (bool, error) {
	query := tx.Model(&models.AssessmentTemplate{}).
		Where("LOWER(name) = LOWER(?) AND version = ?", name, version)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
