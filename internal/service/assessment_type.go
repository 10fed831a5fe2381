package service

import (
	"context"
	"errors"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AssessmentTypeService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAssessmentTypeService(db *gorm.DB, log *zap.Logger) *AssessmentTypeService {
	return &AssessmentTypeService{db: db, log: log}
}

func (s *AssessmentTypeService) Create(ctx context.Context, input CreateTypeInput) (*models.AssessmentType, error) {
	name, err := normalizeRequiredString(input.Name, "name")
	if err != nil {
		return nil, err
	}

	assessmentType := models.AssessmentType{
		Name:        name,
		Description: input.Description,
		Purpose:     input.Purpose,
		IsActive:    true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := typeNameExists(tx, name, nil)
		if err != nil {
			return dbError(s.log, "createAssessmentType", err)
		}
		if taken {
			return apperror.New(apperror.CodeConflict, "assessment type name already exists")
		}
		if err := tx.Create(&assessmentType).Error; err != nil {
			return dbError(s.log, "createAssessmentType", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assessmentType, nil
}

func (s *AssessmentTypeService) GetByID(ctx context.Context, id uint) (*models.AssessmentType, error) {
	var assessmentType models.AssessmentType
	if err := s.db.WithContext(ctx).First(&assessmentType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "assessment type not found")
		}
		return nil, dbError(s.log, "getAssessmentType", err)
	}
	return &assessmentType, nil
}

func (s *AssessmentTypeService) GetAllActive(ctx context.Context) ([]models.AssessmentType, error) {
	var types []models.AssessmentType
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&types).Error
	if err != nil {
		return nil, dbError(s.log, "listAssessmentTypes", err)
	}
	return types, nil
}

func (s *AssessmentTypeService) Update(ctx context.Context, id uint, input UpdateTypeInput) (*models.AssessmentType, error) {
	var assessmentType models.AssessmentType

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&assessmentType, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "assessment type not found")
			}
			return dbError(s.log, "updateAssessmentType", err)
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			name, err := normalizeRequiredString(*input.Name, "name")
			if err != nil {
				return err
			}
			taken, err := typeNameExists(tx, name, &id)
			if err != nil {
				return dbError(s.log, "updateAssessmentType", err)
			}
			if taken {
				return apperror.New(apperror.CodeConflict, "assessment type name already exists")
			}
			updates["name"] = name
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Purpose != nil {
			updates["purpose"] = *input.Purpose
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&assessmentType).Updates(updates).Error; err != nil {
			return dbError(s.log, "updateAssessmentType", err)
		}
		return tx.First(&assessmentType, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &assessmentType, nil
}

// Delete removes an assessment type. Deletion is blocked while any category
// or template still references the type; the error carries both counts.
func (s *AssessmentTypeService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assessmentType models.AssessmentType
		if err := tx.First(&assessmentType, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "assessment type not found")
			}
			return dbError(s.log, "deleteAssessmentType", err)
		}

		var categoryCount, templateCount int64
		if err := tx.Model(&models.AssessmentCategory{}).Where("assessment_type_id = ?", id).Count(&categoryCount).Error; err != nil {
			return dbError(s.log, "deleteAssessmentType", err)
		}
		if err := tx.Model(&models.AssessmentTemplate{}).Where("assessment_type_id = ?", id).Count(&templateCount).Error; err != nil {
			return dbError(s.log, "deleteAssessmentType", err)
		}
		if categoryCount > 0 || templateCount > 0 {
			return apperror.New(apperror.CodeDependency, "assessment type has categories or templates; remove them first").
				WithDetails(map[string]interface{}{
					"category_count": categoryCount,
					"template_count": templateCount,
				})
		}

		if err := tx.Delete(&models.AssessmentType{}, id).Error; err != nil {
			return dbError(s.log, "deleteAssessmentType", err)
		}
		return nil
	})
}

// Deactivate soft-disables the type without deleting it.
func (s *AssessmentTypeService) Deactivate(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.AssessmentType{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return dbError(s.log, "deactivateAssessmentType", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.CodeNotFound, "assessment type not found")
	}
	return nil
}

func typeNameExists(tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	query := tx.Model(&models.AssessmentType{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
