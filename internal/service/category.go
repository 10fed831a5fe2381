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

type CategoryService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCategoryService(db *gorm.DB, log *zap.Logger) *CategoryService {
	return &CategoryService{db: db, log: log}
}

func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.AssessmentCategory, error) {
	name, err := normalizeRequiredString(input.Name, "name")
	if err != nil {
		return nil, err
	}

	category := models.AssessmentCategory{
		AssessmentTypeID: input.AssessmentTypeID,
		Name:             name,
		Description:      input.Description,
		DisplayOrder:     input.DisplayOrder,
		IsActive:         true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.AssessmentType{}, input.AssessmentTypeID, "assessment type"); err != nil {
			return err
		}
		taken, err := categoryNameExists(tx, input.AssessmentTypeID, name, nil)
		if err != nil {
			return dbError(s.log, "createCategory", err)
		}
		if taken {
			return apperror.New(apperror.CodeConflict, "category name already exists for this assessment type")
		}
		if err := tx.Create(&category).Error; err != nil {
			return dbError(s.log, "createCategory", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id uint) (*models.AssessmentCategory, error) {
	var category models.AssessmentCategory
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "category not found")
		}
		return nil, dbError(s.log, "getCategory", err)
	}
	return &category, nil
}

// GetByType returns a type's categories in display order.
func (s *CategoryService) GetByType(ctx context.Context, assessmentTypeID uint) ([]models.AssessmentCategory, error) {
	if err := ensureExists(s.db.WithContext(ctx), &models.AssessmentType{}, assessmentTypeID, "assessment type"); err != nil {
		return nil, err
	}
	var categories []models.AssessmentCategory
	err := s.db.WithContext(ctx).
		Where("assessment_type_id = ?", assessmentTypeID).
		Order("display_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, dbError(s.log, "listCategories", err)
	}
	return categories, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, input UpdateCategoryInput) (*models.AssessmentCategory, error) {
	var category models.AssessmentCategory

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "category not found")
			}
			return dbError(s.log, "updateCategory", err)
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			name, err := normalizeRequiredString(*input.Name, "name")
			if err != nil {
				return err
			}
			taken, err := categoryNameExists(tx, category.AssessmentTypeID, name, &id)
			if err != nil {
				return dbError(s.log, "updateCategory", err)
			}
			if taken {
				return apperror.New(apperror.CodeConflict, "category name already exists for this assessment type")
			}
			updates["name"] = name
		}
		if input.Description != nil {
			updates["description"] = *input.Description
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
		if err := tx.Model(&category).Updates(updates).Error; err != nil {
			return dbError(s.log, "updateCategory", err)
		}
		return tx.First(&category, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category. Deletion is blocked while questions reference
// it; the error carries the question count for the caller's remediation
// message.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.AssessmentCategory
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "category not found")
			}
			return dbError(s.log, "deleteCategory", err)
		}

		var questionCount int64
		if err := tx.Model(&models.AssessmentQuestion{}).Where("category_id = ?", id).Count(&questionCount).Error; err != nil {
			return dbError(s.log, "deleteCategory", err)
		}
		if questionCount > 0 {
			return apperror.New(apperror.CodeDependency,
				fmt.Sprintf("category has %d questions; remove them first", questionCount)).
				WithDetails(map[string]interface{}{"question_count": questionCount})
		}

		if err := tx.Delete(&models.AssessmentCategory{}, id).Error; err != nil {
			return dbError(s.log, "deleteCategory", err)
		}
		return nil
	})
}

// Deactivate soft-disables the category without deleting it.
func (s *CategoryService) Deactivate(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.AssessmentCategory{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return dbError(s.log, "deactivateCategory", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.CodeNotFound, "category not found")
	}
	return nil
}

// Reorder applies a batch of display-order updates for one type's categories
// in a single transaction and returns the fresh ordering.
func (s *CategoryService) Reorder(ctx context.Context, assessmentTypeID uint, items []ReorderItem) ([]models.AssessmentCategory, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.AssessmentType{}, assessmentTypeID, "assessment type"); err != nil {
			return err
		}
		for _, item := range items {
			result := tx.Model(&models.AssessmentCategory{}).
				Where("id = ? AND assessment_type_id = ?", item.ID, assessmentTypeID).
				Update("display_order", item.DisplayOrder)
			if result.Error != nil {
				return dbError(s.log, "reorderCategories", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperror.New(apperror.CodeNotFound,
					fmt.Sprintf("category %d not found for this assessment type", item.ID))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByType(ctx, assessmentTypeID)
}

func categoryNameExists(tx *gorm.DB, assessmentTypeID uint, name string, excludeID *uint) (bool, error) {
	query := tx.Model(&models.AssessmentCategory{}).
		Where("assessment_type_id = ?", assessmentTypeID).
		Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ensureExists checks that a row with the given primary key exists.
func ensureExists(tx *gorm.DB, model interface{}, id interface{}, label string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check %s existence: %w", label, err)
	}
	if count == 0 {
		return apperror.New(apperror.CodeNotFound, label+" not found")
	}
	return nil
}
