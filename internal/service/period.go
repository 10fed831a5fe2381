package service

import (
	"context"
	"errors"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PeriodService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPeriodService(db *gorm.DB, log *zap.Logger) *PeriodService {
	return &PeriodService{db: db, log: log}
}

func (s *PeriodService) Create(ctx context.Context, input CreatePeriodInput) (*models.AssessmentPeriod, error) {
	name, err := normalizeRequiredString(input.Name, "name")
	if err != nil {
		return nil, err
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperror.New(apperror.CodeValidation, "end_date must be after start_date")
	}

	period := models.AssessmentPeriod{
		Name:      name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AssessmentPeriod{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
			return dbError(s.log, "createPeriod", err)
		}
		if count > 0 {
			return apperror.New(apperror.CodeConflict, "period name already exists")
		}
		if err := tx.Create(&period).Error; err != nil {
			return dbError(s.log, "createPeriod", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (s *PeriodService) GetByID(ctx context.Context, id uint) (*models.AssessmentPeriod, error) {
	var period models.AssessmentPeriod
	if err := s.db.WithContext(ctx).First(&period, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "assessment period not found")
		}
		return nil, dbError(s.log, "getPeriod", err)
	}
	return &period, nil
}

func (s *PeriodService) GetActive(ctx context.Context) ([]models.AssessmentPeriod, error) {
	var periods []models.AssessmentPeriod
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("start_date DESC").
		Find(&periods).Error
	if err != nil {
		return nil, dbError(s.log, "listActivePeriods", err)
	}
	return periods, nil
}

func (s *PeriodService) Update(ctx context.Context, id uint, input UpdatePeriodInput) (*models.AssessmentPeriod, error) {
	var period models.AssessmentPeriod

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&period, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "assessment period not found")
			}
			return dbError(s.log, "updatePeriod", err)
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			name, err := normalizeRequiredString(*input.Name, "name")
			if err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.AssessmentPeriod{}).
				Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).
				Count(&count).Error; err != nil {
				return dbError(s.log, "updatePeriod", err)
			}
			if count > 0 {
				return apperror.New(apperror.CodeConflict, "period name already exists")
			}
			updates["name"] = name
		}

		newStart := period.StartDate
		newEnd := period.EndDate
		if input.StartDate != nil {
			newStart = *input.StartDate
			updates["start_date"] = newStart
		}
		if input.EndDate != nil {
			newEnd = *input.EndDate
			updates["end_date"] = newEnd
		}
		if !newEnd.After(newStart) {
			return apperror.New(apperror.CodeValidation, "end_date must be after start_date")
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&period).Updates(updates).Error; err != nil {
			return dbError(s.log, "updatePeriod", err)
		}
		return tx.First(&period, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &period, nil
}
