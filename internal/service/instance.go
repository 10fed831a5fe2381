package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// statusTransitions is the forward-only lifecycle of an instance. A status
// may always be re-set to itself.
var statusTransitions = map[models.InstanceStatus][]models.InstanceStatus{
	models.StatusPending:    {models.StatusInProgress, models.StatusCompleted, models.StatusArchived},
	models.StatusInProgress: {models.StatusCompleted, models.StatusArchived},
	models.StatusCompleted:  {models.StatusArchived},
	models.StatusArchived:   {},
}

func transitionAllowed(from, to models.InstanceStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type InstanceService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewInstanceService(db *gorm.DB, log *zap.Logger) *InstanceService {
	return &InstanceService{db: db, log: log}
}

// Create binds a user, a period and a template into a new instance. At most
// one instance may exist per (user, period, template) triple.
func (s *InstanceService) Create(ctx context.Context, input CreateInstanceInput) (*models.AssessmentInstance, error) {
	status := input.Status
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return nil, apperror.New(apperror.CodeValidation, fmt.Sprintf("invalid instance status %q", input.Status))
	}

	instance := models.AssessmentInstance{
		UserID:     input.UserID,
		PeriodID:   input.PeriodID,
		TemplateID: input.TemplateID,
		Status:     status,
		DueDate:    input.DueDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.User{}, input.UserID, "user"); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.AssessmentPeriod{}, input.PeriodID, "assessment period"); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.AssessmentTemplate{}, input.TemplateID, "assessment template"); err != nil {
			return err
		}

		var count int64
		err := tx.Model(&models.AssessmentInstance{}).
			Where("user_id = ? AND period_id = ? AND template_id = ?", input.UserID, input.PeriodID, input.TemplateID).
			Count(&count).Error
		if err != nil {
			return dbError(s.log, "createInstance", err)
		}
		if count > 0 {
			return apperror.New(apperror.CodeConflict, "an instance already exists for this user, period and template")
		}

		if err := tx.Create(&instance).Error; err != nil {
			return dbError(s.log, "createInstance", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (s *InstanceService) GetByID(ctx context.Context, id uint) (*models.AssessmentInstance, error) {
	var instance models.AssessmentInstance
	if err := s.db.WithContext(ctx).First(&instance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "assessment instance not found")
		}
		return nil, dbError(s.log, "getInstance", err)
	}
	return &instance, nil
}

func (s *InstanceService) GetByUser(ctx context.Context, userID string) ([]models.AssessmentInstance, error) {
	if err := ensureExists(s.db.WithContext(ctx), &models.User{}, userID, "user"); err != nil {
		return nil, err
	}
	var instances []models.AssessmentInstance
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&instances).Error
	if err != nil {
		return nil, dbError(s.log, "listInstances", err)
	}
	return instances, nil
}

// UpdateStatus moves an instance through its lifecycle. Transitions are
// forward-only: pending → in_progress → completed → archived. Moving to
// in_progress stamps StartedAt, moving to completed stamps CompletedAt.
func (s *InstanceService) UpdateStatus(ctx context.Context, id uint, status models.InstanceStatus) (*models.AssessmentInstance, error) {
	if !status.Valid() {
		return nil, apperror.New(apperror.CodeValidation, fmt.Sprintf("invalid instance status %q", status))
	}

	var instance models.AssessmentInstance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&instance, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "assessment instance not found")
			}
			return dbError(s.log, "updateInstanceStatus", err)
		}

		if !transitionAllowed(instance.Status, status) {
			return apperror.New(apperror.CodeValidation,
				fmt.Sprintf("cannot transition instance from %q to %q", instance.Status, status))
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": status}
		if status == models.StatusInProgress && instance.StartedAt == nil {
			updates["started_at"] = now
		}
		if status == models.StatusCompleted && instance.CompletedAt == nil {
			updates["completed_at"] = now
		}

		if err := tx.Model(&instance).Updates(updates).Error; err != nil {
			return dbError(s.log, "updateInstanceStatus", err)
		}
		return tx.First(&instance, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// Delete removes an instance and its responses in one transaction.
// Operational data cascades; only the configuration hierarchy guards.
func (s *InstanceService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var instance models.AssessmentInstance
		if err := tx.First(&instance, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "assessment instance not found")
			}
			return dbError(s.log, "deleteInstance", err)
		}

		if err := tx.Where("instance_id = ?", id).Delete(&models.AssessmentResponse{}).Error; err != nil {
			return dbError(s.log, "deleteInstance", err)
		}
		if err := tx.Delete(&models.AssessmentInstance{}, id).Error; err != nil {
			return dbError(s.log, "deleteInstance", err)
		}
		return nil
	})
}
