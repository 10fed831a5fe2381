package service

import (
	"context"
	"errors"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RelationshipService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRelationshipService(db *gorm.DB, log *zap.Logger) *RelationshipService {
	return &RelationshipService{db: db, log: log}
}

// Create binds a manager to a subordinate for one period. A user cannot
// manage themselves, and a subordinate has at most one manager per period.
func (s *RelationshipService) Create(ctx context.Context, managerID, subordinateID string, periodID uint) (*models.ManagerRelationship, error) {
	if managerID == subordinateID {
		return nil, apperror.New(apperror.CodeValidation, "a user cannot be their own manager")
	}

	relationship := models.ManagerRelationship{
		ManagerID:     managerID,
		SubordinateID: subordinateID,
		PeriodID:      periodID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.User{}, managerID, "manager"); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.User{}, subordinateID, "subordinate"); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.AssessmentPeriod{}, periodID, "assessment period"); err != nil {
			return err
		}

		var count int64
		err := tx.Model(&models.ManagerRelationship{}).
			Where("subordinate_id = ? AND period_id = ?", subordinateID, periodID).
			Count(&count).Error
		if err != nil {
			return dbError(s.log, "createRelationship", err)
		}
		if count > 0 {
			return apperror.New(apperror.CodeConflict, "subordinate already has a manager for this period")
		}

		if err := tx.Create(&relationship).Error; err != nil {
			return dbError(s.log, "createRelationship", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &relationship, nil
}

// GetSubordinatesByManager returns the users a manager oversees, optionally
// restricted to one period.
func (s *RelationshipService) GetSubordinatesByManager(ctx context.Context, managerID string, periodID *uint) ([]models.User, error) {
	if err := ensureExists(s.db.WithContext(ctx), &models.User{}, managerID, "manager"); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN manager_relationships ON manager_relationships.subordinate_id = users.id").
		Where("manager_relationships.manager_id = ?", managerID)
	if periodID != nil {
		query = query.Where("manager_relationships.period_id = ?", *periodID)
	}

	var subordinates []models.User
	if err := query.Order("users.email ASC").Find(&subordinates).Error; err != nil {
		return nil, dbError(s.log, "listSubordinates", err)
	}
	return subordinates, nil
}

// GetManagerBySubordinate returns the subordinate's manager, optionally for
// one period. Returns a not-found error when no relationship exists.
func (s *RelationshipService) GetManagerBySubordinate(ctx context.Context, subordinateID string, periodID *uint) (*models.User, error) {
	if err := ensureExists(s.db.WithContext(ctx), &models.User{}, subordinateID, "subordinate"); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN manager_relationships ON manager_relationships.manager_id = users.id").
		Where("manager_relationships.subordinate_id = ?", subordinateID)
	if periodID != nil {
		query = query.Where("manager_relationships.period_id = ?", *periodID)
	}

	var manager models.User
	err := query.Order("manager_relationships.created_at DESC").First(&manager).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "no manager relationship found")
		}
		return nil, dbError(s.log, "getManager", err)
	}
	return &manager, nil
}

// GetRelationshipHierarchy composes one manager with their subordinates for
// a period.
func (s *RelationshipService) GetRelationshipHierarchy(ctx context.Context, managerID string, periodID uint) (*RelationshipHierarchy, error) {
	var manager models.User
	if err := s.db.WithContext(ctx).First(&manager, "id = ?", managerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "manager not found")
		}
		return nil, dbError(s.log, "getRelationshipHierarchy", err)
	}

	subordinates, err := s.GetSubordinatesByManager(ctx, managerID, &periodID)
	if err != nil {
		return nil, err
	}

	return &RelationshipHierarchy{
		Manager:      &manager,
		Subordinates: subordinates,
	}, nil
}

func (s *RelationshipService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.ManagerRelationship{}, id)
	if result.Error != nil {
		return dbError(s.log, "deleteRelationship", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.CodeNotFound, "manager relationship not found")
	}
	return nil
}
