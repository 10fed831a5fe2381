package service

import (
	"context"
	"errors"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"
	"appraise-go/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{db: db, log: log}
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := utils.NormalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, apperror.New(apperror.CodeValidation, "invalid email address")
	}
	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperror.New(apperror.CodeValidation, "invalid role")
	}
	if len(input.Password) < 8 {
		return nil, apperror.New(apperror.CodeValidation, "password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dbError(s.log, "createUser", err)
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailExists(tx, email, nil)
		if err != nil {
			return dbError(s.log, "createUser", err)
		}
		if taken {
			return apperror.New(apperror.CodeConflict, "user with this email already exists")
		}
		if err := tx.Create(&user).Error; err != nil {
			return dbError(s.log, "createUser", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "user not found")
		}
		return nil, dbError(s.log, "getUser", err)
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		First(&user, "LOWER(email) = LOWER(?)", utils.NormalizeEmail(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "user not found")
		}
		return nil, dbError(s.log, "getUserByEmail", err)
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "user not found")
			}
			return dbError(s.log, "updateUser", err)
		}

		updates := map[string]interface{}{}
		if input.FirstName != nil {
			updates["first_name"] = *input.FirstName
		}
		if input.LastName != nil {
			updates["last_name"] = *input.LastName
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return dbError(s.log, "updateUser", err)
		}
		return tx.First(&user, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Deactivate soft-disables the user account.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return dbError(s.log, "deactivateUser", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.CodeNotFound, "user not found")
	}
	return nil
}

// ValidateUserRole checks that the user holds at least the required role.
func (s *UserService) ValidateUserRole(ctx context.Context, userID string, required models.Role) (bool, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Role.AtLeast(required), nil
}

func (s *UserService) IsManager(ctx context.Context, userID string) (bool, error) {
	return s.ValidateUserRole(ctx, userID, models.RoleManager)
}

func (s *UserService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.ValidateUserRole(ctx, userID, models.RoleAdmin)
}

func (s *UserService) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	return s.ValidateUserRole(ctx, userID, models.RoleSuperAdmin)
}

func emailExists(tx *gorm.DB, email string, excludeID *string) (bool, error) {
	query := tx.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
