package service

import (
	"context"
	"errors"
	"time"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"
	"appraise-go/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type InvitationService struct {
	db  *gorm.DB
	log *zap.Logger
	ttl time.Duration
}

// NewInvitationService creates the service. ttl is how long an invitation
// stays acceptable, typically 7 days.
func NewInvitationService(db *gorm.DB, log *zap.Logger, ttl time.Duration) *InvitationService {
	return &InvitationService{db: db, log: log, ttl: ttl}
}

// Create issues a pending invitation with a fresh 256-bit token. At most one
// pending invitation may exist per (manager, template, period, email) tuple.
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (*models.Invitation, error) {
	email := utils.NormalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, apperror.New(apperror.CodeValidation, "invalid email address")
	}
	role := input.InvitedRole
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperror.New(apperror.CodeValidation, "invalid invited role")
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, dbError(s.log, "createInvitation", err)
	}

	now := time.Now().UTC()
	invitation := models.Invitation{
		ManagerID:   input.ManagerID,
		TemplateID:  input.TemplateID,
		PeriodID:    input.PeriodID,
		Email:       email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		InvitedRole: role,
		Status:      models.InvitationPending,
		Token:       token,
		InvitedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
		DueDate:     input.DueDate,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.ManagerID != nil {
			if err := ensureExists(tx, &models.User{}, *input.ManagerID, "manager"); err != nil {
				return err
			}
		}
		if input.TemplateID != nil {
			if err := ensureExists(tx, &models.AssessmentTemplate{}, *input.TemplateID, "assessment template"); err != nil {
				return err
			}
		}
		if err := ensureExists(tx, &models.AssessmentPeriod{}, input.PeriodID, "assessment period"); err != nil {
			return err
		}

		query := tx.Model(&models.Invitation{}).
			Where("period_id = ? AND LOWER(email) = ? AND status = ?", input.PeriodID, email, models.InvitationPending)
		if input.ManagerID != nil {
			query = query.Where("manager_id = ?", *input.ManagerID)
		} else {
			query = query.Where("manager_id IS NULL")
		}
		if input.TemplateID != nil {
			query = query.Where("template_id = ?", *input.TemplateID)
		} else {
			query = query.Where("template_id IS NULL")
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return dbError(s.log, "createInvitation", err)
		}
		if count > 0 {
			return apperror.New(apperror.CodeConflict, "a pending invitation already exists for this email")
		}

		if err := tx.Create(&invitation).Error; err != nil {
			return dbError(s.log, "createInvitation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (s *InvitationService) GetByID(ctx context.Context, id uint) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.db.WithContext(ctx).First(&invitation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "invitation not found")
		}
		return nil, dbError(s.log, "getInvitation", err)
	}
	return &invitation, nil
}

func (s *InvitationService) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.db.WithContext(ctx).First(&invitation, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "invitation not found")
		}
		return nil, dbError(s.log, "getInvitationByToken", err)
	}
	return &invitation, nil
}

// Accept consumes a pending invitation: it creates the invited user, their
// assessment instance (when the invitation names a template) and their
// manager relationship (when it names a manager), then marks the invitation
// accepted. All of it commits or none of it does.
func (s *InvitationService) Accept(ctx context.Context, invitationID uint, input AcceptInvitationInput) (*AcceptInvitationResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if len(input.Password) < 8 {
		return nil, apperror.New(apperror.CodeValidation, "password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dbError(s.log, "acceptInvitation", err)
	}

	result := &AcceptInvitationResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		if err := tx.First(&invitation, invitationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "invitation not found")
			}
			return dbError(s.log, "acceptInvitation", err)
		}

		if invitation.Status != models.InvitationPending {
			return apperror.New(apperror.CodeExpired, "invitation has already been processed")
		}
		if time.Now().UTC().After(invitation.ExpiresAt) {
			return apperror.New(apperror.CodeExpired, "invitation has expired")
		}
		if utils.NormalizeEmail(invitation.Email) != email {
			return apperror.New(apperror.CodeValidation, "email does not match the invitation")
		}

		taken, err := emailExists(tx, email, nil)
		if err != nil {
			return dbError(s.log, "acceptInvitation", err)
		}
		if taken {
			return apperror.New(apperror.CodeConflict, "user with this email already exists")
		}

		firstName := input.FirstName
		if firstName == "" {
			firstName = invitation.FirstName
		}
		lastName := input.LastName
		if lastName == "" {
			lastName = invitation.LastName
		}

		user := models.User{
			ID:        uuid.NewString(),
			Email:     email,
			Password:  string(hashedPassword),
			FirstName: firstName,
			LastName:  lastName,
			Role:      invitation.InvitedRole,
			IsActive:  true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return dbError(s.log, "acceptInvitation", err)
		}
		result.UserID = user.ID

		if invitation.TemplateID != nil {
			instance := models.AssessmentInstance{
				UserID:     user.ID,
				PeriodID:   invitation.PeriodID,
				TemplateID: *invitation.TemplateID,
				Status:     models.StatusPending,
				DueDate:    invitation.DueDate,
			}
			if err := tx.Create(&instance).Error; err != nil {
				return dbError(s.log, "acceptInvitation", err)
			}
			result.AssessmentInstanceID = &instance.ID
		}

		if invitation.ManagerID != nil {
			relationship := models.ManagerRelationship{
				ManagerID:     *invitation.ManagerID,
				SubordinateID: user.ID,
				PeriodID:      invitation.PeriodID,
			}
			if err := tx.Create(&relationship).Error; err != nil {
				return dbError(s.log, "acceptInvitation", err)
			}
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":      models.InvitationAccepted,
			"accepted_at": now,
		}
		if err := tx.Model(&invitation).Updates(updates).Error; err != nil {
			return dbError(s.log, "acceptInvitation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invitation accepted",
		zap.Uint("invitation_id", invitationID),
		zap.String("user_id", result.UserID),
	)
	return result, nil
}

// Decline marks a pending invitation declined, looked up by its token.
func (s *InvitationService) Decline(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		if err := tx.First(&invitation, "token = ?", token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "invitation not found")
			}
			return dbError(s.log, "declineInvitation", err)
		}
		if invitation.Status != models.InvitationPending {
			return apperror.New(apperror.CodeExpired, "invitation has already been processed")
		}
		if err := tx.Model(&invitation).Update("status", models.InvitationDeclined).Error; err != nil {
			return dbError(s.log, "declineInvitation", err)
		}
		return nil
	})
}

// SendReminder bumps the reminder counter for a pending invitation and
// stamps when the reminder went out.
func (s *InvitationService) SendReminder(ctx context.Context, id uint) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invitation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "invitation not found")
			}
			return dbError(s.log, "sendReminder", err)
		}
		if invitation.Status != models.InvitationPending {
			return apperror.New(apperror.CodeExpired, "invitation is no longer pending")
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"reminder_count":     gorm.Expr("reminder_count + 1"),
			"last_reminder_sent": now,
		}
		if err := tx.Model(&invitation).Updates(updates).Error; err != nil {
			return dbError(s.log, "sendReminder", err)
		}
		return tx.First(&invitation, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// CleanupExpired flips pending invitations whose expiry has passed to the
// expired status and returns how many were flipped.
func (s *InvitationService) CleanupExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, time.Now().UTC()).
		Update("status", models.InvitationExpired)
	if result.Error != nil {
		return 0, dbError(s.log, "cleanupExpiredInvitations", result.Error)
	}
	if result.RowsAffected > 0 {
		s.log.Info("expired invitations cleaned up", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}
