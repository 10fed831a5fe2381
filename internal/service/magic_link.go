package service

import (
	"context"
	"errors"
	"time"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"
	"appraise-go/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MagicLinkService struct {
	db        *gorm.DB
	log       *zap.Logger
	ttl       time.Duration
	rateLimit int
	jwtSecret []byte
}

// NewMagicLinkService creates the service. ttl is the token lifetime
// (typically 24h); rateLimit caps simultaneously live tokens per email.
func NewMagicLinkService(db *gorm.DB, log *zap.Logger, ttl time.Duration, rateLimit int, jwtSecret []byte) *MagicLinkService {
	return &MagicLinkService{db: db, log: log, ttl: ttl, rateLimit: rateLimit, jwtSecret: jwtSecret}
}

// Create issues a fresh login token for an existing user's email. With
// rateLimit live tokens already outstanding the call fails; below the limit
// all prior unused tokens are invalidated first, so only the newest link in
// the inbox works.
func (s *MagicLinkService) Create(ctx context.Context, email string) (*models.MagicLink, error) {
	email = utils.NormalizeEmail(email)

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, dbError(s.log, "createMagicLink", err)
	}

	link := models.MagicLink{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userCount int64
		if err := tx.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&userCount).Error; err != nil {
			return dbError(s.log, "createMagicLink", err)
		}
		if userCount == 0 {
			return apperror.New(apperror.CodeNotFound, "user not found")
		}

		now := time.Now().UTC()
		var liveCount int64
		err := tx.Model(&models.MagicLink{}).
			Where("email = ? AND used = ? AND expires_at > ?", email, false, now).
			Count(&liveCount).Error
		if err != nil {
			return dbError(s.log, "createMagicLink", err)
		}
		if liveCount >= int64(s.rateLimit) {
			return apperror.New(apperror.CodeRateLimited, "too many outstanding magic links; try again later")
		}

		// Invalidate everything older so only the newest link works.
		err = tx.Model(&models.MagicLink{}).
			Where("email = ? AND used = ?", email, false).
			Update("used", true).Error
		if err != nil {
			return dbError(s.log, "createMagicLink", err)
		}

		if err := tx.Create(&link).Error; err != nil {
			return dbError(s.log, "createMagicLink", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Verify redeems a token. It opportunistically purges expired rows, then
// resolves the token's user and marks the token used. A missing, used or
// expired token yields (nil, nil) rather than an error; the caller decides
// how to present a failed login.
func (s *MagicLinkService) Verify(ctx context.Context, token string) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Where("expires_at < ?", now).Delete(&models.MagicLink{}).Error; err != nil {
			return dbError(s.log, "verifyMagicLink", err)
		}

		var link models.MagicLink
		if err := tx.First(&link, "token = ?", token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return dbError(s.log, "verifyMagicLink", err)
		}
		if link.Used || now.After(link.ExpiresAt) {
			return nil
		}

		if err := tx.Model(&link).Update("used", true).Error; err != nil {
			return dbError(s.log, "verifyMagicLink", err)
		}

		var u models.User
		if err := tx.First(&u, "LOWER(email) = ?", link.Email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The account was removed after the link went out.
				return nil
			}
			return dbError(s.log, "verifyMagicLink", err)
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SessionClaims is the JWT payload minted after a successful verification.
type SessionClaims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session JWT for a verified user.
func (s *MagicLinkService) IssueSessionToken(user *models.User) (string, error) {
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "appraise",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateSessionToken parses and verifies a session JWT.
func (s *MagicLinkService) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// PurgeExpired deletes expired magic links outright; used tokens older than
// the TTL go with them.
func (s *MagicLinkService) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.MagicLink{})
	if result.Error != nil {
		return 0, dbError(s.log, "purgeExpiredMagicLinks", result.Error)
	}
	return result.RowsAffected, nil
}
