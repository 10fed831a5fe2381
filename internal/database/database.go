package database

import (
	"fmt"

	"appraise-go/internal/config"
	"appraise-go/internal/logging"
	"appraise-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database and runs migrations. The handle is returned to
// the caller and passed into the services explicitly; there is no package
// global.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	log.Info("Database connection established successfully.")

	if err := Migrate(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates tables, columns and indexes for the full schema.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	// GORM's AutoMigrate creates tables, columns, foreign keys and the
	// composite unique indexes declared on the models. The partial index
	// below is beyond what tags can express, so it is created separately.
	err := db.AutoMigrate(
		&models.User{},
		&models.AssessmentType{},
		&models.AssessmentCategory{},
		&models.AssessmentTemplate{},
		&models.AssessmentQuestion{},
		&models.AssessmentPeriod{},
		&models.AssessmentInstance{},
		&models.AssessmentResponse{},
		&models.ManagerRelationship{},
		&models.Invitation{},
		&models.MagicLink{},
	)
	if err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.")

	// One pending invitation per (manager, template, period, email) tuple.
	// The services check this explicitly as well; the index closes the race
	// between two concurrent creates.
	pendingInviteIndex := `CREATE UNIQUE INDEX IF NOT EXISTS idx_invitation_pending_tuple
		ON invitations (manager_id, template_id, period_id, email)
		WHERE status = 'pending';`
	if err := db.Exec(pendingInviteIndex).Error; err != nil {
		return fmt.Errorf("create pending invitation index: %w", err)
	}
	log.Info("Custom indexes ensured successfully.")
	return nil
}
