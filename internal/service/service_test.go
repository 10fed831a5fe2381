package service

import (
	"context"
	"testing"
	"time"

	"appraise-go/internal/database"
	"appraise-go/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A second connection to :memory: would see an empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

// fixture seeds one complete hierarchy: a type with a category, a template
// with a question, plus a period and a user.
type fixture struct {
	db       *gorm.DB
	log      *zap.Logger
	typ      *models.AssessmentType
	category *models.AssessmentCategory
	template *models.AssessmentTemplate
	question *models.AssessmentQuestion
	period   *models.AssessmentPeriod
	user     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()
	ctx := context.Background()

	typ, err := NewAssessmentTypeService(db, log).Create(ctx, CreateTypeInput{Name: "Leadership"})
	require.NoError(t, err)

	category, err := NewCategoryService(db, log).Create(ctx, CreateCategoryInput{
		AssessmentTypeID: typ.ID,
		Name:             "Communication",
		DisplayOrder:     1,
	})
	require.NoError(t, err)

	template, err := NewTemplateService(db, log).Create(ctx, CreateTemplateInput{
		AssessmentTypeID: typ.ID,
		Name:             "Leadership Review",
		Version:          "v1",
	})
	require.NoError(t, err)

	question, err := NewQuestionService(db, log).Create(ctx, CreateQuestionInput{
		TemplateID:   template.ID,
		CategoryID:   category.ID,
		QuestionText: "Rate your listening skills",
		DisplayOrder: 1,
	})
	require.NoError(t, err)

	period, err := NewPeriodService(db, log).Create(ctx, CreatePeriodInput{
		Name:      "Q1 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	user, err := NewUserService(db, log).Create(ctx, CreateUserInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	return &fixture{
		db:       db,
		log:      log,
		typ:      typ,
		category: category,
		template: template,
		question: question,
		period:   period,
		user:     user,
	}
}

func (f *fixture) newUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	user, err := NewUserService(f.db, f.log).Create(context.Background(), CreateUserInput{
		Email:    email,
		Password: "correct-horse",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}
