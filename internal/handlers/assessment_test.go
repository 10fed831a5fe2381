package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"appraise-go/internal/database"
	"appraise-go/internal/models"
	"appraise-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	instance *models.AssessmentInstance
	question *models.AssessmentQuestion
}

// newTestEnv wires the assessment routes over an in-memory database seeded
// with one pending instance.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db, zap.NewNop()))

	log := zap.NewNop()
	ctx := context.Background()

	typ, err := service.NewAssessmentTypeService(db, log).Create(ctx, service.CreateTypeInput{Name: "Leadership"})
	require.NoError(t, err)
	category, err := service.NewCategoryService(db, log).Create(ctx, service.CreateCategoryInput{
		AssessmentTypeID: typ.ID, Name: "Communication",
	})
	require.NoError(t, err)
	template, err := service.NewTemplateService(db, log).Create(ctx, service.CreateTemplateInput{
		AssessmentTypeID: typ.ID, Name: "Leadership Review", Version: "v1",
	})
	require.NoError(t, err)
	question, err := service.NewQuestionService(db, log).Create(ctx, service.CreateQuestionInput{
		TemplateID: template.ID, CategoryID: category.ID, QuestionText: "Rate your listening skills",
	})
	require.NoError(t, err)
	period, err := service.NewPeriodService(db, log).Create(ctx, service.CreatePeriodInput{
		Name:      "Q1 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	user, err := service.NewUserService(db, log).Create(ctx, service.CreateUserInput{
		Email: "alice@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	instance, err := service.NewInstanceService(db, log).Create(ctx, service.CreateInstanceInput{
		UserID: user.ID, PeriodID: period.ID, TemplateID: template.ID,
	})
	require.NoError(t, err)

	handler := NewAssessmentHandler(log,
		service.NewInstanceService(db, log),
		service.NewResponseService(db, log),
	)

	router := gin.New()
	router.GET("/instances/:id", handler.GetInstance)
	router.PUT("/instances/:id/status", handler.UpdateInstanceStatus)
	router.POST("/instances/:id/responses", handler.CreateResponse)
	router.GET("/instances/:id/completion", handler.CheckCompletion)

	return &testEnv{router: router, db: db, instance: instance, question: question}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestGetInstance(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/instances/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.AssessmentInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, env.instance.ID, got.ID)
	assert.Equal(t, models.StatusPending, got.Status)

	w = env.do(http.MethodGet, "/instances/9999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/instances/not-a-number", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateResponseEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/instances/1/responses",
		`{"question_id": 1, "score": 6}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Duplicate pair surfaces as 409 with the domain code.
	w = env.do(http.MethodPost, "/instances/1/responses",
		`{"question_id": 1, "score": 4}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "conflict", body["code"])

	// Out-of-range score is a 400.
	w = env.do(http.MethodPost, "/instances/1/responses",
		`{"question_id": 1, "score": 9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInstanceStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/instances/1/status", `{"status": "in_progress"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPut, "/instances/1/status", `{"status": "completed"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// Backward transition is rejected.
	w = env.do(http.MethodPut, "/instances/1/status", `{"status": "pending"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompletionEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/instances/1/completion", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var result service.CompletionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.IsComplete)
	require.Len(t, result.MissingQuestions, 1)
	assert.Equal(t, env.question.ID, result.MissingQuestions[0])

	env.do(http.MethodPost, "/instances/1/responses", `{"question_id": 1, "score": 6}`)

	w = env.do(http.MethodGet, "/instances/1/completion", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.IsComplete)
}
