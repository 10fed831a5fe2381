package handlers

import (
	"net/http"
	"strconv"
	"time"

	"appraise-go/internal/apperror"
	"appraise-go/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes the assessment hierarchy: types, categories,
// templates, questions and periods.
type AdminHandler struct {
	log        *zap.Logger
	types      *service.AssessmentTypeService
	categories *service.CategoryService
	templates  *service.TemplateService
	questions  *service.QuestionService
	periods    *service.PeriodService
}

func NewAdminHandler(
	log *zap.Logger,
	types *service.AssessmentTypeService,
	categories *service.CategoryService,
	templates *service.TemplateService,
	questions *service.QuestionService,
	periods *service.PeriodService,
) *AdminHandler {
	return &AdminHandler{
		log:        log,
		types:      types,
		categories: categories,
		templates:  templates,
		questions:  questions,
		periods:    periods,
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid id"))
		return 0, false
	}
	return uint(id), true
}

// --- Assessment types ---

func (h *AdminHandler) CreateType(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Purpose     string `json:"purpose"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}

	created, err := h.types.Create(c.Request.Context(), service.CreateTypeInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) ListTypes(c *gin.Context) {
	types, err := h.types.GetAllActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *AdminHandler) GetType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assessmentType, err := h.types.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessmentType)
}

func (h *AdminHandler) UpdateType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTypeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	updated, err := h.types.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) DeleteType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.types.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Categories ---

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req struct {
		AssessmentTypeID uint   `json:"assessment_type_id"`
		Name             string `json:"name"`
		Description      string `json:"description"`
		DisplayOrder     int    `json:"display_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	created, err := h.categories.Create(c.Request.Context(), service.CreateCategoryInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) ListCategories(c *gin.Context) {
	typeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	categories, err := h.categories.GetByType(c.Request.Context(), typeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	updated, err := h.categories.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ReorderCategories(c *gin.Context) {
	typeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var items []service.ReorderItem
	if err := c.ShouldBindJSON(&items); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	reordered, err := h.categories.Reorder(c.Request.Context(), typeID, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reordered)
}

// --- Templates ---

func (h *AdminHandler) CreateTemplate(c *gin.Context) {
	var req struct {
		AssessmentTypeID uint   `json:"assessment_type_id"`
		Name             string `json:"name"`
		Version          string `json:"version"`
		Description      string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	created, err := h.templates.Create(c.Request.Context(), service.CreateTemplateInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) GetTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	template, err := h.templates.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *AdminHandler) ListActiveTemplates(c *gin.Context) {
	templates, err := h.templates.GetActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *AdminHandler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	updated, err := h.templates.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Questions ---

func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	var req struct {
		TemplateID   uint   `json:"template_id"`
		CategoryID   uint   `json:"category_id"`
		QuestionText string `json:"question_text"`
		DisplayOrder int    `json:"display_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	created, err := h.questions.Create(c.Request.Context(), service.CreateQuestionInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) ListQuestions(c *gin.Context) {
	templateID, ok := pathID(c, "id")
	if !ok {
		return
	}
	questions, err := h.questions.GetByTemplate(c.Request.Context(), templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *AdminHandler) UpdateQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateQuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	updated, err := h.questions.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.questions.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ReorderQuestions(c *gin.Context) {
	templateID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var items []service.ReorderItem
	if err := c.ShouldBindJSON(&items); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	reordered, err := h.questions.Reorder(c.Request.Context(), templateID, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reordered)
}

// --- Periods ---

func (h *AdminHandler) CreatePeriod(c *gin.Context) {
	var req struct {
		Name      string    `json:"name"`
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	created, err := h.periods.Create(c.Request.Context(), service.CreatePeriodInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) ListActivePeriods(c *gin.Context) {
	periods, err := h.periods.GetActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}
