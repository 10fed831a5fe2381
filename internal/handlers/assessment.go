package handlers

import (
	"net/http"
	"time"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"
	"appraise-go/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssessmentHandler exposes assessment instances and their responses.
type AssessmentHandler struct {
	log       *zap.Logger
	instances *service.InstanceService
	responses *service.ResponseService
}

func NewAssessmentHandler(log *zap.Logger, instances *service.InstanceService, responses *service.ResponseService) *AssessmentHandler {
	return &AssessmentHandler{log: log, instances: instances, responses: responses}
}

func (h *AssessmentHandler) CreateInstance(c *gin.Context) {
	var req struct {
		UserID     string                `json:"user_id"`
		PeriodID   uint                  `json:"period_id"`
		TemplateID uint                  `json:"template_id"`
		Status     models.InstanceStatus `json:"status"`
		DueDate    *time.Time            `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}

	created, err := h.instances.Create(c.Request.Context(), service.CreateInstanceInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AssessmentHandler) GetInstance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	instance, err := h.instances.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, instance)
}

func (h *AssessmentHandler) UpdateInstanceStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.InstanceStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	updated, err := h.instances.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AssessmentHandler) DeleteInstance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.instances.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AssessmentHandler) CreateResponse(c *gin.Context) {
	instanceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		QuestionID uint `json:"question_id"`
		Score      int  `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}

	created, err := h.responses.Create(c.Request.Context(), instanceID, req.QuestionID, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AssessmentHandler) ListResponses(c *gin.Context) {
	instanceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	responses, err := h.responses.GetByInstance(c.Request.Context(), instanceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

func (h *AssessmentHandler) UpdateResponse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Score int `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}
	updated, err := h.responses.Update(c.Request.Context(), id, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CheckCompletion reports whether every active template question has a
// recorded response for this instance.
func (h *AssessmentHandler) CheckCompletion(c *gin.Context) {
	instanceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.responses.ValidateInstanceCompletion(c.Request.Context(), instanceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
