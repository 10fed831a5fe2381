package handlers

import (
	"net/http"
	"strconv"

	"appraise-go/internal/apperror"
	"appraise-go/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RelationshipHandler struct {
	log           *zap.Logger
	relationships *service.RelationshipService
}

func NewRelationshipHandler(log *zap.Logger, relationships *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{log: log, relationships: relationships}
}

// optionalPeriodID reads the optional ?period_id= filter.
func optionalPeriodID(c *gin.Context) (*uint, bool) {
	raw := c.Query("period_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid period_id"))
		return nil, false
	}
	periodID := uint(id)
	return &periodID, true
}

func (h *RelationshipHandler) Create(c *gin.Context) {
	var req struct {
		ManagerID     string `json:"manager_id"`
		SubordinateID string `json:"subordinate_id"`
		PeriodID      uint   `json:"period_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}

	created, err := h.relationships.Create(c.Request.Context(), req.ManagerID, req.SubordinateID, req.PeriodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RelationshipHandler) ListSubordinates(c *gin.Context) {
	periodID, ok := optionalPeriodID(c)
	if !ok {
		return
	}
	subordinates, err := h.relationships.GetSubordinatesByManager(c.Request.Context(), c.Param("id"), periodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subordinates)
}

func (h *RelationshipHandler) GetManager(c *gin.Context) {
	periodID, ok := optionalPeriodID(c)
	if !ok {
		return
	}
	manager, err := h.relationships.GetManagerBySubordinate(c.Request.Context(), c.Param("id"), periodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, manager)
}

func (h *RelationshipHandler) GetHierarchy(c *gin.Context) {
	periodID, err := strconv.ParseUint(c.Query("period_id"), 10, 32)
	if err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "period_id is required"))
		return
	}
	hierarchy, err2 := h.relationships.GetRelationshipHierarchy(c.Request.Context(), c.Param("id"), uint(periodID))
	if err2 != nil {
		respondError(c, err2)
		return
	}
	c.JSON(http.StatusOK, hierarchy)
}

func (h *RelationshipHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.relationships.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
