package handlers

import (
	"net/http"
	"time"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"
	"appraise-go/internal/service"
	"appraise-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InvitationHandler struct {
	log         *zap.Logger
	invitations *service.InvitationService
	email       *services.EmailService
}

func NewInvitationHandler(log *zap.Logger, invitations *service.InvitationService, email *services.EmailService) *InvitationHandler {
	return &InvitationHandler{log: log, invitations: invitations, email: email}
}

func (h *InvitationHandler) Create(c *gin.Context) {
	var req struct {
		ManagerID   *string     `json:"manager_id"`
		TemplateID  *uint       `json:"template_id"`
		PeriodID    uint        `json:"period_id"`
		Email       string      `json:"email"`
		FirstName   string      `json:"first_name"`
		LastName    string      `json:"last_name"`
		InvitedRole models.Role `json:"invited_role"`
		DueDate     *time.Time  `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}

	invitation, err := h.invitations.Create(c.Request.Context(), service.CreateInvitationInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	h.email.SendInvitationEmail(invitation)
	c.JSON(http.StatusCreated, invitation)
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.invitations.Accept(c.Request.Context(), id, service.AcceptInvitationInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InvitationHandler) Decline(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, apperror.New(apperror.CodeValidation, "token is required"))
		return
	}
	if err := h.invitations.Decline(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InvitationHandler) SendReminder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invitation, err := h.invitations.SendReminder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.email.SendReminderEmail(invitation)
	c.JSON(http.StatusOK, invitation)
}
