package handlers

import (
	"net/http"

	"appraise-go/internal/apperror"
	"appraise-go/internal/service"
	"appraise-go/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	log        *zap.Logger
	magicLinks *service.MagicLinkService
	email      *services.EmailService
}

func NewAuthHandler(log *zap.Logger, magicLinks *service.MagicLinkService, email *services.EmailService) *AuthHandler {
	return &AuthHandler{log: log, magicLinks: magicLinks, email: email}
}

// RequestMagicLink issues a login link for an existing account.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.CodeValidation, "invalid request body"))
		return
	}

	link, err := h.magicLinks.Create(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	h.email.SendMagicLinkEmail(link)
	c.JSON(http.StatusAccepted, gin.H{"message": "magic link sent"})
}

// VerifyMagicLink redeems the token, establishes the session and returns a
// signed API token.
func (h *AuthHandler) VerifyMagicLink(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, apperror.New(apperror.CodeValidation, "token is required"))
		return
	}

	user, err := h.magicLinks.Verify(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		// Missing, used and expired tokens all look the same to the caller.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired link"})
		return
	}

	session := sessions.Default(c)
	session.Set("userID", user.ID)
	if err := session.Save(); err != nil {
		h.log.Error("failed to save session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	apiToken, err := h.magicLinks.IssueSessionToken(user)
	if err != nil {
		h.log.Error("failed to sign session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": apiToken})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to logout"})
		return
	}
	c.Status(http.StatusNoContent)
}
