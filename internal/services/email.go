package services

import (
	"fmt"

	"appraise-go/internal/models"

	"go.uber.org/zap"
)

// EmailService is a placeholder for a real email sending service.
type EmailService struct {
	log     *zap.Logger
	baseURL string
}

func NewEmailService(log *zap.Logger, baseURL string) *EmailService {
	return &EmailService{log: log, baseURL: baseURL}
}

// SendInvitationEmail simulates sending the invitation link.
func (s *EmailService) SendInvitationEmail(invitation *models.Invitation) {
	s.log.Info("Sending invitation email",
		zap.String("to", invitation.Email),
		zap.Uint("invitation_id", invitation.ID),
	)
	// A real deployment would use an SMTP client with a templated HTML body.
	fmt.Printf("--- SIMULATING EMAIL ---\nTo: %s\nSubject: You have been invited to an assessment\nAccept here: %s/invitations/accept?token=%s\n\n",
		invitation.Email, s.baseURL, invitation.Token)
}

// SendReminderEmail simulates sending a reminder for a pending invitation.
func (s *EmailService) SendReminderEmail(invitation *models.Invitation) {
	s.log.Info("Sending invitation reminder",
		zap.String("to", invitation.Email),
		zap.Int("reminder_count", invitation.ReminderCount),
	)
	fmt.Printf("--- SIMULATING EMAIL ---\nTo: %s\nSubject: Reminder: your assessment invitation is waiting\n\n",
		invitation.Email)
}

// SendMagicLinkEmail simulates sending a login link.
func (s *EmailService) SendMagicLinkEmail(link *models.MagicLink) {
	s.log.Info("Sending magic link email",
		zap.String("to", link.Email),
	)
	fmt.Printf("--- SIMULATING EMAIL ---\nTo: %s\nSubject: Your login link\nSign in here: %s/auth/verify?token=%s\n\n",
		link.Email, s.baseURL, link.Token)
}
