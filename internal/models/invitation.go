package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is a time-boxed, single-use token inviting an email address to
// join an assessment. Acceptance provisions the user, their assessment
// instance and their manager relationship in one transaction.
type Invitation struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	ManagerID        *string             `gorm:"type:varchar(36);index" json:"manager_id,omitempty"`
	Manager          *User               `gorm:"foreignKey:ManagerID" json:"-"`
	TemplateID       *uint               `gorm:"index" json:"template_id,omitempty"`
	Template         *AssessmentTemplate `gorm:"foreignKey:TemplateID" json:"-"`
	PeriodID         uint                `gorm:"not null;index" json:"period_id"`
	Period           AssessmentPeriod    `gorm:"foreignKey:PeriodID" json:"-"`
	Email            string              `gorm:"type:varchar(255);not null;index" json:"email"`
	FirstName        string              `gorm:"type:varchar(100)" json:"first_name,omitempty"`
	LastName         string              `gorm:"type:varchar(100)" json:"last_name,omitempty"`
	InvitedRole      Role                `gorm:"type:varchar(20);not null;default:user" json:"invited_role"`
	Status           InvitationStatus    `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	Token            string              `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	InvitedAt        time.Time           `gorm:"not null" json:"invited_at"`
	AcceptedAt       *time.Time          `json:"accepted_at,omitempty"`
	ExpiresAt        time.Time           `gorm:"not null;index" json:"expires_at"`
	ReminderCount    int                 `gorm:"not null;default:0" json:"reminder_count"`
	LastReminderSent *time.Time          `json:"last_reminder_sent,omitempty"`
	DueDate          *time.Time          `json:"due_date,omitempty"`
}
