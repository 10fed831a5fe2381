package models

import "time"

type InstanceStatus string

const (
	StatusPending    InstanceStatus = "pending"
	StatusInProgress InstanceStatus = "in_progress"
	StatusCompleted  InstanceStatus = "completed"
	StatusArchived   InstanceStatus = "archived"
)

func (s InstanceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// AssessmentInstance binds a user, a period and a template. At most one
// instance may exist per (user, period, template) triple.
type AssessmentInstance struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	UserID      string             `gorm:"type:varchar(36);not null;uniqueIndex:idx_instance_user_period_template" json:"user_id"`
	User        User               `gorm:"foreignKey:UserID" json:"-"`
	PeriodID    uint               `gorm:"not null;uniqueIndex:idx_instance_user_period_template" json:"period_id"`
	Period      AssessmentPeriod   `gorm:"foreignKey:PeriodID" json:"-"`
	TemplateID  uint               `gorm:"not null;uniqueIndex:idx_instance_user_period_template" json:"template_id"`
	Template    AssessmentTemplate `gorm:"foreignKey:TemplateID" json:"-"`
	Status      InstanceStatus     `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// AssessmentResponse records one score for one question of one instance.
type AssessmentResponse struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	InstanceID uint               `gorm:"not null;uniqueIndex:idx_response_instance_question" json:"instance_id"`
	Instance   AssessmentInstance `gorm:"foreignKey:InstanceID" json:"-"`
	QuestionID uint               `gorm:"not null;uniqueIndex:idx_response_instance_question" json:"question_id"`
	Question   AssessmentQuestion `gorm:"foreignKey:QuestionID" json:"-"`
	Score      int                `gorm:"not null" json:"score"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
