package service

import (
	"time"

	"appraise-go/internal/models"
)

type CreateTypeInput struct {
	Name        string
	Description string
	Purpose     string
}

type UpdateTypeInput struct {
	Name        *string
	Description *string
	Purpose     *string
	IsActive    *bool
}

type CreateCategoryInput struct {
	AssessmentTypeID uint
	Name             string
	Description      string
	DisplayOrder     int
}

type UpdateCategoryInput struct {
	Name         *string
	Description  *string
	DisplayOrder *int
	IsActive     *bool
}

type CreateTemplateInput struct {
	AssessmentTypeID uint
	Name             string
	Version          string
	Description      string
}

type UpdateTemplateInput struct {
	Name        *string
	Version     *string
	Description *string
	IsActive    *bool
}

type CreateQuestionInput struct {
	TemplateID   uint
	CategoryID   uint
	QuestionText string
	DisplayOrder int
}

type UpdateQuestionInput struct {
	QuestionText *string
	CategoryID   *uint
	DisplayOrder *int
	IsActive     *bool
}

type CreatePeriodInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

type UpdatePeriodInput struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  *bool
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
}

type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	IsActive  *bool
}

type CreateInstanceInput struct {
	UserID     string
	PeriodID   uint
	TemplateID uint
	// Status defaults to pending when empty.
	Status  models.InstanceStatus
	DueDate *time.Time
}

// ReorderItem is one entry of a batch display-order update.
type ReorderItem struct {
	ID           uint `json:"id"`
	DisplayOrder int  `json:"display_order"`
}

// CompletionResult is the outcome of diffing a template's questions against
// an instance's recorded responses.
type CompletionResult struct {
	IsComplete       bool   `json:"is_complete"`
	MissingQuestions []uint `json:"missing_questions"`
}

type CreateInvitationInput struct {
	ManagerID   *string
	TemplateID  *uint
	PeriodID    uint
	Email       string
	FirstName   string
	LastName    string
	InvitedRole models.Role
	DueDate     *time.Time
}

type AcceptInvitationInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// AcceptInvitationResult reports what acceptance provisioned.
type AcceptInvitationResult struct {
	UserID               string `json:"user_id"`
	AssessmentInstanceID *uint  `json:"assessment_instance_id,omitempty"`
}

// RelationshipHierarchy is one manager with their subordinates for a period.
type RelationshipHierarchy struct {
	Manager      *models.User  `json:"manager"`
	Subordinates []models.User `json:"subordinates"`
}
