package models

import "time"

// AssessmentType is the root of the assessment hierarchy. Categories and
// templates hang off a type; a type cannot be deleted while either exist.
type AssessmentType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Purpose     string    `gorm:"type:text" json:"purpose,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AssessmentCategory struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	AssessmentTypeID uint           `gorm:"not null;index;uniqueIndex:idx_category_type_name" json:"assessment_type_id"`
	AssessmentType   AssessmentType `gorm:"foreignKey:AssessmentTypeID" json:"-"`
	Name             string         `gorm:"type:varchar(200);not null;uniqueIndex:idx_category_type_name" json:"name"`
	Description      string         `gorm:"type:text" json:"description,omitempty"`
	DisplayOrder     int            `gorm:"not null;default:0" json:"display_order"`
	IsActive         bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type AssessmentTemplate struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	AssessmentTypeID uint           `gorm:"not null;index" json:"assessment_type_id"`
	AssessmentType   AssessmentType `gorm:"foreignKey:AssessmentTypeID" json:"-"`
	Name             string         `gorm:"type:varchar(200);not null;uniqueIndex:idx_template_name_version" json:"name"`
	Version          string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_template_name_version" json:"version"`
	Description      string         `gorm:"type:text" json:"description,omitempty"`
	IsActive         bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type AssessmentQuestion struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	TemplateID   uint               `gorm:"not null;index;uniqueIndex:idx_question_template_text" json:"template_id"`
	Template     AssessmentTemplate `gorm:"foreignKey:TemplateID" json:"-"`
	CategoryID   uint               `gorm:"not null;index" json:"category_id"`
	Category     AssessmentCategory `gorm:"foreignKey:CategoryID" json:"-"`
	QuestionText string             `gorm:"type:varchar(500);not null;uniqueIndex:idx_question_template_text" json:"question_text"`
	DisplayOrder int                `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool               `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
