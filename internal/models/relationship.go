package models

import "time"

// ManagerRelationship binds a manager to a subordinate for one period.
// A subordinate has at most one manager per period.
type ManagerRelationship struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	ManagerID     string           `gorm:"type:varchar(36);not null;index" json:"manager_id"`
	Manager       User             `gorm:"foreignKey:ManagerID" json:"-"`
	SubordinateID string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_relationship_subordinate_period" json:"subordinate_id"`
	Subordinate   User             `gorm:"foreignKey:SubordinateID" json:"-"`
	PeriodID      uint             `gorm:"not null;uniqueIndex:idx_relationship_subordinate_period" json:"period_id"`
	Period        AssessmentPeriod `gorm:"foreignKey:PeriodID" json:"-"`
	CreatedAt     time.Time        `json:"created_at"`
}
