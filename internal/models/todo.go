package models

import (
	"time"

	"gorm.io/gorm"
)

type Todo struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	DueDate     *time.Time
	Status      string `gorm:"not null;default:pending"`
	Priority    string `gorm:"not null;default:medium"`
	AssigneeID  *uint  `gorm:"index"`
	TeamID      *uint  `gorm:"index"` // nil means a personal todo
	CreatedByID uint   `gorm:"not null;index"`

	// Relationships
	Assignee  *User `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Team      *Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CreatedBy User  `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
