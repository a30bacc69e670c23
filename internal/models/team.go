package models

import "gorm.io/gorm"

type Team struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	OwnerID     uint `gorm:"not null;index"`

	// Relationships
	Owner   User   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Members []User `gorm:"many2many:team_members"`
	Todos   []Todo `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// HasMember reports whether userID is the owner or an explicit member.
// The owner counts as a member even when absent from the members list.
func (t *Team) HasMember(userID uint) bool {
	if t.OwnerID == userID {
		return true
	}

	for _, member := range t.Members {
		if member.ID == userID {
			return true
		}
	}

	return false
}
