package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

// OpenProjectStatuses are the statuses considered for due-soon and overdue windows.
var OpenProjectStatuses = []ProjectStatus{ProjectStatusActive}

type Project struct {
	ID             uint64        `gorm:"primarykey" json:"id"`
	OrganizationID uint64        `gorm:"not null" json:"organization_id"`
	Name           string        `gorm:"type:varchar(200);not null" json:"name"`
	Description    string        `gorm:"type:text" json:"description"`
	Status         ProjectStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	DueDate        *time.Time    `gorm:"type:date" json:"due_date"`
	CreatorID      *uint64       `json:"creator_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Creator      *User        `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL" json:"-"`
}

func (p *Project) Ref() Ref {
	return Ref{OrganizationID: p.OrganizationID, ProjectID: p.ID}
}
