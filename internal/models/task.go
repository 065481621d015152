package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// OpenTaskStatuses are the statuses considered for due-soon, overdue and
// high-priority listings.
var OpenTaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress}

// ClosedTaskStatuses never count as overdue in aggregate statistics.
var ClosedTaskStatuses = []TaskStatus{TaskStatusDone, TaskStatusCancelled}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID            uint64       `gorm:"primarykey" json:"id"`
	ProjectID     uint64       `gorm:"not null" json:"project_id"`
	Title         string       `gorm:"type:varchar(200);not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	Status        TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	Priority      TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	AssigneeEmail string       `gorm:"type:varchar(255)" json:"assignee_email"`
	DueDate       *time.Time   `json:"due_date"`
	CreatorID     *uint64      `json:"creator_id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Creator *User   `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL" json:"-"`
}

// Ref needs the owning project's organization, which a task row does not
// carry; callers that know it pass it in.
func (t *Task) Ref(organizationID uint64) Ref {
	return Ref{OrganizationID: organizationID, ProjectID: t.ProjectID, TaskID: t.ID}
}
