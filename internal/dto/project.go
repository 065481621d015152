package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID             uint64               `json:"id"`
	OrganizationID uint64               `json:"organization_id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Status         models.ProjectStatus `json:"status"`
	DueDate        *string              `json:"due_date"`
	CreatorID      *uint64              `json:"creator_id"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ProjectStatsDTO is a project with its task counts
type ProjectStatsDTO struct {
	ProjectDTO
	TaskCount            int64 `json:"task_count"`
	CompletedTasksCount  int64 `json:"completed_tasks_count"`
	InProgressTasksCount int64 `json:"in_progress_tasks_count"`
	TodoTasksCount       int64 `json:"todo_tasks_count"`
	OverdueTasksCount    int64 `json:"overdue_tasks_count"`
}

// ToProjectDTO converts a Project model. The due date is a calendar day.
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:             project.ID,
		OrganizationID: project.OrganizationID,
		Name:           project.Name,
		Description:    project.Description,
		Status:         project.Status,
		CreatorID:      project.CreatorID,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
	if project.DueDate != nil {
		day := project.DueDate.UTC().Format(time.DateOnly)
		dto.DueDate = &day
	}
	return dto
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	return convertAll(projects, ToProjectDTO)
}

// ToProjectStatsDTOs converts project statistics rows
func ToProjectStatsDTOs(rows []repository.ProjectWithStats) []ProjectStatsDTO {
	return convertAll(rows, func(row repository.ProjectWithStats) ProjectStatsDTO {
		return ProjectStatsDTO{
			ProjectDTO:           ToProjectDTO(row.Project),
			TaskCount:            row.TaskCount,
			CompletedTasksCount:  row.CompletedTasksCount,
			InProgressTasksCount: row.InProgressTasksCount,
			TodoTasksCount:       row.TodoTasksCount,
			OverdueTasksCount:    row.OverdueTasksCount,
		}
	})
}
