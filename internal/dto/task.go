package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64              `json:"id"`
	ProjectID     uint64              `json:"project_id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	AssigneeEmail string              `json:"assignee_email"`
	DueDate       *time.Time          `json:"due_date"`
	CreatorID     *uint64             `json:"creator_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TaskWithCommentCountDTO is a task with its number of comments
type TaskWithCommentCountDTO struct {
	TaskDTO
	CommentCount int64 `json:"comment_count"`
}

// TaskListResponse wraps a task listing
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Count int       `json:"count"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	return convertAll(users, ToUserDTO)
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:            task.ID,
		ProjectID:     task.ProjectID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		Priority:      task.Priority,
		AssigneeEmail: task.AssigneeEmail,
		DueDate:       task.DueDate,
		CreatorID:     task.CreatorID,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task) TaskListResponse {
	return TaskListResponse{
		Tasks: convertAll(tasks, ToTaskDTO),
		Count: len(tasks),
	}
}

// ToTaskWithCommentCountDTOs converts comment count rows
func ToTaskWithCommentCountDTOs(rows []repository.TaskWithCommentCount) []TaskWithCommentCountDTO {
	return convertAll(rows, func(row repository.TaskWithCommentCount) TaskWithCommentCountDTO {
		return TaskWithCommentCountDTO{
			TaskDTO:      ToTaskDTO(row.Task),
			CommentCount: row.CommentCount,
		}
	})
}

// convertAll maps items with fn, always returning a non-nil slice so empty
// listings encode as [].
func convertAll[T, D any](items []T, fn func(T) D) []D {
	out := make([]D, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}
