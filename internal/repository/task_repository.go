package repository

import (
	"context"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// List retrieves tasks with filtering
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(AccessibleTasks(filter.Scope))

	// Apply filters
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("tasks.status IN ?", filter.Statuses)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if len(filter.Priorities) > 0 {
		query = query.Where("tasks.priority IN ?", filter.Priorities)
	}
	if filter.AssigneeEmail != "" {
		query = query.Where("LOWER(tasks.assignee_email) = LOWER(?)", filter.AssigneeEmail)
	}
	if filter.Query != "" {
		query = query.Scopes(ContainsAny(filter.Query, "tasks.title", "tasks.description", "tasks.assignee_email"))
	}
	if filter.DueFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueTo)
	}
	if filter.DueBefore != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueBefore)
	}

	switch filter.Order {
	case TaskOrderDueDate:
		query = query.Order("tasks.due_date ASC, tasks.id ASC")
	case TaskOrderPriority:
		query = query.
			Order("CASE tasks.priority WHEN 'URGENT' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC").
			Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC, tasks.id ASC")
	default:
		query = query.Order("tasks.created_at DESC, tasks.id DESC")
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// WithCommentCount lists tasks with the number of comments on each
func (r *GormTaskRepository) WithCommentCount(ctx context.Context, scope Scope) ([]TaskWithCommentCount, error) {
	var rows []TaskWithCommentCount
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(AccessibleTasks(scope)).
		Select("tasks.*, COUNT(DISTINCT comments.id) AS comment_count").
		Joins("LEFT JOIN comments ON comments.task_id = tasks.id").
		Group("tasks.id").
		Order("tasks.created_at DESC, tasks.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
