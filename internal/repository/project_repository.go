package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// List retrieves projects with filtering
func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Scopes(AccessibleProjects(filter.Scope))

	if filter.OrganizationID != nil {
		query = query.Where("projects.organization_id = ?", *filter.OrganizationID)
	}
	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("projects.status IN ?", filter.Statuses)
	}
	if filter.Query != "" {
		query = query.Scopes(ContainsAny(filter.Query, "projects.name", "projects.description"))
	}
	if filter.DueFrom != nil {
		query = query.Where("projects.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("projects.due_date <= ?", *filter.DueTo)
	}
	if filter.DueBefore != nil {
		query = query.Where("projects.due_date < ?", *filter.DueBefore)
	}

	if filter.SortByDueDate {
		query = query.Order("projects.due_date ASC, projects.id ASC")
	} else {
		query = query.Order("projects.created_at DESC, projects.id DESC")
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// WithTaskStats lists projects with task counts computed by the database
func (r *GormProjectRepository) WithTaskStats(ctx context.Context, scope Scope, now time.Time) ([]ProjectWithStats, error) {
	var rows []ProjectWithStats
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Scopes(AccessibleProjects(scope)).
		Select(`projects.*,
			COUNT(DISTINCT tasks.id) AS task_count,
			COUNT(DISTINCT CASE WHEN tasks.status = ? THEN tasks.id END) AS completed_tasks_count,
			COUNT(DISTINCT CASE WHEN tasks.status = ? THEN tasks.id END) AS in_progress_tasks_count,
			COUNT(DISTINCT CASE WHEN tasks.status = ? THEN tasks.id END) AS todo_tasks_count,
			COUNT(DISTINCT CASE WHEN tasks.due_date < ? AND tasks.status NOT IN ? THEN tasks.id END) AS overdue_tasks_count`,
			models.TaskStatusDone,
			models.TaskStatusInProgress,
			models.TaskStatusTodo,
			now,
			models.ClosedTaskStatuses,
		).
		Joins("LEFT JOIN tasks ON tasks.project_id = projects.id").
		Group("projects.id").
		Order("projects.created_at DESC, projects.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
