package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/cache"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleEmpty          = errors.New("title cannot be empty")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrInvalidAssignee     = errors.New("assignee email is invalid")
	ErrProjectRequired     = errors.New("project is required")
)

// TaskService handles task business logic
type TaskService struct {
	tenancy
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, resolver *access.Resolver, caches *cache.Set) *TaskService {
	return &TaskService{
		tenancy:     newTenancy(resolver, caches),
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

func (s *TaskService) list(ctx context.Context, v Viewer, key cache.Key, filter repository.TaskFilter) ([]models.Task, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	filter.Scope = scope
	return listCached(ctx, s.caches.Tasks, scope, key, func(ctx context.Context) ([]models.Task, error) {
		return s.taskRepo.List(ctx, filter)
	})
}

// MyTasks lists every task the viewer can access
func (s *TaskService) MyTasks(ctx context.Context, v Viewer) ([]models.Task, error) {
	return s.list(ctx, v, cache.NewKey("my_tasks"), repository.TaskFilter{})
}

// TasksByProject lists the tasks of one accessible project
func (s *TaskService) TasksByProject(ctx context.Context, v Viewer, projectID uint64) ([]models.Task, error) {
	project, err := s.findProject(ctx, v, projectID)
	if err != nil {
		return nil, err
	}

	scope := repository.SingleOrganization(project.OrganizationID)
	key := cache.NewKey("tasks_by_project", cache.ProjectTag(project.ID)).With(project.ID)
	return listCached(ctx, s.caches.Tasks, scope, key, func(ctx context.Context) ([]models.Task, error) {
		return s.taskRepo.List(ctx, repository.TaskFilter{Scope: scope, ProjectID: &project.ID})
	})
}

// TasksByStatus lists accessible tasks with the given status
func (s *TaskService) TasksByStatus(ctx context.Context, v Viewer, status models.TaskStatus) ([]models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	return s.list(ctx, v, cache.NewKey("tasks_by_status").With(status), repository.TaskFilter{Status: &status})
}

// TasksByPriority lists accessible tasks with the given priority
func (s *TaskService) TasksByPriority(ctx context.Context, v Viewer, priority models.TaskPriority) ([]models.Task, error) {
	if !priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}
	return s.list(ctx, v, cache.NewKey("tasks_by_priority").With(priority), repository.TaskFilter{Priority: &priority})
}

// TasksByAssignee lists accessible tasks assigned to email, ignoring case
func (s *TaskService) TasksByAssignee(ctx context.Context, v Viewer, email string) ([]models.Task, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidAssignee
	}
	return s.list(ctx, v, cache.NewKey("tasks_by_assignee").With(email), repository.TaskFilter{AssigneeEmail: email})
}

// OverdueTasks lists open tasks due before now, earliest first
func (s *TaskService) OverdueTasks(ctx context.Context, v Viewer) ([]models.Task, error) {
	now := s.clock()
	return s.list(ctx, v, cache.NewKey("overdue_tasks"), repository.TaskFilter{
		Statuses:  models.OpenTaskStatuses,
		DueBefore: &now,
		Order:     repository.TaskOrderDueDate,
	})
}

// TasksDueSoon lists open tasks due between now and now+days, both inclusive
func (s *TaskService) TasksDueSoon(ctx context.Context, v Viewer, days int) ([]models.Task, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	now := s.clock()
	until := now.AddDate(0, 0, days)
	return s.list(ctx, v, cache.NewKey("tasks_due_soon").Named("days", days), repository.TaskFilter{
		Statuses: models.OpenTaskStatuses,
		DueFrom:  &now,
		DueTo:    &until,
		Order:    repository.TaskOrderDueDate,
	})
}

// HighPriorityTasks lists open HIGH and URGENT tasks, most urgent first
func (s *TaskService) HighPriorityTasks(ctx context.Context, v Viewer) ([]models.Task, error) {
	return s.list(ctx, v, cache.NewKey("high_priority_tasks"), repository.TaskFilter{
		Statuses:   models.OpenTaskStatuses,
		Priorities: []models.TaskPriority{models.TaskPriorityHigh, models.TaskPriorityUrgent},
		Order:      repository.TaskOrderPriority,
	})
}

// SearchTasks matches title, description and assignee email
func (s *TaskService) SearchTasks(ctx context.Context, v Viewer, query string) ([]models.Task, error) {
	query, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, v, cache.NewKey("search_tasks").With(query), repository.TaskFilter{Query: query})
}

// TasksWithCommentCount lists accessible tasks with their comment counts
func (s *TaskService) TasksWithCommentCount(ctx context.Context, v Viewer) ([]repository.TaskWithCommentCount, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	return listCached(ctx, s.caches.Tasks, scope, cache.NewKey("tasks_with_comment_count"),
		func(ctx context.Context) ([]repository.TaskWithCommentCount, error) {
			return s.taskRepo.WithCommentCount(ctx, scope)
		})
}

// Task returns one task. Missing and inaccessible tasks both report
// ErrTaskNotFound.
func (s *TaskService) Task(ctx context.Context, v Viewer, id uint64) (*models.Task, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return nil, ErrTaskNotFound
	}
	return getCached(ctx, s.caches.Tasks, scope, cache.NewKey("task", cache.TaskTag(id)).With(id),
		func(ctx context.Context) (*models.Task, error) {
			task, _, err := s.findVisible(ctx, v, id)
			return task, err
		})
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID     uint64
	Title         string
	Description   string
	Status        models.TaskStatus
	Priority      models.TaskPriority
	AssigneeEmail string
	DueDate       *time.Time
}

// CreateTask creates a task in a project the viewer can access
func (s *TaskService) CreateTask(ctx context.Context, v Viewer, input CreateTaskInput) (*models.Task, error) {
	if !v.Principal.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}
	if input.ProjectID == 0 {
		return nil, ErrProjectRequired
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}
	assignee := strings.TrimSpace(input.AssigneeEmail)
	if assignee != "" {
		if err := validateEmail(assignee); err != nil {
			return nil, ErrInvalidAssignee
		}
	}

	project, err := s.findProject(ctx, v, input.ProjectID)
	if err != nil {
		return nil, err
	}

	creatorID := v.Principal.UserID
	task := &models.Task{
		ProjectID:     project.ID,
		Title:         title,
		Description:   input.Description,
		Status:        input.Status,
		Priority:      input.Priority,
		AssigneeEmail: assignee,
		DueDate:       utcPtr(input.DueDate),
		CreatorID:     &creatorID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.caches.InvalidateRef(ctx, task.Ref(project.OrganizationID))
	return task, nil
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssigneeEmail *string
	DueDate       *time.Time
	ClearDueDate  bool
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(ctx context.Context, v Viewer, id uint64, input UpdateTaskInput) (*models.Task, error) {
	if !v.Principal.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}

	task, project, err := s.findVisible(ctx, v, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.resolver.CanUpdate(ctx, v.Principal, task)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTaskNotFound
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.AssigneeEmail != nil {
		assignee := strings.TrimSpace(*input.AssigneeEmail)
		if assignee != "" {
			if err := validateEmail(assignee); err != nil {
				return nil, ErrInvalidAssignee
			}
		}
		task.AssigneeEmail = assignee
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = utcPtr(input.DueDate)
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.caches.InvalidateRef(ctx, task.Ref(project.OrganizationID))
	return task, nil
}

func (s *TaskService) findProject(ctx context.Context, v Viewer, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	ok, err := s.visible(ctx, v, project.OrganizationID, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// findVisible loads a task with its project, which carries the organization.
func (s *TaskService) findVisible(ctx context.Context, v Viewer, id uint64) (*models.Task, *models.Project, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.findProject(ctx, v, task.ProjectID)
	if errors.Is(err, ErrProjectNotFound) {
		return nil, nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return task, project, nil
}

func utcPtr(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.UTC()
	return &t
}
