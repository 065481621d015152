package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
)

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// CreateWithOwner creates an organization and adds its owner to the members set
	CreateWithOwner(ctx context.Context, org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id uint64) (*models.Organization, error)

	// FindBySlug finds an organization by its unique slug
	FindBySlug(ctx context.Context, slug string) (*models.Organization, error)

	// FindByInviteCode finds an organization by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Organization, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error

	// Delete deletes an organization and everything it owns
	Delete(ctx context.Context, id uint64) error

	// AddMember adds a member to an organization
	AddMember(ctx context.Context, member *models.OrganizationMember) error

	// RemoveMember removes a member from an organization
	RemoveMember(ctx context.Context, organizationID, userID uint64) error

	// IsMember reports whether the user is in the organization's members set
	IsMember(ctx context.Context, organizationID, userID uint64) (bool, error)

	// ListMembers lists the users in an organization's members set
	ListMembers(ctx context.Context, organizationID uint64) ([]models.User, error)

	// AccessibleIDs returns the organizations the user owns or is a member of
	AccessibleIDs(ctx context.Context, userID uint64) ([]uint64, error)

	// List lists organizations inside the scope, ordered by name
	List(ctx context.Context, filter OrganizationFilter) ([]models.Organization, error)

	// WithStats lists organizations inside the scope with project and task counts
	WithStats(ctx context.Context, scope Scope) ([]OrganizationWithStats, error)
}

// OrganizationFilter holds filtering options for listing organizations
type OrganizationFilter struct {
	Scope Scope
	Query string
}

// OrganizationWithStats is an organization row with aggregate counts
type OrganizationWithStats struct {
	models.Organization
	ProjectCount   int64 `json:"project_count"`
	TotalTasks     int64 `json:"total_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id uint64) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error

	// List retrieves projects inside the scope with filtering
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)

	// WithTaskStats lists projects inside the scope with task counts
	WithTaskStats(ctx context.Context, scope Scope, now time.Time) ([]ProjectWithStats, error)
}

// ProjectFilter holds filtering options for listing projects. Due dates are
// compared at day granularity.
type ProjectFilter struct {
	Scope          Scope
	OrganizationID *uint64
	Status         *models.ProjectStatus
	Statuses       []models.ProjectStatus
	Query          string
	DueFrom        *time.Time
	DueTo          *time.Time
	DueBefore      *time.Time
	SortByDueDate  bool
}

// ProjectWithStats is a project row with aggregate task counts
type ProjectWithStats struct {
	models.Project
	TaskCount            int64 `json:"task_count"`
	CompletedTasksCount  int64 `json:"completed_tasks_count"`
	InProgressTasksCount int64 `json:"in_progress_tasks_count"`
	TodoTasksCount       int64 `json:"todo_tasks_count"`
	OverdueTasksCount    int64 `json:"overdue_tasks_count"`
}

// TaskOrder selects the ordering of task listings
type TaskOrder int

const (
	TaskOrderNewest TaskOrder = iota
	TaskOrderDueDate
	TaskOrderPriority
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	Update(ctx context.Context, task *models.Task) error

	// List retrieves tasks inside the scope with filtering
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// WithCommentCount lists tasks inside the scope with their comment counts
	WithCommentCount(ctx context.Context, scope Scope) ([]TaskWithCommentCount, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Scope         Scope
	ProjectID     *uint64
	Status        *models.TaskStatus
	Statuses      []models.TaskStatus
	Priority      *models.TaskPriority
	Priorities    []models.TaskPriority
	AssigneeEmail string
	Query         string
	DueFrom       *time.Time
	DueTo         *time.Time
	DueBefore     *time.Time
	Order         TaskOrder
}

// TaskWithCommentCount is a task row with its number of comments
type TaskWithCommentCount struct {
	models.Task
	CommentCount int64 `json:"comment_count"`
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id uint64) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error

	// List retrieves comments inside the scope, newest first
	List(ctx context.Context, filter CommentFilter) ([]models.Comment, error)
}

// CommentFilter holds filtering options for listing comments
type CommentFilter struct {
	Scope       Scope
	TaskID      *uint64
	AuthorEmail string
	Query       string
	Since       *time.Time
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email, case-insensitively
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List lists every user ordered by email
	List(ctx context.Context) ([]models.User, error)
}
