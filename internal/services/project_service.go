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
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name is required")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrOrganizationRequired = errors.New("organization is required")
)

// ProjectService handles project business logic
type ProjectService struct {
	tenancy
	projectRepo repository.ProjectRepository
	orgRepo     repository.OrganizationRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, orgRepo repository.OrganizationRepository, resolver *access.Resolver, caches *cache.Set) *ProjectService {
	return &ProjectService{
		tenancy:     newTenancy(resolver, caches),
		projectRepo: projectRepo,
		orgRepo:     orgRepo,
	}
}

func (s *ProjectService) list(ctx context.Context, v Viewer, key cache.Key, filter repository.ProjectFilter) ([]models.Project, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	filter.Scope = scope
	return listCached(ctx, s.caches.Projects, scope, key, func(ctx context.Context) ([]models.Project, error) {
		return s.projectRepo.List(ctx, filter)
	})
}

// MyProjects lists every project the viewer can access
func (s *ProjectService) MyProjects(ctx context.Context, v Viewer) ([]models.Project, error) {
	return s.list(ctx, v, cache.NewKey("my_projects"), repository.ProjectFilter{})
}

// ProjectsByOrganization lists the projects of one accessible organization
func (s *ProjectService) ProjectsByOrganization(ctx context.Context, v Viewer, slug string) ([]models.Project, error) {
	org, err := s.orgRepo.FindBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	ok, err := s.visible(ctx, v, org.ID, org)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrganizationNotFound
	}

	scope := repository.SingleOrganization(org.ID)
	return listCached(ctx, s.caches.Projects, scope, cache.NewKey("projects_by_organization"),
		func(ctx context.Context) ([]models.Project, error) {
			return s.projectRepo.List(ctx, repository.ProjectFilter{Scope: scope, OrganizationID: &org.ID})
		})
}

// ProjectsWithStats lists accessible projects with task counts
func (s *ProjectService) ProjectsWithStats(ctx context.Context, v Viewer) ([]repository.ProjectWithStats, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	return listCached(ctx, s.caches.Projects, scope, cache.NewKey("projects_with_stats"),
		func(ctx context.Context) ([]repository.ProjectWithStats, error) {
			return s.projectRepo.WithTaskStats(ctx, scope, now)
		})
}

// SearchProjects matches name and description
func (s *ProjectService) SearchProjects(ctx context.Context, v Viewer, query string) ([]models.Project, error) {
	query, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, v, cache.NewKey("search_projects").With(query), repository.ProjectFilter{Query: query})
}

// ProjectsByStatus lists accessible projects with the given status
func (s *ProjectService) ProjectsByStatus(ctx context.Context, v Viewer, status models.ProjectStatus) ([]models.Project, error) {
	if !status.Valid() {
		return nil, ErrInvalidProjectStatus
	}
	return s.list(ctx, v, cache.NewKey("projects_by_status").With(status), repository.ProjectFilter{Status: &status})
}

// ProjectsDueSoon lists active projects due between today and today+days,
// both inclusive, soonest first.
func (s *ProjectService) ProjectsDueSoon(ctx context.Context, v Viewer, days int) ([]models.Project, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	today := s.today()
	until := today.AddDate(0, 0, days)

	key := cache.NewKey("projects_due_soon").Named("days", days).Named("today", today.Format(time.DateOnly))
	return s.list(ctx, v, key, repository.ProjectFilter{
		Statuses:      models.OpenProjectStatuses,
		DueFrom:       &today,
		DueTo:         &until,
		SortByDueDate: true,
	})
}

// OverdueProjects lists active projects whose due date is before today
func (s *ProjectService) OverdueProjects(ctx context.Context, v Viewer) ([]models.Project, error) {
	today := s.today()

	key := cache.NewKey("overdue_projects").Named("today", today.Format(time.DateOnly))
	return s.list(ctx, v, key, repository.ProjectFilter{
		Statuses:      models.OpenProjectStatuses,
		DueBefore:     &today,
		SortByDueDate: true,
	})
}

// Project returns one project. Missing and inaccessible projects both
// report ErrProjectNotFound.
func (s *ProjectService) Project(ctx context.Context, v Viewer, id uint64) (*models.Project, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return nil, ErrProjectNotFound
	}
	return getCached(ctx, s.caches.Projects, scope, cache.NewKey("project", cache.ProjectTag(id)).With(id),
		func(ctx context.Context) (*models.Project, error) {
			return s.findVisible(ctx, v, id)
		})
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	OrganizationID uint64
	Name           string
	Description    string
	Status         models.ProjectStatus
	DueDate        *time.Time
}

// CreateProject creates a project in an organization the viewer can access.
// Without an explicit organization the request's organization is used.
func (s *ProjectService) CreateProject(ctx context.Context, v Viewer, input CreateProjectInput) (*models.Project, error) {
	if !v.Principal.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}

	orgID := input.OrganizationID
	if orgID == 0 && v.Organization != nil {
		orgID = v.Organization.ID
	}
	if orgID == 0 {
		return nil, ErrOrganizationRequired
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}
	if input.Status == "" {
		input.Status = models.ProjectStatusActive
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidProjectStatus
	}

	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	ok, err := s.visible(ctx, v, org.ID, org)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrganizationNotFound
	}

	creatorID := v.Principal.UserID
	project := &models.Project{
		OrganizationID: org.ID,
		Name:           name,
		Description:    input.Description,
		Status:         input.Status,
		DueDate:        dateOnly(input.DueDate),
		CreatorID:      &creatorID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.caches.InvalidateRef(ctx, project.Ref())
	return project, nil
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Name         *string
	Description  *string
	Status       *models.ProjectStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// UpdateProject updates an existing project
func (s *ProjectService) UpdateProject(ctx context.Context, v Viewer, id uint64, input UpdateProjectInput) (*models.Project, error) {
	if !v.Principal.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}

	project, err := s.findVisible(ctx, v, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.resolver.CanUpdate(ctx, v.Principal, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProjectNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidProjectStatus
		}
		project.Status = *input.Status
	}
	if input.ClearDueDate {
		project.DueDate = nil
	} else if input.DueDate != nil {
		project.DueDate = dateOnly(input.DueDate)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.caches.InvalidateRef(ctx, project.Ref())
	return project, nil
}

func (s *ProjectService) findVisible(ctx context.Context, v Viewer, id uint64) (*models.Project, error) {
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

// dateOnly drops the time of day; project due dates are calendar days.
func dateOnly(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	d := truncateDay(*ts)
	return &d
}
