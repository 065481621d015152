package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotAuthenticated  = errors.New("authentication required")
	ErrUnsupportedEntity = errors.New("unsupported entity type")
)

// Principal is the identity a request acts as. The zero value is anonymous.
type Principal struct {
	UserID      uint64
	Email       string
	IsSuperuser bool
}

// Authenticated reports whether the principal carries a user identity.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// PrincipalFromUser builds the principal for a stored user.
func PrincipalFromUser(user *models.User) Principal {
	return Principal{
		UserID:      user.ID,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
	}
}

// Organizations is the slice of the organization store the resolver needs.
type Organizations interface {
	FindByID(ctx context.Context, id uint64) (*models.Organization, error)
	IsMember(ctx context.Context, organizationID, userID uint64) (bool, error)
	AccessibleIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// Projects looks up a project by id.
type Projects interface {
	FindByID(ctx context.Context, id uint64) (*models.Project, error)
}

// Tasks looks up a task by id.
type Tasks interface {
	FindByID(ctx context.Context, id uint64) (*models.Task, error)
}

// Resolver decides read and write permission by walking an entity's
// ownership chain up to its organization.
type Resolver struct {
	orgs     Organizations
	projects Projects
	tasks    Tasks
}

// NewResolver creates a new Resolver
func NewResolver(orgs Organizations, projects Projects, tasks Tasks) *Resolver {
	return &Resolver{
		orgs:     orgs,
		projects: projects,
		tasks:    tasks,
	}
}

// HasAccess reports whether p may read entity. Superusers may read
// everything; everyone else needs to own or belong to the organization at
// the top of the entity's chain. A missing parent denies access.
func (r *Resolver) HasAccess(ctx context.Context, p Principal, entity models.Entity) (bool, error) {
	if !p.Authenticated() {
		return false, ErrNotAuthenticated
	}
	if p.IsSuperuser {
		return true, nil
	}

	switch e := entity.(type) {
	case *models.Organization:
		if e.OwnerID == p.UserID {
			return true, nil
		}
		ok, err := r.orgs.IsMember(ctx, e.ID, p.UserID)
		if err != nil {
			return false, fmt.Errorf("failed to check membership: %w", err)
		}
		return ok, nil

	case *models.Project:
		org, err := r.orgs.FindByID(ctx, e.OrganizationID)
		if err != nil {
			return missingParent(err)
		}
		return r.HasAccess(ctx, p, org)

	case *models.Task:
		project, err := r.projects.FindByID(ctx, e.ProjectID)
		if err != nil {
			return missingParent(err)
		}
		return r.HasAccess(ctx, p, project)

	case *models.Comment:
		task, err := r.tasks.FindByID(ctx, e.TaskID)
		if err != nil {
			return missingParent(err)
		}
		return r.HasAccess(ctx, p, task)
	}

	return false, fmt.Errorf("%w: %T", ErrUnsupportedEntity, entity)
}

// CanUpdate reports whether p may write entity. Organization fields are
// owner-only; projects, tasks and comments follow HasAccess.
func (r *Resolver) CanUpdate(ctx context.Context, p Principal, entity models.Entity) (bool, error) {
	if !p.Authenticated() {
		return false, ErrNotAuthenticated
	}
	if p.IsSuperuser {
		return true, nil
	}
	if org, ok := entity.(*models.Organization); ok {
		return org.OwnerID == p.UserID, nil
	}
	return r.HasAccess(ctx, p, entity)
}

// Locate returns the full ownership chain of entity, which write paths use
// to invalidate every ancestor.
func (r *Resolver) Locate(ctx context.Context, entity models.Entity) (models.Ref, error) {
	switch e := entity.(type) {
	case *models.Organization:
		return e.Ref(), nil
	case *models.Project:
		return e.Ref(), nil
	case *models.Task:
		project, err := r.projects.FindByID(ctx, e.ProjectID)
		if err != nil {
			return models.Ref{}, fmt.Errorf("failed to find project: %w", err)
		}
		return e.Ref(project.OrganizationID), nil
	case *models.Comment:
		task, err := r.tasks.FindByID(ctx, e.TaskID)
		if err != nil {
			return models.Ref{}, fmt.Errorf("failed to find task: %w", err)
		}
		return r.Locate(ctx, task)
	}
	return models.Ref{}, fmt.Errorf("%w: %T", ErrUnsupportedEntity, entity)
}

// OrganizationsFor returns the scope of organizations p may read: all of
// them for a superuser, otherwise those p owns or is a member of.
func (r *Resolver) OrganizationsFor(ctx context.Context, p Principal) (repository.Scope, error) {
	if !p.Authenticated() {
		return repository.Scope{}, ErrNotAuthenticated
	}
	if p.IsSuperuser {
		return repository.Scope{All: true}, nil
	}
	ids, err := r.orgs.AccessibleIDs(ctx, p.UserID)
	if err != nil {
		return repository.Scope{}, fmt.Errorf("failed to resolve organizations: %w", err)
	}
	return repository.Scope{OrganizationIDs: ids}, nil
}

func missingParent(err error) (bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to load parent: %w", err)
}
