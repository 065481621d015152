package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithOwner creates the organization and the owner's membership atomically
func (r *GormOrganizationRepository) CreateWithOwner(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		member := &models.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         org.OwnerID,
			JoinedAt:       org.CreatedAt,
		}
		return tx.Create(member).Error
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindBySlug finds an organization by slug
func (r *GormOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByInviteCode finds an organization by invite code
func (r *GormOrganizationRepository) FindByInviteCode(ctx context.Context, code string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// Delete deletes an organization and all related data in a transaction.
// Children are removed explicitly so the result does not depend on the
// dialect enforcing foreign keys.
func (r *GormOrganizationRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&models.Project{}).Select("id").Where("organization_id = ?", id)
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id IN (?)", projectIDs)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.OrganizationMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Organization{}, id).Error
	})
}

// AddMember adds a member to an organization
func (r *GormOrganizationRepository) AddMember(ctx context.Context, member *models.OrganizationMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// RemoveMember removes a member from an organization
func (r *GormOrganizationRepository) RemoveMember(ctx context.Context, organizationID, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Delete(&models.OrganizationMember{}).Error
}

// IsMember reports whether a membership row exists
func (r *GormOrganizationRepository) IsMember(ctx context.Context, organizationID, userID uint64) (bool, error) {
	var member models.OrganizationMember
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListMembers lists all members of an organization
func (r *GormOrganizationRepository) ListMembers(ctx context.Context, organizationID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN organization_members ON organization_members.user_id = users.id").
		Where("organization_members.organization_id = ?", organizationID).
		Order("users.email").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// AccessibleIDs returns the IDs of organizations the user owns or is a member of.
// Filtering the organizations table, rather than joining members, keeps each
// organization at most once.
func (r *GormOrganizationRepository) AccessibleIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("organizations.owner_id = ? OR organizations.id IN (SELECT m.organization_id FROM organization_members m WHERE m.user_id = ?)", userID, userID).
		Order("organizations.id").
		Pluck("organizations.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// List lists organizations inside the scope
func (r *GormOrganizationRepository) List(ctx context.Context, filter OrganizationFilter) ([]models.Organization, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Scopes(AccessibleOrganizations(filter.Scope))

	if filter.Query != "" {
		query = query.Scopes(ContainsAny(filter.Query, "organizations.name", "organizations.slug", "organizations.contact_email"))
	}

	var orgs []models.Organization
	if err := query.Order("organizations.name ASC, organizations.id ASC").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// WithStats lists organizations with distinct project and task counts
func (r *GormOrganizationRepository) WithStats(ctx context.Context, scope Scope) ([]OrganizationWithStats, error) {
	var rows []OrganizationWithStats
	err := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Scopes(AccessibleOrganizations(scope)).
		Select(`organizations.*,
			COUNT(DISTINCT projects.id) AS project_count,
			COUNT(DISTINCT tasks.id) AS total_tasks,
			COUNT(DISTINCT CASE WHEN tasks.status = ? THEN tasks.id END) AS completed_tasks`,
			models.TaskStatusDone).
		Joins("LEFT JOIN projects ON projects.organization_id = organizations.id").
		Joins("LEFT JOIN tasks ON tasks.project_id = projects.id").
		Group("organizations.id").
		Order("organizations.name ASC, organizations.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
