package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/cache"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
)

var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrNotOrganizationOwner       = errors.New("only the organization owner can perform this action")
	ErrInvalidOrganizationName    = errors.New("organization name must be 1 to 100 characters")
	ErrInvalidSlug                = errors.New("slug may only contain lowercase letters, digits and hyphens")
	ErrSlugTaken                  = errors.New("slug is already in use")
	ErrInvalidContactEmail        = errors.New("contact email is invalid")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyOrganizationMember  = errors.New("user is already a member of this organization")
	ErrCannotRemoveOwner          = errors.New("the owner cannot be removed from the organization")
	ErrOrganizationMemberNotFound = errors.New("organization member not found")
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	tenancy
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, resolver *access.Resolver, caches *cache.Set) *OrganizationService {
	return &OrganizationService{
		tenancy:  newTenancy(resolver, caches),
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

// MyOrganizations lists the organizations the viewer can access.
func (s *OrganizationService) MyOrganizations(ctx context.Context, v Viewer) ([]models.Organization, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	return listCached(ctx, s.caches.Organizations, scope, cache.NewKey("my_organizations"),
		func(ctx context.Context) ([]models.Organization, error) {
			return s.orgRepo.List(ctx, repository.OrganizationFilter{Scope: scope})
		})
}

// SearchOrganizations matches name, slug and contact email.
func (s *OrganizationService) SearchOrganizations(ctx context.Context, v Viewer, query string) ([]models.Organization, error) {
	query, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	return listCached(ctx, s.caches.Organizations, scope, cache.NewKey("search_organizations").With(query),
		func(ctx context.Context) ([]models.Organization, error) {
			return s.orgRepo.List(ctx, repository.OrganizationFilter{Scope: scope, Query: query})
		})
}

// OrganizationsWithStats lists accessible organizations with project and task counts.
func (s *OrganizationService) OrganizationsWithStats(ctx context.Context, v Viewer) ([]repository.OrganizationWithStats, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	return listCached(ctx, s.caches.Organizations, scope, cache.NewKey("organizations_with_stats"),
		func(ctx context.Context) ([]repository.OrganizationWithStats, error) {
			return s.orgRepo.WithStats(ctx, scope)
		})
}

// Organization returns the organization with the given slug. Unknown and
// inaccessible slugs both report ErrOrganizationNotFound.
func (s *OrganizationService) Organization(ctx context.Context, v Viewer, slug string) (*models.Organization, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return nil, ErrOrganizationNotFound
	}
	return getCached(ctx, s.caches.Organizations, scope, cache.NewKey("organization").With(slug),
		func(ctx context.Context) (*models.Organization, error) {
			return s.findAccessibleBySlug(ctx, v, slug)
		})
}

// ResolveTenant looks up the organization context of a request. It returns
// nil when the slug is unknown or not accessible to p.
func (s *OrganizationService) ResolveTenant(ctx context.Context, p access.Principal, slug string) (*models.Organization, error) {
	org, err := s.Organization(ctx, Viewer{Principal: p}, slug)
	if errors.Is(err, ErrOrganizationNotFound) {
		return nil, nil
	}
	return org, err
}

// Members lists the members set of an accessible organization.
func (s *OrganizationService) Members(ctx context.Context, v Viewer, slug string) (*models.Organization, []models.User, error) {
	org, err := s.Organization(ctx, v, slug)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.orgRepo.ListMembers(ctx, org.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	return org, members, nil
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name         string
	Slug         string
	ContactEmail string
}

// CreateOrganization creates an organization owned by p and adds p to its
// members set.
func (s *OrganizationService) CreateOrganization(ctx context.Context, p access.Principal, input CreateOrganizationInput) (*models.Organization, error) {
	if !p.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}

	name := strings.TrimSpace(input.Name)
	if err := validateOrganizationName(name); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = models.SlugFromName(name)
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(ctx, slug, 0); err != nil {
		return nil, err
	}

	contactEmail := strings.TrimSpace(input.ContactEmail)
	if contactEmail == "" {
		contactEmail = p.Email
	}
	if err := validateEmail(contactEmail); err != nil {
		return nil, ErrInvalidContactEmail
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org := &models.Organization{
		Name:         name,
		Slug:         slug,
		ContactEmail: contactEmail,
		OwnerID:      p.UserID,
		InviteCode:   inviteCode,
	}
	if err := s.orgRepo.CreateWithOwner(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.caches.InvalidateOrganization(ctx, org.ID)
	return org, nil
}

// UpdateOrganizationInput holds the fields to change; nil leaves a field as is.
type UpdateOrganizationInput struct {
	Name         *string
	Slug         *string
	ContactEmail *string
}

// UpdateOrganization changes organization fields. Members can read but not
// update; they get ErrNotOrganizationOwner.
func (s *OrganizationService) UpdateOrganization(ctx context.Context, p access.Principal, id uint64, input UpdateOrganizationInput) (*models.Organization, error) {
	org, err := s.findForUpdate(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateOrganizationName(name); err != nil {
			return nil, err
		}
		org.Name = name
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if err := validateSlug(slug); err != nil {
			return nil, err
		}
		if slug != org.Slug {
			if err := s.ensureSlugAvailable(ctx, slug, org.ID); err != nil {
				return nil, err
			}
		}
		org.Slug = slug
	}
	if input.ContactEmail != nil {
		contactEmail := strings.TrimSpace(*input.ContactEmail)
		if err := validateEmail(contactEmail); err != nil {
			return nil, ErrInvalidContactEmail
		}
		org.ContactEmail = contactEmail
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	s.caches.InvalidateOrganization(ctx, org.ID)
	return org, nil
}

// DeleteOrganization removes an organization with its projects, tasks and comments.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, p access.Principal, id uint64) error {
	org, err := s.findForUpdate(ctx, p, id)
	if err != nil {
		return err
	}

	if err := s.orgRepo.Delete(ctx, org.ID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	s.caches.InvalidateOrganization(ctx, org.ID)
	return nil
}

// AddMember adds the user with the given email to the members set.
func (s *OrganizationService) AddMember(ctx context.Context, p access.Principal, id uint64, email string) (*models.User, error) {
	org, err := s.findForUpdate(ctx, p, id)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.addMember(ctx, org, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// RemoveMember removes a user from the members set. The owner cannot be removed.
func (s *OrganizationService) RemoveMember(ctx context.Context, p access.Principal, id, userID uint64) error {
	org, err := s.findForUpdate(ctx, p, id)
	if err != nil {
		return err
	}
	if userID == org.OwnerID {
		return ErrCannotRemoveOwner
	}

	isMember, err := s.orgRepo.IsMember(ctx, org.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if !isMember {
		return ErrOrganizationMemberNotFound
	}

	if err := s.orgRepo.RemoveMember(ctx, org.ID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.caches.InvalidateOrganization(ctx, org.ID)
	return nil
}

// JoinOrganizationByInvite adds p to an organization via invite code.
func (s *OrganizationService) JoinOrganizationByInvite(ctx context.Context, p access.Principal, inviteCode string) (*models.Organization, error) {
	if !p.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}

	org, err := s.orgRepo.FindByInviteCode(ctx, strings.TrimSpace(inviteCode))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find organization by invite code: %w", err)
	}

	if err := s.addMember(ctx, org, p.UserID); err != nil {
		return nil, err
	}
	return org, nil
}

// RegenerateInviteCode replaces the organization's invite code.
func (s *OrganizationService) RegenerateInviteCode(ctx context.Context, p access.Principal, id uint64) (*models.Organization, error) {
	org, err := s.findForUpdate(ctx, p, id)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org.InviteCode = code
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	s.caches.InvalidateOrganization(ctx, org.ID)
	return org, nil
}

func (s *OrganizationService) addMember(ctx context.Context, org *models.Organization, userID uint64) error {
	isMember, err := s.orgRepo.IsMember(ctx, org.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if isMember {
		return ErrAlreadyOrganizationMember
	}

	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         userID,
		JoinedAt:       s.clock(),
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		return fmt.Errorf("failed to add member to organization: %w", err)
	}

	s.caches.InvalidateOrganization(ctx, org.ID)
	return nil
}

func (s *OrganizationService) findAccessibleBySlug(ctx context.Context, v Viewer, slug string) (*models.Organization, error) {
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
	return org, nil
}

// findForUpdate loads an organization p may change. Organizations p cannot
// see are reported as not found; visible ones p does not own are forbidden.
func (s *OrganizationService) findForUpdate(ctx context.Context, p access.Principal, id uint64) (*models.Organization, error) {
	if !p.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}

	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	ok, err := s.resolver.HasAccess(ctx, p, org)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrganizationNotFound
	}

	ok, err = s.resolver.CanUpdate(ctx, p, org)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotOrganizationOwner
	}
	return org, nil
}

func (s *OrganizationService) ensureSlugAvailable(ctx context.Context, slug string, exceptID uint64) error {
	existing, err := s.orgRepo.FindBySlug(ctx, slug)
	if err == nil && existing.ID != exceptID {
		return ErrSlugTaken
	}
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	return nil
}

func validateOrganizationName(name string) error {
	if name == "" || len(name) > 100 {
		return ErrInvalidOrganizationName
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" || len(slug) > 100 {
		return ErrInvalidSlug
	}
	for _, r := range slug {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return ErrInvalidSlug
		}
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return err
	}
	if addr.Address != email {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}
