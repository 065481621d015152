package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ContactEmail string    `json:"contact_email"`
	OwnerID      uint64    `json:"owner_id"`
	InviteCode   string    `json:"invite_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrganizationStatsDTO is an organization with project and task counts
type OrganizationStatsDTO struct {
	OrganizationDTO
	ProjectCount   int64 `json:"project_count"`
	TotalTasks     int64 `json:"total_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
}

// OrganizationDetailDTO represents an organization with its members set
type OrganizationDetailDTO struct {
	OrganizationDTO
	Members []UserDTO `json:"members"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization, includeInviteCode bool) OrganizationDTO {
	dto := OrganizationDTO{
		ID:           org.ID,
		Name:         org.Name,
		Slug:         org.Slug,
		ContactEmail: org.ContactEmail,
		OwnerID:      org.OwnerID,
		CreatedAt:    org.CreatedAt,
		UpdatedAt:    org.UpdatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = org.InviteCode
	}
	return dto
}

// ToOrganizationDTOFor shows the invite code only to the owner and superusers
func ToOrganizationDTOFor(org models.Organization, p access.Principal) OrganizationDTO {
	return ToOrganizationDTO(org, p.IsSuperuser || p.UserID == org.OwnerID)
}

// ToOrganizationDTOs converts a slice of organizations as seen by p
func ToOrganizationDTOs(orgs []models.Organization, p access.Principal) []OrganizationDTO {
	return convertAll(orgs, func(org models.Organization) OrganizationDTO {
		return ToOrganizationDTOFor(org, p)
	})
}

// ToOrganizationStatsDTOs converts organization statistics rows
func ToOrganizationStatsDTOs(rows []repository.OrganizationWithStats, p access.Principal) []OrganizationStatsDTO {
	return convertAll(rows, func(row repository.OrganizationWithStats) OrganizationStatsDTO {
		return OrganizationStatsDTO{
			OrganizationDTO: ToOrganizationDTOFor(row.Organization, p),
			ProjectCount:    row.ProjectCount,
			TotalTasks:      row.TotalTasks,
			CompletedTasks:  row.CompletedTasks,
		}
	})
}

// ToOrganizationDetailDTO converts organization with members to detailed DTO
func ToOrganizationDetailDTO(org models.Organization, members []models.User, p access.Principal) OrganizationDetailDTO {
	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTOFor(org, p),
		Members:         ToUserDTOs(members),
	}
}
