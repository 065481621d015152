package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// ListOrganizations returns all organizations the user can access
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	v := middleware.GetViewer(c)
	orgs, err := h.orgService.MyOrganizations(c.Request.Context(), v)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": dto.ToOrganizationDTOs(orgs, v.Principal),
	})
}

// SearchOrganizations matches accessible organizations against ?q=
func (h *OrganizationHandler) SearchOrganizations(c *gin.Context) {
	v := middleware.GetViewer(c)
	orgs, err := h.orgService.SearchOrganizations(c.Request.Context(), v, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": dto.ToOrganizationDTOs(orgs, v.Principal),
	})
}

// OrganizationsWithStats returns accessible organizations with counts
func (h *OrganizationHandler) OrganizationsWithStats(c *gin.Context) {
	v := middleware.GetViewer(c)
	rows, err := h.orgService.OrganizationsWithStats(c.Request.Context(), v)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": dto.ToOrganizationStatsDTOs(rows, v.Principal),
	})
}

// GetOrganization returns organization details with its members
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	v := middleware.GetViewer(c)
	org, members, err := h.orgService.Members(c.Request.Context(), v, c.Param(constants.URLParamOrganizationSlug))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org, members, v.Principal))
}

// CreateOrganization creates a new organization
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	type CreateOrgRequest struct {
		Name         string `json:"name" binding:"required"`
		Slug         string `json:"slug"`
		ContactEmail string `json:"contact_email"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	p := middleware.GetPrincipal(c)
	org, err := h.orgService.CreateOrganization(c.Request.Context(), p, services.CreateOrganizationInput{
		Name:         req.Name,
		Slug:         req.Slug,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org, true))
}

// UpdateOrganization updates organization fields. Owner only.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateOrgRequest struct {
		Name         *string `json:"name"`
		Slug         *string `json:"slug"`
		ContactEmail *string `json:"contact_email"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	p := middleware.GetPrincipal(c)
	org, err := h.orgService.UpdateOrganization(c.Request.Context(), p, orgID, services.UpdateOrganizationInput{
		Name:         req.Name,
		Slug:         req.Slug,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTOFor(*org, p))
}

// DeleteOrganization deletes an organization
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.orgService.DeleteOrganization(c.Request.Context(), middleware.GetPrincipal(c), orgID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Organization deleted successfully",
	})
}

// JoinOrganization allows a user to join via invite code
func (h *OrganizationHandler) JoinOrganization(c *gin.Context) {
	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	p := middleware.GetPrincipal(c)
	org, err := h.orgService.JoinOrganizationByInvite(c.Request.Context(), p, req.InviteCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully joined organization",
		"organization": dto.ToOrganizationDTOFor(*org, p),
	})
}

// RegenerateInviteCode generates a new invite code for the organization
func (h *OrganizationHandler) RegenerateInviteCode(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}

	org, err := h.orgService.RegenerateInviteCode(c.Request.Context(), middleware.GetPrincipal(c), orgID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// AddMember adds an existing user to the members set by email
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.orgService.AddMember(c.Request.Context(), middleware.GetPrincipal(c), orgID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// RemoveMember removes a member from the organization
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	if err := h.orgService.RemoveMember(c.Request.Context(), middleware.GetPrincipal(c), orgID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}
