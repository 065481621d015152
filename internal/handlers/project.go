package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// ProjectHandler serves project queries and mutations
type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

func (h *ProjectHandler) respondList(c *gin.Context, projects []models.Project, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
	})
}

// ListProjects returns accessible projects. ?organization=<slug> limits the
// listing to one organization.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	v := middleware.GetViewer(c)

	if slug := c.Query("organization"); slug != "" {
		projects, err := h.projectService.ProjectsByOrganization(ctx, v, slug)
		h.respondList(c, projects, err)
		return
	}

	projects, err := h.projectService.MyProjects(ctx, v)
	h.respondList(c, projects, err)
}

// ProjectsWithStats returns accessible projects with task counts
func (h *ProjectHandler) ProjectsWithStats(c *gin.Context) {
	rows, err := h.projectService.ProjectsWithStats(c.Request.Context(), middleware.GetViewer(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectStatsDTOs(rows),
	})
}

// SearchProjects matches ?q= against name and description
func (h *ProjectHandler) SearchProjects(c *gin.Context) {
	projects, err := h.projectService.SearchProjects(c.Request.Context(), middleware.GetViewer(c), c.Query("q"))
	h.respondList(c, projects, err)
}

// ProjectsByStatus lists projects with the :status URL parameter
func (h *ProjectHandler) ProjectsByStatus(c *gin.Context) {
	status := models.ProjectStatus(c.Param("status"))
	projects, err := h.projectService.ProjectsByStatus(c.Request.Context(), middleware.GetViewer(c), status)
	h.respondList(c, projects, err)
}

// ProjectsDueSoon lists active projects due within ?days= (default 7)
func (h *ProjectHandler) ProjectsDueSoon(c *gin.Context) {
	days, ok := parseDays(c, constants.DefaultProjectsDueSoonDays)
	if !ok {
		return
	}
	projects, err := h.projectService.ProjectsDueSoon(c.Request.Context(), middleware.GetViewer(c), days)
	h.respondList(c, projects, err)
}

// OverdueProjects lists active projects past their due date
func (h *ProjectHandler) OverdueProjects(c *gin.Context) {
	projects, err := h.projectService.OverdueProjects(c.Request.Context(), middleware.GetViewer(c))
	h.respondList(c, projects, err)
}

// GetProject returns one project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Project(c.Request.Context(), middleware.GetViewer(c), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project. Without organization_id the request's
// organization context is used.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		OrganizationID uint64               `json:"organization_id"`
		Name           string               `json:"name" binding:"required,max=200"`
		Description    string               `json:"description"`
		Status         models.ProjectStatus `json:"status"`
		DueDate        *string              `json:"due_date"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	dueDate, ok := bindDueDate(c, req.DueDate)
	if !ok {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), middleware.GetViewer(c), services.CreateProjectInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		DueDate:        dueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject updates an existing project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name         *string               `json:"name" binding:"omitempty,max=200"`
		Description  *string               `json:"description"`
		Status       *models.ProjectStatus `json:"status"`
		DueDate      *string               `json:"due_date"`
		ClearDueDate bool                  `json:"clear_due_date"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	dueDate, ok := bindDueDate(c, req.DueDate)
	if !ok {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), middleware.GetViewer(c), projectID, services.UpdateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		DueDate:      dueDate,
		ClearDueDate: req.ClearDueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func bindDueDate(c *gin.Context, raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	t, err := parseDate(*raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid due_date format (use YYYY-MM-DD or RFC3339)")
		return nil, false
	}
	return &t, true
}
