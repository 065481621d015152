package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Auth         *AuthHandler
	Organization *OrganizationHandler
	Project      *ProjectHandler
	Task         *TaskHandler
	Comment      *CommentHandler
	Health       *HealthHandler
}

// Register mounts every route on r. requireAuth loads the principal and
// resolveOrg sets the optional organization context.
//
// Query routes are mounted twice: under /api, where the organization comes
// from the X-Organization-Slug header, and under /api/orgs/:org_slug.
func (h *Handlers) Register(r gin.IRouter, requireAuth, resolveOrg gin.HandlerFunc) {
	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		}

		api.GET("/users", requireAuth, h.Auth.ListUsers)

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(requireAuth)
		{
			orgs.GET("", h.Organization.ListOrganizations)
			orgs.POST("", h.Organization.CreateOrganization)
			orgs.GET("/search", h.Organization.SearchOrganizations)
			orgs.GET("/stats", h.Organization.OrganizationsWithStats)
			orgs.POST("/join", h.Organization.JoinOrganization)
			orgs.PATCH("/:id", h.Organization.UpdateOrganization)
			orgs.DELETE("/:id", h.Organization.DeleteOrganization)
			orgs.POST("/:id/regenerate-code", h.Organization.RegenerateInviteCode)
			orgs.POST("/:id/members", h.Organization.AddMember)
			orgs.DELETE("/:id/members/:user_id", h.Organization.RemoveMember)
		}

		h.registerQueries(api.Group("", requireAuth, resolveOrg))

		tenant := api.Group("/orgs/:org_slug", requireAuth, resolveOrg)
		tenant.GET("", h.Organization.GetOrganization)
		h.registerQueries(tenant)
	}
}

func (h *Handlers) registerQueries(g *gin.RouterGroup) {
	projects := g.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/stats", h.Project.ProjectsWithStats)
		projects.GET("/search", h.Project.SearchProjects)
		projects.GET("/due-soon", h.Project.ProjectsDueSoon)
		projects.GET("/overdue", h.Project.OverdueProjects)
		projects.GET("/status/:status", h.Project.ProjectsByStatus)
		projects.GET("/:id", h.Project.GetProject)
		projects.PATCH("/:id", h.Project.UpdateProject)
		projects.GET("/:id/tasks", h.Task.TasksByProject)
	}

	tasks := g.Group("/tasks")
	{
		tasks.GET("", h.Task.ListTasks)
		tasks.POST("", h.Task.CreateTask)
		tasks.GET("/search", h.Task.SearchTasks)
		tasks.GET("/overdue", h.Task.OverdueTasks)
		tasks.GET("/due-soon", h.Task.TasksDueSoon)
		tasks.GET("/high-priority", h.Task.HighPriorityTasks)
		tasks.GET("/comment-counts", h.Task.TasksWithCommentCount)
		tasks.GET("/assignee", h.Task.TasksByAssignee)
		tasks.GET("/status/:status", h.Task.TasksByStatus)
		tasks.GET("/priority/:priority", h.Task.TasksByPriority)
		tasks.GET("/:id", h.Task.GetTask)
		tasks.PATCH("/:id", h.Task.UpdateTask)
		tasks.GET("/:id/comments", h.Comment.CommentsByTask)
		tasks.POST("/:id/comments", h.Comment.AddComment)
	}

	comments := g.Group("/comments")
	{
		comments.GET("/recent", h.Comment.RecentComments)
		comments.GET("/search", h.Comment.SearchComments)
		comments.GET("/author", h.Comment.CommentsByAuthor)
		comments.PATCH("/:id", h.Comment.UpdateComment)
	}
}
