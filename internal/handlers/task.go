package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// TaskHandler serves task queries and mutations
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func respondTasks(c *gin.Context, tasks []models.Task, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks))
}

// ListTasks returns every task the user can access
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.MyTasks(c.Request.Context(), middleware.GetViewer(c))
	respondTasks(c, tasks, err)
}

// TasksByProject lists the tasks of the project in the :id URL parameter
func (h *TaskHandler) TasksByProject(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	tasks, err := h.taskService.TasksByProject(c.Request.Context(), middleware.GetViewer(c), projectID)
	respondTasks(c, tasks, err)
}

// TasksByStatus lists tasks with the :status URL parameter
func (h *TaskHandler) TasksByStatus(c *gin.Context) {
	status := models.TaskStatus(c.Param("status"))
	tasks, err := h.taskService.TasksByStatus(c.Request.Context(), middleware.GetViewer(c), status)
	respondTasks(c, tasks, err)
}

// TasksByPriority lists tasks with the :priority URL parameter
func (h *TaskHandler) TasksByPriority(c *gin.Context) {
	priority := models.TaskPriority(c.Param("priority"))
	tasks, err := h.taskService.TasksByPriority(c.Request.Context(), middleware.GetViewer(c), priority)
	respondTasks(c, tasks, err)
}

// TasksByAssignee lists tasks assigned to ?email=
func (h *TaskHandler) TasksByAssignee(c *gin.Context) {
	tasks, err := h.taskService.TasksByAssignee(c.Request.Context(), middleware.GetViewer(c), c.Query("email"))
	respondTasks(c, tasks, err)
}

// OverdueTasks lists open tasks past their due time
func (h *TaskHandler) OverdueTasks(c *gin.Context) {
	tasks, err := h.taskService.OverdueTasks(c.Request.Context(), middleware.GetViewer(c))
	respondTasks(c, tasks, err)
}

// TasksDueSoon lists open tasks due within ?days= (default 3)
func (h *TaskHandler) TasksDueSoon(c *gin.Context) {
	days, ok := parseDays(c, constants.DefaultTasksDueSoonDays)
	if !ok {
		return
	}
	tasks, err := h.taskService.TasksDueSoon(c.Request.Context(), middleware.GetViewer(c), days)
	respondTasks(c, tasks, err)
}

// HighPriorityTasks lists open HIGH and URGENT tasks
func (h *TaskHandler) HighPriorityTasks(c *gin.Context) {
	tasks, err := h.taskService.HighPriorityTasks(c.Request.Context(), middleware.GetViewer(c))
	respondTasks(c, tasks, err)
}

// SearchTasks matches ?q= against title, description and assignee
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	tasks, err := h.taskService.SearchTasks(c.Request.Context(), middleware.GetViewer(c), c.Query("q"))
	respondTasks(c, tasks, err)
}

// TasksWithCommentCount lists tasks with their number of comments
func (h *TaskHandler) TasksWithCommentCount(c *gin.Context) {
	rows, err := h.taskService.TasksWithCommentCount(c.Request.Context(), middleware.GetViewer(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskWithCommentCountDTOs(rows),
	})
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Task(c.Request.Context(), middleware.GetViewer(c), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task in a project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		ProjectID     uint64              `json:"project_id" binding:"required"`
		Title         string              `json:"title" binding:"required,max=200"`
		Description   string              `json:"description"`
		Status        models.TaskStatus   `json:"status"`
		Priority      models.TaskPriority `json:"priority"`
		AssigneeEmail string              `json:"assignee_email"`
		DueDate       *string             `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	dueDate, ok := bindDueDate(c, req.DueDate)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), middleware.GetViewer(c), services.CreateTaskInput{
		ProjectID:     req.ProjectID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeEmail: req.AssigneeEmail,
		DueDate:       dueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title         *string              `json:"title" binding:"omitempty,max=200"`
		Description   *string              `json:"description"`
		Status        *models.TaskStatus   `json:"status"`
		Priority      *models.TaskPriority `json:"priority"`
		AssigneeEmail *string              `json:"assignee_email"`
		DueDate       *string              `json:"due_date"`
		ClearDueDate  bool                 `json:"clear_due_date"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	dueDate, ok := bindDueDate(c, req.DueDate)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), middleware.GetViewer(c), taskID, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeEmail: req.AssigneeEmail,
		DueDate:       dueDate,
		ClearDueDate:  req.ClearDueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}
