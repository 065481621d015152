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

// CommentHandler serves comment queries and mutations
type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

func respondComments(c *gin.Context, comments []models.Comment, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"comments": dto.ToCommentDTOs(comments),
	})
}

// CommentsByTask lists the comments on the task in the :id URL parameter
func (h *CommentHandler) CommentsByTask(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	comments, err := h.commentService.CommentsByTask(c.Request.Context(), middleware.GetViewer(c), taskID)
	respondComments(c, comments, err)
}

// RecentComments lists comments from the last ?days= days (default 7)
func (h *CommentHandler) RecentComments(c *gin.Context) {
	days, ok := parseDays(c, constants.DefaultRecentCommentDays)
	if !ok {
		return
	}
	comments, err := h.commentService.RecentComments(c.Request.Context(), middleware.GetViewer(c), days)
	respondComments(c, comments, err)
}

// CommentsByAuthor lists comments written by ?email=
func (h *CommentHandler) CommentsByAuthor(c *gin.Context) {
	comments, err := h.commentService.CommentsByAuthor(c.Request.Context(), middleware.GetViewer(c), c.Query("email"))
	respondComments(c, comments, err)
}

// SearchComments matches ?q= against content and author
func (h *CommentHandler) SearchComments(c *gin.Context) {
	comments, err := h.commentService.SearchComments(c.Request.Context(), middleware.GetViewer(c), c.Query("q"))
	respondComments(c, comments, err)
}

// AddComment adds a comment to the task in the :id URL parameter
func (h *CommentHandler) AddComment(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type AddCommentRequest struct {
		Content     string `json:"content" binding:"required"`
		AuthorEmail string `json:"author_email"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), middleware.GetViewer(c), services.AddCommentInput{
		TaskID:      taskID,
		Content:     req.Content,
		AuthorEmail: req.AuthorEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// UpdateComment replaces a comment's content
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateCommentRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), middleware.GetViewer(c), commentID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment))
}
