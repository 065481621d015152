package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
)

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID          uint64    `json:"id"`
	TaskID      uint64    `json:"task_id"`
	Content     string    `json:"content"`
	AuthorEmail string    `json:"author_email"`
	Timestamp   time.Time `json:"timestamp"`
	CreatorID   *uint64   `json:"creator_id"`
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:          comment.ID,
		TaskID:      comment.TaskID,
		Content:     comment.Content,
		AuthorEmail: comment.AuthorEmail,
		Timestamp:   comment.Timestamp,
		CreatorID:   comment.CreatorID,
	}
}

// ToCommentDTOs converts a slice of comments
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	return convertAll(comments, ToCommentDTO)
}
