package repository

import (
	"context"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *GormCommentRepository) FindByID(ctx context.Context, id uint64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// List retrieves comments with filtering, newest first
func (r *GormCommentRepository) List(ctx context.Context, filter CommentFilter) ([]models.Comment, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Scopes(AccessibleComments(filter.Scope))

	if filter.TaskID != nil {
		query = query.Where("comments.task_id = ?", *filter.TaskID)
	}
	if filter.AuthorEmail != "" {
		query = query.Where("LOWER(comments.author_email) = LOWER(?)", filter.AuthorEmail)
	}
	if filter.Query != "" {
		query = query.Scopes(ContainsAny(filter.Query, "comments.content", "comments.author_email"))
	}
	if filter.Since != nil {
		query = query.Where("comments.timestamp >= ?", *filter.Since)
	}

	var comments []models.Comment
	if err := query.Order("comments.timestamp DESC, comments.id DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
