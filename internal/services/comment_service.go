package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/cache"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

var (
	ErrCommentNotFound        = errors.New("comment not found")
	ErrCommentContentRequired = errors.New("comment content is required")
	ErrInvalidAuthorEmail     = errors.New("author email is invalid")
)

// CommentService handles comment business logic
type CommentService struct {
	tenancy
	commentRepo repository.CommentRepository
	tasks       *TaskService
}

// NewCommentService creates a new CommentService. Task visibility is
// checked through tasks.
func NewCommentService(commentRepo repository.CommentRepository, tasks *TaskService, resolver *access.Resolver, caches *cache.Set) *CommentService {
	return &CommentService{
		tenancy:     newTenancy(resolver, caches),
		commentRepo: commentRepo,
		tasks:       tasks,
	}
}

func (s *CommentService) list(ctx context.Context, v Viewer, key cache.Key, filter repository.CommentFilter) ([]models.Comment, error) {
	scope, err := s.scope(ctx, v)
	if err != nil {
		return nil, err
	}
	filter.Scope = scope
	return listCached(ctx, s.caches.Comments, scope, key, func(ctx context.Context) ([]models.Comment, error) {
		return s.commentRepo.List(ctx, filter)
	})
}

// CommentsByTask lists the comments on one accessible task, newest first
func (s *CommentService) CommentsByTask(ctx context.Context, v Viewer, taskID uint64) ([]models.Comment, error) {
	task, project, err := s.tasks.findVisible(ctx, v, taskID)
	if err != nil {
		return nil, err
	}

	scope := repository.SingleOrganization(project.OrganizationID)
	key := cache.NewKey("comments_by_task", cache.ProjectTag(project.ID), cache.TaskTag(task.ID)).With(task.ID)
	return listCached(ctx, s.caches.Comments, scope, key, func(ctx context.Context) ([]models.Comment, error) {
		return s.commentRepo.List(ctx, repository.CommentFilter{Scope: scope, TaskID: &task.ID})
	})
}

// RecentComments lists accessible comments from the last days days
func (s *CommentService) RecentComments(ctx context.Context, v Viewer, days int) ([]models.Comment, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	since := s.clock().AddDate(0, 0, -days)
	return s.list(ctx, v, cache.NewKey("recent_comments").Named("days", days), repository.CommentFilter{Since: &since})
}

// CommentsByAuthor lists accessible comments by email, ignoring case
func (s *CommentService) CommentsByAuthor(ctx context.Context, v Viewer, email string) ([]models.Comment, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidAuthorEmail
	}
	return s.list(ctx, v, cache.NewKey("comments_by_author").With(email), repository.CommentFilter{AuthorEmail: email})
}

// SearchComments matches content and author email
func (s *CommentService) SearchComments(ctx context.Context, v Viewer, query string) ([]models.Comment, error) {
	query, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, v, cache.NewKey("search_comments").With(query), repository.CommentFilter{Query: query})
}

// AddCommentInput represents input for adding a comment
type AddCommentInput struct {
	TaskID      uint64
	Content     string
	AuthorEmail string
}

// AddComment adds a comment to a task the viewer can access. The author
// defaults to the principal's email.
func (s *CommentService) AddComment(ctx context.Context, v Viewer, input AddCommentInput) (*models.Comment, error) {
	if !v.Principal.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrCommentContentRequired
	}
	author := strings.TrimSpace(input.AuthorEmail)
	if author == "" {
		author = v.Principal.Email
	}
	if err := validateEmail(author); err != nil {
		return nil, ErrInvalidAuthorEmail
	}

	task, project, err := s.tasks.findVisible(ctx, v, input.TaskID)
	if err != nil {
		return nil, err
	}

	creatorID := v.Principal.UserID
	comment := &models.Comment{
		TaskID:      task.ID,
		Content:     content,
		AuthorEmail: author,
		CreatorID:   &creatorID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.caches.InvalidateRef(ctx, task.Ref(project.OrganizationID))
	return comment, nil
}

// UpdateComment replaces a comment's content
func (s *CommentService) UpdateComment(ctx context.Context, v Viewer, id uint64, content string) (*models.Comment, error) {
	if !v.Principal.Authenticated() {
		return nil, access.ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentContentRequired
	}

	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	task, project, err := s.tasks.findVisible(ctx, v, comment.TaskID)
	if errors.Is(err, ErrTaskNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.resolver.CanUpdate(ctx, v.Principal, comment)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentNotFound
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	s.caches.InvalidateRef(ctx, task.Ref(project.OrganizationID))
	return comment, nil
}
