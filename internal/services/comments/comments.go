package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/lib/sl"
	"pixelfeed/internal/storage"
)

type Comments struct {
	logger *slog.Logger
	store  Store
	posts  PostProvider
}

type Store interface {
	SaveComment(ctx context.Context, comment *models.Comment) (string, error)
	Comment(ctx context.Context, commentID string) (*models.Comment, error)
	UpdateComment(ctx context.Context, commentID, content string) error
	DeleteComment(ctx context.Context, commentID string) error
	CommentsByPost(ctx context.Context, postID string, page, limit int64) ([]*models.Comment, int64, error)
	CommentsByOwner(ctx context.Context, owner string) ([]*models.Comment, error)
	DeleteCommentsByOwner(ctx context.Context, owner string) error
}

type PostProvider interface {
	Post(ctx context.Context, postID string) (*models.Post, error)
}

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrNotAllowed      = errors.New("user may not modify comment")
	ErrInvalidPage     = errors.New("invalid page or limit value")
)

func New(logger *slog.Logger, store Store, posts PostProvider) *Comments {
	return &Comments{
		logger: logger,
		store:  store,
		posts:  posts,
	}
}

// Create adds a comment to an existing post.
func (c *Comments) Create(
	ctx context.Context,
	owner *models.User,
	postID, content string,
) (*models.Comment, error) {
	const op = "comments.Create"
	log := c.logger.With(slog.String("op", op), slog.String("postID", postID))
	log.Info("create comment request")

	if _, err := c.posts.Post(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment := &models.Comment{
		PostID:    postID,
		Owner:     owner.ID,
		OwnerName: owner.UserName,
		Content:   content,
	}

	commentID, err := c.store.SaveComment(ctx, comment)
	if err != nil {
		log.Error("failed to save comment", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := c.store.Comment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("comment created", slog.String("commentID", commentID))

	return created, nil
}

// Get returns a single comment.
func (c *Comments) Get(ctx context.Context, commentID string) (*models.Comment, error) {
	const op = "comments.Get"

	comment, err := c.store.Comment(ctx, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrCommentNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCommentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}

// Update edits a comment body. Only the comment's author may edit.
func (c *Comments) Update(
	ctx context.Context,
	userID, commentID, content string,
) (*models.Comment, error) {
	const op = "comments.Update"
	log := c.logger.With(slog.String("op", op), slog.String("commentID", commentID))
	log.Info("update comment request")

	comment, err := c.store.Comment(ctx, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrCommentNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCommentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if comment.Owner != userID {
		log.Warn("edit attempt by non-owner", slog.String("userID", userID))
		return nil, fmt.Errorf("%s: %w", op, ErrNotAllowed)
	}

	if err := c.store.UpdateComment(ctx, commentID, content); err != nil {
		log.Error("failed to update comment", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := c.store.Comment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("comment updated")

	return updated, nil
}

// Delete removes a comment. The comment's author and the owner of the post
// it sits on are both allowed to delete it.
func (c *Comments) Delete(ctx context.Context, userID, commentID string) error {
	const op = "comments.Delete"
	log := c.logger.With(slog.String("op", op), slog.String("commentID", commentID))
	log.Info("delete comment request")

	comment, err := c.store.Comment(ctx, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrCommentNotFound) {
			return fmt.Errorf("%s: %w", op, ErrCommentNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	post, err := c.posts.Post(ctx, comment.PostID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if comment.Owner != userID && post.Owner != userID {
		log.Warn("delete attempt by non-owner", slog.String("userID", userID))
		return fmt.Errorf("%s: %w", op, ErrNotAllowed)
	}

	if err := c.store.DeleteComment(ctx, commentID); err != nil {
		log.Error("failed to delete comment", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("comment deleted")

	return nil
}

// ByPost returns one newest-first page of a post's comments.
func (c *Comments) ByPost(ctx context.Context, postID string, page, limit int64) (*models.CommentPage, error) {
	const op = "comments.ByPost"

	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPage)
	}

	comments, total, err := c.store.CommentsByPost(ctx, postID, page, limit)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return &models.CommentPage{
		Comments:      comments,
		TotalPages:    totalPages,
		CurrentPage:   page,
		TotalComments: total,
	}, nil
}

// ByOwner returns every comment the user has written.
func (c *Comments) ByOwner(ctx context.Context, owner string) ([]*models.Comment, error) {
	const op = "comments.ByOwner"

	comments, err := c.store.CommentsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comments, nil
}

// PurgeOwner drops every comment the user has written. Part of account
// deletion.
func (c *Comments) PurgeOwner(ctx context.Context, owner string) error {
	const op = "comments.PurgeOwner"

	if err := c.store.DeleteCommentsByOwner(ctx, owner); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
