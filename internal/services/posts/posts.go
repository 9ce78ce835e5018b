package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/lib/sl"
	"pixelfeed/internal/storage"
)

type Posts struct {
	logger  *slog.Logger
	store   Store
	cascade Cascade
	photos  PhotoDeleter
}

type Store interface {
	SavePost(ctx context.Context, post *models.Post) (string, error)
	Post(ctx context.Context, postID string) (*models.Post, error)
	UpdatePost(ctx context.Context, postID, title, content, photo string) error
	DeletePost(ctx context.Context, postID string) error
	Posts(ctx context.Context, page, limit int64) ([]*models.Post, int64, error)
	PostsByOwner(ctx context.Context, owner string) ([]*models.Post, error)
}

// Cascade removes the documents that hang off a post when it goes away.
type Cascade interface {
	DeleteCommentsByPost(ctx context.Context, postID string) error
	DeleteLikesByPost(ctx context.Context, postID string) error
}

type PhotoDeleter interface {
	Delete(ctx context.Context, photoURL string) error
}

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("user does not own post")
	ErrNoData       = errors.New("no data to update")
	ErrInvalidPage  = errors.New("invalid page or limit value")
)

func New(logger *slog.Logger, store Store, cascade Cascade, photos PhotoDeleter) *Posts {
	return &Posts{
		logger:  logger,
		store:   store,
		cascade: cascade,
		photos:  photos,
	}
}

// Create inserts a post stamped with the author's denormalized identity.
func (p *Posts) Create(
	ctx context.Context,
	owner *models.User,
	title, content, photo string,
) (*models.Post, error) {
	const op = "posts.Create"
	log := p.logger.With(slog.String("op", op), slog.String("owner", owner.ID))
	log.Info("create post request")

	post := &models.Post{
		Title:      title,
		Content:    content,
		Photo:      photo,
		Owner:      owner.ID,
		OwnerName:  owner.UserName,
		OwnerPhoto: owner.ProfileImageURL,
	}

	postID, err := p.store.SavePost(ctx, post)
	if err != nil {
		log.Error("failed to save post", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := p.store.Post(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post created", slog.String("postID", postID))

	return created, nil
}

// Get returns a single post.
func (p *Posts) Get(ctx context.Context, postID string) (*models.Post, error) {
	const op = "posts.Get"

	post, err := p.store.Post(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

// Update edits a post; only the owner may edit, and a replaced photo is
// removed from storage.
func (p *Posts) Update(
	ctx context.Context,
	userID, postID string,
	title, content, photo string,
) (*models.Post, error) {
	const op = "posts.Update"
	log := p.logger.With(slog.String("op", op), slog.String("postID", postID))
	log.Info("update post request")

	if title == "" && content == "" && photo == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoData)
	}

	post, err := p.store.Post(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if post.Owner != userID {
		log.Warn("edit attempt by non-owner", slog.String("userID", userID))
		return nil, fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if photo != "" && post.Photo != "" && photo != post.Photo {
		if err := p.photos.Delete(ctx, post.Photo); err != nil {
			log.Warn("failed to delete replaced photo", sl.Err(err))
		}
	}

	if err := p.store.UpdatePost(ctx, postID, title, content, photo); err != nil {
		log.Error("failed to update post", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := p.store.Post(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post updated")

	return updated, nil
}

// Delete removes a post, its comments, its likes and its stored photo.
// Only the owner may delete.
func (p *Posts) Delete(ctx context.Context, userID, postID string) error {
	const op = "posts.Delete"
	log := p.logger.With(slog.String("op", op), slog.String("postID", postID))
	log.Info("delete post request")

	post, err := p.store.Post(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if post.Owner != userID {
		log.Warn("delete attempt by non-owner", slog.String("userID", userID))
		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	return p.deletePost(ctx, log, post)
}

func (p *Posts) deletePost(ctx context.Context, log *slog.Logger, post *models.Post) error {
	const op = "posts.deletePost"

	if post.Photo != "" {
		if err := p.photos.Delete(ctx, post.Photo); err != nil {
			log.Warn("failed to delete post photo", sl.Err(err))
		}
	}

	if err := p.cascade.DeleteCommentsByPost(ctx, post.ID); err != nil {
		log.Error("failed to delete post comments", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.cascade.DeleteLikesByPost(ctx, post.ID); err != nil {
		log.Error("failed to delete post likes", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.store.DeletePost(ctx, post.ID); err != nil {
		log.Error("failed to delete post", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post deleted", slog.String("postID", post.ID))

	return nil
}

// Page returns one newest-first page of the global feed.
func (p *Posts) Page(ctx context.Context, page, limit int64) (*models.PostPage, error) {
	const op = "posts.Page"

	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPage)
	}

	posts, total, err := p.store.Posts(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return &models.PostPage{
		Posts:       posts,
		TotalPages:  totalPages,
		CurrentPage: page,
		TotalPosts:  total,
	}, nil
}

// ByOwner returns every post the user has created.
func (p *Posts) ByOwner(ctx context.Context, owner string) ([]*models.Post, error) {
	const op = "posts.ByOwner"

	posts, err := p.store.PostsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return posts, nil
}

// PurgeOwner deletes every post the user owns, cascading comments, likes
// and photos per post. Part of account deletion.
func (p *Posts) PurgeOwner(ctx context.Context, owner string) error {
	const op = "posts.PurgeOwner"
	log := p.logger.With(slog.String("op", op), slog.String("owner", owner))

	posts, err := p.store.PostsByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, post := range posts {
		if err := p.deletePost(ctx, log, post); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("owner posts purged", slog.Int("count", len(posts)))

	return nil
}
