package likes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/lib/sl"
	"pixelfeed/internal/storage"
)

type Likes struct {
	logger *slog.Logger
	store  Store
	posts  PostCounter
}

type Store interface {
	SaveLike(ctx context.Context, like *models.Like) (string, error)
	Like(ctx context.Context, likeID string) (*models.Like, error)
	DeleteLike(ctx context.Context, likeID string) error
	LikesByOwner(ctx context.Context, owner string) ([]*models.Like, error)
	LikeByOwnerAndPost(ctx context.Context, owner, postID string) (*models.Like, error)
	DeleteLikesByOwner(ctx context.Context, owner string) error
}

type PostCounter interface {
	Post(ctx context.Context, postID string) (*models.Post, error)
	AdjustLikes(ctx context.Context, postID string, delta int) error
}

var (
	ErrLikeNotFound = errors.New("like not found")
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("user does not own like")
	ErrInvalidValue = errors.New("value must be 1 or -1")
	ErrAlreadyLiked = errors.New("post already liked")
)

func New(logger *slog.Logger, store Store, posts PostCounter) *Likes {
	return &Likes{
		logger: logger,
		store:  store,
		posts:  posts,
	}
}

// Rate records a like (+1) or a retracted like (-1) against a post and
// mirrors the value into the post's counter.
func (l *Likes) Rate(
	ctx context.Context,
	owner string,
	postID string,
	value int,
) (*models.Like, error) {
	const op = "likes.Rate"
	log := l.logger.With(slog.String("op", op), slog.String("postID", postID))
	log.Info("rate request", slog.Int("value", value))

	if value != 1 && value != -1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidValue)
	}

	if _, err := l.posts.Post(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	likeID, err := l.store.SaveLike(ctx, &models.Like{
		PostID: postID,
		Owner:  owner,
		Value:  value,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyLiked) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyLiked)
		}
		log.Error("failed to save like", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := l.posts.AdjustLikes(ctx, postID, value); err != nil {
		log.Error("failed to adjust like counter", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	like, err := l.store.Like(ctx, likeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("like recorded", slog.String("likeID", likeID))

	return like, nil
}

// Remove deletes a like by id and reverses its effect on the post counter.
// Only the like's owner may remove it.
func (l *Likes) Remove(ctx context.Context, userID, likeID string) error {
	const op = "likes.Remove"
	log := l.logger.With(slog.String("op", op), slog.String("likeID", likeID))
	log.Info("remove like request")

	like, err := l.store.Like(ctx, likeID)
	if err != nil {
		if errors.Is(err, storage.ErrLikeNotFound) {
			return fmt.Errorf("%s: %w", op, ErrLikeNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if like.Owner != userID {
		log.Warn("remove attempt by non-owner", slog.String("userID", userID))
		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if err := l.store.DeleteLike(ctx, likeID); err != nil {
		log.Error("failed to delete like", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := l.posts.AdjustLikes(ctx, like.PostID, -like.Value); err != nil {
		// post may already be gone; the counter no longer exists to fix
		if !errors.Is(err, storage.ErrPostNotFound) {
			log.Error("failed to adjust like counter", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("like removed")

	return nil
}

// ByOwner returns every like the user has placed.
func (l *Likes) ByOwner(ctx context.Context, owner string) ([]*models.Like, error) {
	const op = "likes.ByOwner"

	likes, err := l.store.LikesByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return likes, nil
}

// HasLiked reports whether the user has liked a specific post.
func (l *Likes) HasLiked(ctx context.Context, owner, postID string) (bool, error) {
	const op = "likes.HasLiked"

	_, err := l.store.LikeByOwnerAndPost(ctx, owner, postID)
	if err != nil {
		if errors.Is(err, storage.ErrLikeNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

// PurgeOwner removes every like the user has placed, reconciling the
// counters on the affected posts first. Part of account deletion.
func (l *Likes) PurgeOwner(ctx context.Context, owner string) error {
	const op = "likes.PurgeOwner"
	log := l.logger.With(slog.String("op", op), slog.String("owner", owner))

	likes, err := l.store.LikesByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, like := range likes {
		if err := l.posts.AdjustLikes(ctx, like.PostID, -like.Value); err != nil {
			if !errors.Is(err, storage.ErrPostNotFound) {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	if err := l.store.DeleteLikesByOwner(ctx, owner); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("owner likes purged", slog.Int("count", len(likes)))

	return nil
}
