package likes

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLikeStore struct {
	mu    sync.Mutex
	likes map[string]*models.Like
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: map[string]*models.Like{}}
}

func (f *fakeLikeStore) SaveLike(_ context.Context, like *models.Like) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.likes {
		if l.Owner == like.Owner && l.PostID == like.PostID {
			return "", storage.ErrAlreadyLiked
		}
	}
	id := uuid.NewString()
	stored := *like
	stored.ID = id
	f.likes[id] = &stored
	return id, nil
}

func (f *fakeLikeStore) Like(_ context.Context, likeID string) (*models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.likes[likeID]
	if !ok {
		return nil, storage.ErrLikeNotFound
	}
	out := *l
	return &out, nil
}

func (f *fakeLikeStore) DeleteLike(_ context.Context, likeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.likes[likeID]; !ok {
		return storage.ErrLikeNotFound
	}
	delete(f.likes, likeID)
	return nil
}

func (f *fakeLikeStore) LikesByOwner(_ context.Context, owner string) ([]*models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Like
	for _, l := range f.likes {
		if l.Owner == owner {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLikeStore) LikeByOwnerAndPost(_ context.Context, owner, postID string) (*models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.likes {
		if l.Owner == owner && l.PostID == postID {
			out := *l
			return &out, nil
		}
	}
	return nil, storage.ErrLikeNotFound
}

func (f *fakeLikeStore) DeleteLikesByOwner(_ context.Context, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, l := range f.likes {
		if l.Owner == owner {
			delete(f.likes, id)
		}
	}
	return nil
}

type fakeCounter struct {
	mu       sync.Mutex
	counters map[string]int
}

func newFakeCounter(postIDs ...string) *fakeCounter {
	c := &fakeCounter{counters: map[string]int{}}
	for _, id := range postIDs {
		c.counters[id] = 0
	}
	return c
}

func (f *fakeCounter) Post(_ context.Context, postID string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.counters[postID]; !ok {
		return nil, storage.ErrPostNotFound
	}
	return &models.Post{ID: postID}, nil
}

func (f *fakeCounter) AdjustLikes(_ context.Context, postID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.counters[postID]; !ok {
		return storage.ErrPostNotFound
	}
	f.counters[postID] += delta
	return nil
}

func (f *fakeCounter) count(postID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[postID]
}

func newTestLikes(postIDs ...string) (*Likes, *fakeLikeStore, *fakeCounter) {
	store := newFakeLikeStore()
	counter := newFakeCounter(postIDs...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, store, counter), store, counter
}

func TestRateAdjustsCounter(t *testing.T) {
	postID := uuid.NewString()
	svc, _, counter := newTestLikes(postID)
	ctx := context.Background()

	like, err := svc.Rate(ctx, uuid.NewString(), postID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, like.Value)
	assert.Equal(t, 1, counter.count(postID))

	_, err = svc.Rate(ctx, uuid.NewString(), postID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, counter.count(postID))
}

func TestRateValidation(t *testing.T) {
	postID := uuid.NewString()
	svc, _, _ := newTestLikes(postID)
	ctx := context.Background()
	owner := uuid.NewString()

	_, err := svc.Rate(ctx, owner, postID, 0)
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = svc.Rate(ctx, owner, postID, 2)
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = svc.Rate(ctx, owner, uuid.NewString(), 1)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestRateTwiceRejected(t *testing.T) {
	postID := uuid.NewString()
	svc, _, counter := newTestLikes(postID)
	ctx := context.Background()
	owner := uuid.NewString()

	_, err := svc.Rate(ctx, owner, postID, 1)
	require.NoError(t, err)

	_, err = svc.Rate(ctx, owner, postID, 1)
	require.ErrorIs(t, err, ErrAlreadyLiked)
	assert.Equal(t, 1, counter.count(postID))
}

func TestRemoveReversesCounter(t *testing.T) {
	postID := uuid.NewString()
	svc, _, counter := newTestLikes(postID)
	ctx := context.Background()
	owner := uuid.NewString()

	like, err := svc.Rate(ctx, owner, postID, 1)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Remove(ctx, uuid.NewString(), like.ID), ErrNotOwner)

	require.NoError(t, svc.Remove(ctx, owner, like.ID))
	assert.Equal(t, 0, counter.count(postID))

	require.ErrorIs(t, svc.Remove(ctx, owner, like.ID), ErrLikeNotFound)
}

func TestHasLiked(t *testing.T) {
	postID := uuid.NewString()
	svc, _, _ := newTestLikes(postID)
	ctx := context.Background()
	owner := uuid.NewString()

	liked, err := svc.HasLiked(ctx, owner, postID)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = svc.Rate(ctx, owner, postID, 1)
	require.NoError(t, err)

	liked, err = svc.HasLiked(ctx, owner, postID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestPurgeOwnerReconcilesCounters(t *testing.T) {
	postA := uuid.NewString()
	postB := uuid.NewString()
	svc, store, counter := newTestLikes(postA, postB)
	ctx := context.Background()
	owner := uuid.NewString()

	_, err := svc.Rate(ctx, owner, postA, 1)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, owner, postB, 1)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, uuid.NewString(), postA, 1)
	require.NoError(t, err)

	require.NoError(t, svc.PurgeOwner(ctx, owner))

	assert.Equal(t, 1, counter.count(postA))
	assert.Equal(t, 0, counter.count(postB))

	mine, err := store.LikesByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
