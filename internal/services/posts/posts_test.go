package posts

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostStore struct {
	mu    sync.Mutex
	posts map[string]*models.Post
	seq   int
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: map[string]*models.Post{}}
}

func (f *fakePostStore) SavePost(_ context.Context, post *models.Post) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	stored := *post
	stored.ID = id
	f.seq++
	stored.Date = time.Unix(int64(f.seq), 0)
	f.posts[id] = &stored
	return id, nil
}

func (f *fakePostStore) Post(_ context.Context, postID string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakePostStore) UpdatePost(_ context.Context, postID, title, content, photo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok {
		return storage.ErrPostNotFound
	}
	p.Title = title
	p.Content = content
	if photo != "" {
		p.Photo = photo
	}
	return nil
}

func (f *fakePostStore) DeletePost(_ context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[postID]; !ok {
		return storage.ErrPostNotFound
	}
	delete(f.posts, postID)
	return nil
}

func (f *fakePostStore) Posts(_ context.Context, page, limit int64) ([]*models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*models.Post, 0, len(f.posts))
	for _, p := range f.posts {
		out := *p
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })

	start := (page - 1) * limit
	if start >= int64(len(all)) {
		return nil, int64(len(all)), nil
	}
	end := start + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end], int64(len(all)), nil
}

func (f *fakePostStore) PostsByOwner(_ context.Context, owner string) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Post
	for _, p := range f.posts {
		if p.Owner == owner {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCascade struct {
	mu       sync.Mutex
	comments []string
	likes    []string
}

func (f *fakeCascade) DeleteCommentsByPost(_ context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, postID)
	return nil
}

func (f *fakeCascade) DeleteLikesByPost(_ context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likes = append(f.likes, postID)
	return nil
}

type fakePhotos struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakePhotos) Delete(_ context.Context, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, photoURL)
	return nil
}

func newTestPosts() (*Posts, *fakePostStore, *fakeCascade, *fakePhotos) {
	store := newFakePostStore()
	cascade := &fakeCascade{}
	photos := &fakePhotos{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, store, cascade, photos), store, cascade, photos
}

func testOwner() *models.User {
	return &models.User{
		ID:              uuid.NewString(),
		UserName:        gofakeit.Username(),
		ProfileImageURL: gofakeit.URL(),
	}
}

func TestCreateStampsOwnerIdentity(t *testing.T) {
	svc, _, _, _ := newTestPosts()
	owner := testOwner()

	post, err := svc.Create(context.Background(), owner, "title", "content", "photo-url")
	require.NoError(t, err)

	assert.Equal(t, owner.ID, post.Owner)
	assert.Equal(t, owner.UserName, post.OwnerName)
	assert.Equal(t, owner.ProfileImageURL, post.OwnerPhoto)
	assert.NotEmpty(t, post.ID)
}

func TestUpdateOnlyOwner(t *testing.T) {
	svc, _, _, photos := newTestPosts()
	ctx := context.Background()
	owner := testOwner()

	post, err := svc.Create(ctx, owner, "title", "content", "old-photo")
	require.NoError(t, err)

	_, err = svc.Update(ctx, uuid.NewString(), post.ID, "new title", "new content", "")
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Update(ctx, owner.ID, post.ID, "", "", "")
	require.ErrorIs(t, err, ErrNoData)

	updated, err := svc.Update(ctx, owner.ID, post.ID, "new title", "new content", "new-photo")
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "new-photo", updated.Photo)

	// the replaced photo is cleaned up
	assert.Equal(t, []string{"old-photo"}, photos.deleted)
}

func TestUpdateMissingPost(t *testing.T) {
	svc, _, _, _ := newTestPosts()

	_, err := svc.Update(context.Background(), uuid.NewString(), uuid.NewString(), "t", "c", "")
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeleteCascades(t *testing.T) {
	svc, store, cascade, photos := newTestPosts()
	ctx := context.Background()
	owner := testOwner()

	post, err := svc.Create(ctx, owner, "title", "content", "photo-url")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, uuid.NewString(), post.ID), ErrNotOwner)

	require.NoError(t, svc.Delete(ctx, owner.ID, post.ID))
	assert.Equal(t, []string{post.ID}, cascade.comments)
	assert.Equal(t, []string{post.ID}, cascade.likes)
	assert.Equal(t, []string{"photo-url"}, photos.deleted)

	_, err = store.Post(ctx, post.ID)
	require.ErrorIs(t, err, storage.ErrPostNotFound)
}

func TestPageNewestFirst(t *testing.T) {
	svc, _, _, _ := newTestPosts()
	ctx := context.Background()
	owner := testOwner()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, owner, "post "+strconv.Itoa(i), "content", "")
		require.NoError(t, err)
	}

	page, err := svc.Page(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Equal(t, int64(5), page.TotalPosts)
	assert.Equal(t, "post 4", page.Posts[0].Title)

	last, err := svc.Page(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Posts, 1)
	assert.Equal(t, "post 0", last.Posts[0].Title)

	_, err = svc.Page(ctx, 0, 2)
	require.ErrorIs(t, err, ErrInvalidPage)
	_, err = svc.Page(ctx, 1, 0)
	require.ErrorIs(t, err, ErrInvalidPage)
}

func TestPurgeOwner(t *testing.T) {
	svc, store, cascade, _ := newTestPosts()
	ctx := context.Background()
	owner := testOwner()
	other := testOwner()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, owner, "mine", "content", "")
		require.NoError(t, err)
	}
	kept, err := svc.Create(ctx, other, "theirs", "content", "")
	require.NoError(t, err)

	require.NoError(t, svc.PurgeOwner(ctx, owner.ID))

	assert.Len(t, cascade.comments, 3)
	assert.Len(t, cascade.likes, 3)

	remaining, err := store.PostsByOwner(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	mine, err := store.PostsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
