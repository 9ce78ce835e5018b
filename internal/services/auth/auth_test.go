package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pixelfeed/internal/config"
	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/lib/jwt"
	"pixelfeed/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passDefaultLen = 10

func randomPassword() string {
	return gofakeit.Password(true, true, true, true, false, passDefaultLen)
}

func testTokensConfig() config.TokensConfig {
	return config.TokensConfig{
		AccessSecret:  "test-access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "test-refresh-secret",
		RefreshTTL:    time.Hour,
	}
}

// fakeStore is an in-memory stand-in for the mongo storage, implementing the
// same sentinel-error contract.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*models.User

	postsIdentityCalls  int
	commentsNameCalls   int
	lastPostsOwnerName  string
	lastPostsOwnerPhoto string
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*models.User{}}
}

func (f *fakeStore) SaveUser(_ context.Context, user *models.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return "", storage.ErrUserAlreadyExists
		}
	}
	id := uuid.NewString()
	stored := *user
	stored.ID = id
	stored.Tokens = append([]string{}, user.Tokens...)
	f.users[id] = &stored
	return id, nil
}

func (f *fakeStore) User(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeStore) UserByID(_ context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (f *fakeStore) UserByName(_ context.Context, userName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserName == userName {
			return copyUser(u), nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeStore) AppendToken(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

func (f *fakeStore) RemoveToken(_ context.Context, userID, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return false, storage.ErrUserNotFound
	}
	for i, t := range u.Tokens {
		if t == token {
			u.Tokens = append(u.Tokens[:i], u.Tokens[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SetTokens(_ context.Context, userID string, tokens []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Tokens = append([]string{}, tokens...)
	return nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, userID, email, userName, profileImageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	if email != "" {
		u.Email = email
	}
	if userName != "" {
		u.UserName = userName
	}
	if profileImageURL != "" {
		u.ProfileImageURL = profileImageURL
	}
	return nil
}

func (f *fakeStore) UpdatePassHash(_ context.Context, userID string, passHash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Credential.PassHash = passHash
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return storage.ErrUserNotFound
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeStore) SetPostsOwnerIdentity(_ context.Context, _, ownerName, ownerPhoto string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postsIdentityCalls++
	f.lastPostsOwnerName = ownerName
	f.lastPostsOwnerPhoto = ownerPhoto
	return nil
}

func (f *fakeStore) SetCommentsOwnerName(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentsNameCalls++
	return nil
}

func (f *fakeStore) tokens(t *testing.T, userID string) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	require.True(t, ok, "user %s not in store", userID)
	return append([]string{}, u.Tokens...)
}

func copyUser(u *models.User) *models.User {
	out := *u
	out.Tokens = append([]string{}, u.Tokens...)
	return &out
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

type fakeIdentity struct {
	identity *ExternalIdentity
	err      error
}

func (f *fakeIdentity) Verify(context.Context, string) (*ExternalIdentity, error) {
	return f.identity, f.err
}

type recordingPurger struct {
	name string
	log  *[]string
}

func (p *recordingPurger) PurgeOwner(_ context.Context, _ string) error {
	*p.log = append(*p.log, p.name)
	return nil
}

func newTestAuth(store *fakeStore, cfg config.TokensConfig) (*Auth, *fakePhotos, *fakeIdentity) {
	photos := &fakePhotos{}
	identity := &fakeIdentity{err: errors.New("not configured")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := New(logger, store, store, store, store, store, nil, photos, identity, cfg)
	return svc, photos, identity
}

func registerAndLogin(t *testing.T, svc *Auth) (*models.User, *models.TokenPair) {
	t.Helper()
	ctx := context.Background()

	email := gofakeit.Email()
	password := randomPassword()

	user, err := svc.Register(ctx, email, password, gofakeit.Username(), "")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	pair, err := svc.Login(ctx, email, password)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	return user, pair
}

func TestRegisterLogin(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())

	user, pair := registerAndLogin(t, svc)

	claims, err := jwt.ParseToken(pair.AccessToken, testTokensConfig().AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.UserName, claims.UserName)

	assert.Equal(t, []string{pair.RefreshToken}, store.tokens(t, user.ID))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	email := gofakeit.Email()

	_, err := svc.Register(ctx, email, randomPassword(), gofakeit.Username(), "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, email, randomPassword(), gofakeit.Username(), "")
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginInvalidCredentials(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	email := gofakeit.Email()
	_, err := svc.Register(ctx, email, randomPassword(), gofakeit.Username(), "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, email, "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, gofakeit.Email(), randomPassword())
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyAccessToken(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())

	user, pair := registerAndLogin(t, svc)

	claims, err := svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// refresh token is signed with the other secret and must not pass
	_, err = svc.VerifyAccessToken(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyAccessToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshKeepsOldSessionAlive(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	user, pair := registerAndLogin(t, svc)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	tokens := store.tokens(t, user.ID)
	assert.Contains(t, tokens, pair.RefreshToken)
	assert.Contains(t, tokens, next.RefreshToken)
	assert.Len(t, tokens, 2)

	// the presented token stays usable for other devices
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshOneTimeRotation(t *testing.T) {
	cfg := testTokensConfig()
	cfg.OneTimeRefresh = true

	store := newFakeStore()
	svc, _, _ := newTestAuth(store, cfg)
	ctx := context.Background()

	user, pair := registerAndLogin(t, svc)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	tokens := store.tokens(t, user.ID)
	assert.NotContains(t, tokens, pair.RefreshToken)
	assert.Equal(t, []string{next.RefreshToken}, tokens)

	// replaying the rotated-out token revokes every session
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrNoMatchingToken)
	assert.Empty(t, store.tokens(t, user.ID))
}

func TestRefreshUnknownTokenRevokesAllSessions(t *testing.T) {
	cfg := testTokensConfig()
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, cfg)
	ctx := context.Background()

	user, _ := registerAndLogin(t, svc)

	// verifiable token that was never allowlisted: signed with the real
	// secret but never persisted
	forged, err := jwt.GenerateToken(user, cfg.RefreshSecret, cfg.RefreshTTL, uuid.NewString())
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, forged)
	require.ErrorIs(t, err, ErrNoMatchingToken)
	assert.Empty(t, store.tokens(t, user.ID))
}

func TestRefreshGarbageTokenLeavesAllowlistAlone(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	user, pair := registerAndLogin(t, svc)

	_, err := svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	// a token signed with the wrong secret is just as invalid
	wrongKey, err := jwt.GenerateToken(user, "some-other-secret", time.Hour, uuid.NewString())
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, wrongKey)
	require.ErrorIs(t, err, ErrInvalidToken)

	assert.Equal(t, []string{pair.RefreshToken}, store.tokens(t, user.ID))
}

func TestRefreshPrunesExpiredTokens(t *testing.T) {
	cfg := testTokensConfig()
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, cfg)
	ctx := context.Background()

	user, pair := registerAndLogin(t, svc)

	expired, err := jwt.GenerateToken(user, cfg.RefreshSecret, -time.Minute, uuid.NewString())
	require.NoError(t, err)
	require.NoError(t, store.AppendToken(ctx, user.ID, expired))

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	tokens := store.tokens(t, user.ID)
	assert.NotContains(t, tokens, expired)
	assert.Contains(t, tokens, pair.RefreshToken)
	assert.Contains(t, tokens, next.RefreshToken)
}

func TestRefreshDeletedUser(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	user, pair := registerAndLogin(t, svc)
	require.NoError(t, store.DeleteUser(ctx, user.ID))

	_, err := svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogoutRemovesExactlyOneToken(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	user, first := registerAndLogin(t, svc)

	// second session via refresh keeps both tokens live
	secondPair, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.Len(t, store.tokens(t, user.ID), 2)

	require.NoError(t, svc.Logout(ctx, first.RefreshToken))
	assert.Equal(t, []string{secondPair.RefreshToken}, store.tokens(t, user.ID))

	// replaying the revoked token clears the remaining session too
	err = svc.Logout(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrNoMatchingToken)
	assert.Empty(t, store.tokens(t, user.ID))
}

func TestMisconfiguredTokens(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, config.TokensConfig{})
	ctx := context.Background()

	email := gofakeit.Email()
	password := randomPassword()
	_, err := svc.Register(ctx, email, password, gofakeit.Username(), "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, email, password)
	require.ErrorIs(t, err, ErrMisconfigured)

	_, err = svc.VerifyAccessToken("anything")
	require.ErrorIs(t, err, ErrMisconfigured)

	_, err = svc.Refresh(ctx, "anything")
	require.ErrorIs(t, err, ErrMisconfigured)
}

func TestGoogleSignIn(t *testing.T) {
	store := newFakeStore()
	svc, _, identity := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	email := gofakeit.Email()
	identity.identity = &ExternalIdentity{
		Provider: "google",
		Email:    email,
		Name:     gofakeit.Username(),
		Picture:  gofakeit.URL(),
	}
	identity.err = nil

	pair, err := svc.GoogleSignIn(ctx, "id-token")
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshToken)

	user, err := store.User(ctx, email)
	require.NoError(t, err)
	assert.True(t, user.Credential.IsExternal())
	assert.Equal(t, "google", user.Credential.Provider)

	// second sign-in reuses the account and adds a second session
	_, err = svc.GoogleSignIn(ctx, "id-token")
	require.NoError(t, err)
	assert.Len(t, store.tokens(t, user.ID), 2)

	// password operations are rejected for the external account
	_, err = svc.Login(ctx, email, "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	err = svc.ChangePassword(ctx, user.ID, "old", "new")
	require.ErrorIs(t, err, ErrExternalAccount)
}

func TestGoogleSignInRejectedCredential(t *testing.T) {
	store := newFakeStore()
	svc, _, identity := newTestAuth(store, testTokensConfig())

	identity.identity = nil
	identity.err = errors.New("bad audience")

	_, err := svc.GoogleSignIn(context.Background(), "tampered")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfilePropagatesIdentity(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	email := gofakeit.Email()
	password := randomPassword()
	user, err := svc.Register(ctx, email, password, gofakeit.Username(), "")
	require.NoError(t, err)

	newName := gofakeit.Username()
	updated, err := svc.UpdateProfile(ctx, user.ID, password, "", newName, "")
	require.NoError(t, err)
	assert.Equal(t, newName, updated.UserName)

	assert.Equal(t, 1, store.postsIdentityCalls)
	assert.Equal(t, 1, store.commentsNameCalls)
	assert.Equal(t, newName, store.lastPostsOwnerName)

	_, err = svc.UpdateProfile(ctx, user.ID, "wrong-password", "", gofakeit.Username(), "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfileTakenUserName(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	password := randomPassword()
	first, err := svc.Register(ctx, gofakeit.Email(), password, "first-user", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, gofakeit.Email(), randomPassword(), "second-user", "")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, first.ID, password, "", "second-user", "")
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestChangePassword(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestAuth(store, testTokensConfig())
	ctx := context.Background()

	email := gofakeit.Email()
	oldPassword := randomPassword()
	newPassword := randomPassword()

	user, err := svc.Register(ctx, email, oldPassword, gofakeit.Username(), "")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong", newPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, oldPassword, newPassword))

	_, err = svc.Login(ctx, email, oldPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, email, newPassword)
	require.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	store := newFakeStore()

	var purgeLog []string
	purgers := []ContentPurger{
		&recordingPurger{name: "likes", log: &purgeLog},
		&recordingPurger{name: "comments", log: &purgeLog},
		&recordingPurger{name: "posts", log: &purgeLog},
	}

	photos := &fakePhotos{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(logger, store, store, store, store, store, purgers, photos, &fakeIdentity{}, testTokensConfig())
	ctx := context.Background()

	email := gofakeit.Email()
	password := randomPassword()
	user, err := svc.Register(ctx, email, password, gofakeit.Username(), gofakeit.URL())
	require.NoError(t, err)

	err = svc.DeleteAccount(ctx, user.ID, "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.DeleteAccount(ctx, user.ID, password))
	assert.Equal(t, []string{"likes", "comments", "posts"}, purgeLog)
	assert.Len(t, photos.deleted, 1)

	_, err = svc.UserInfo(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}
