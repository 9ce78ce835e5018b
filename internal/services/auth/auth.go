package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pixelfeed/internal/config"
	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/lib/jwt"
	"pixelfeed/internal/lib/sl"
	"pixelfeed/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Auth struct {
	logger         *slog.Logger
	userSaver      UserSaver
	userProvider   UserProvider
	userMutator    UserMutator
	tokenStore     TokenStore
	contentUpdater ContentUpdater
	purgers        []ContentPurger
	photos         PhotoDeleter
	identity       IdentityVerifier
	tokens         config.TokensConfig
}

type UserSaver interface {
	SaveUser(ctx context.Context, user *models.User) (string, error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, userID string) (*models.User, error)
	UserByName(ctx context.Context, userName string) (*models.User, error)
}

type UserMutator interface {
	UpdateProfile(ctx context.Context, userID, email, userName, profileImageURL string) error
	UpdatePassHash(ctx context.Context, userID string, passHash []byte) error
	DeleteUser(ctx context.Context, userID string) error
}

// TokenStore mutates the per-user refresh-token allowlist. All three
// operations are single atomic writes on the user document.
type TokenStore interface {
	AppendToken(ctx context.Context, userID, token string) error
	RemoveToken(ctx context.Context, userID, token string) (removed bool, err error)
	SetTokens(ctx context.Context, userID string, tokens []string) error
}

// ContentUpdater propagates a changed display name or avatar onto the
// denormalized copies stored on posts and comments.
type ContentUpdater interface {
	SetPostsOwnerIdentity(ctx context.Context, owner, ownerName, ownerPhoto string) error
	SetCommentsOwnerName(ctx context.Context, owner, ownerName string) error
}

// ContentPurger removes everything a user owns in one content domain.
type ContentPurger interface {
	PurgeOwner(ctx context.Context, owner string) error
}

type PhotoDeleter interface {
	Delete(ctx context.Context, photoURL string) error
}

// ExternalIdentity is a verified assertion from an outside identity provider.
type ExternalIdentity struct {
	Provider string
	Email    string
	Name     string
	Picture  string
}

type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*ExternalIdentity, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoMatchingToken    = errors.New("no matching token")
	ErrExternalAccount    = errors.New("account uses an external identity provider")
	ErrMisconfigured      = errors.New("token secrets or TTLs are not configured")
)

// New returns a new instance of the Auth service.
func New(
	logger *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	userMutator UserMutator,
	tokenStore TokenStore,
	contentUpdater ContentUpdater,
	purgers []ContentPurger,
	photos PhotoDeleter,
	identity IdentityVerifier,
	tokens config.TokensConfig,
) *Auth {
	return &Auth{
		logger:         logger,
		userSaver:      userSaver,
		userProvider:   userProvider,
		userMutator:    userMutator,
		tokenStore:     tokenStore,
		contentUpdater: contentUpdater,
		purgers:        purgers,
		photos:         photos,
		identity:       identity,
		tokens:         tokens,
	}
}

// Register creates a local-credential account.
func (a *Auth) Register(
	ctx context.Context,
	email string,
	password string,
	userName string,
	profileImageURL string,
) (*models.User, error) {
	const op = "auth.Register"
	log := a.logger.With(slog.String("op", op), slog.String("email", email))
	log.Info("register request")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Email:           email,
		Credential:      models.Credential{Kind: models.CredentialLocal, PassHash: passHash},
		UserName:        userName,
		ProfileImageURL: profileImageURL,
		Tokens:          []string{},
	}

	userID, err := a.userSaver.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			log.Warn("user already exists", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, ErrUserAlreadyExists)
		}
		log.Error("failed to save user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = userID

	log.Info("user registered", slog.String("userID", userID))

	return user, nil
}

// Login authenticates a local account and issues an access/refresh pair.
func (a *Auth) Login(
	ctx context.Context,
	email string,
	password string,
) (*models.TokenPair, error) {
	const op = "auth.Login"
	log := a.logger.With(slog.String("op", op))
	log.Info("login request", slog.String("email", email))

	user, err := a.userProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.Credential.IsExternal() {
		log.Warn("password login attempted on external account")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword(user.Credential.PassHash, []byte(password)); err != nil {
		log.Warn("invalid password", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := a.issueTokenPair(ctx, user)
	if err != nil {
		log.Error("failed to issue token pair", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.String("userID", user.ID))

	return pair, nil
}

// GoogleSignIn verifies an ID token, creating the account on first sight,
// and issues an access/refresh pair.
func (a *Auth) GoogleSignIn(
	ctx context.Context,
	credential string,
) (*models.TokenPair, error) {
	const op = "auth.GoogleSignIn"
	log := a.logger.With(slog.String("op", op))
	log.Info("google sign-in request")

	ident, err := a.identity.Verify(ctx, credential)
	if err != nil {
		log.Warn("identity verification failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := a.userProvider.User(ctx, ident.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			log.Error("failed to get user", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		user = &models.User{
			Email:           ident.Email,
			Credential:      models.Credential{Kind: models.CredentialExternal, Provider: ident.Provider},
			UserName:        ident.Name,
			ProfileImageURL: ident.Picture,
			Tokens:          []string{},
		}
		userID, err := a.userSaver.SaveUser(ctx, user)
		if err != nil {
			log.Error("failed to save user", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.ID = userID
		log.Info("external user created", slog.String("userID", userID))
	} else if ident.Picture != "" && ident.Picture != user.ProfileImageURL {
		// keep the avatar in sync with the provider
		if err := a.userMutator.UpdateProfile(ctx, user.ID, "", "", ident.Picture); err != nil {
			log.Warn("failed to refresh profile image", sl.Err(err))
		} else {
			user.ProfileImageURL = ident.Picture
		}
	}

	pair, err := a.issueTokenPair(ctx, user)
	if err != nil {
		log.Error("failed to issue token pair", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user signed in via google", slog.String("userID", user.ID))

	return pair, nil
}

// VerifyAccessToken is the stateless gate check: signature and expiry only,
// no allowlist consultation. A logged-out access token therefore stays valid
// until natural expiry; only refresh tokens are revocable.
func (a *Auth) VerifyAccessToken(token string) (*jwt.Claims, error) {
	const op = "auth.VerifyAccessToken"

	if a.tokens.AccessSecret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMisconfigured)
	}

	claims, err := jwt.ParseToken(token, a.tokens.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	return claims, nil
}

// Refresh exchanges an allowlisted refresh token for a new pair. Presenting
// a verifiable token that is not on the allowlist is treated as a replay of
// a stolen token: every session for the account is revoked before the call
// is rejected.
func (a *Auth) Refresh(
	ctx context.Context,
	refreshToken string,
) (*models.TokenPair, error) {
	const op = "auth.Refresh"
	log := a.logger.With(slog.String("op", op))
	log.Info("refresh request")

	if err := a.checkTokenConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	claims, err := jwt.ParseToken(refreshToken, a.tokens.RefreshSecret)
	if err != nil {
		log.Warn("refresh token verification failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := a.userProvider.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		log.Error("failed to get user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !contains(user.Tokens, refreshToken) {
		// Fail-safe: a verifiable token we no longer recognize means an old
		// token is being replayed. Clear first, then reject.
		log.Warn("refresh token not in allowlist, revoking all sessions",
			slog.String("userID", user.ID))
		if err := a.tokenStore.SetTokens(ctx, user.ID, []string{}); err != nil {
			log.Error("failed to clear allowlist", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrNoMatchingToken)
	}

	pair, err := a.generatePair(user)
	if err != nil {
		log.Error("failed to generate token pair", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Rebuild the allowlist in one write: drop entries that no longer
	// verify (expired), optionally drop the presented token, add the new one.
	next := a.pruneTokens(user.Tokens)
	if a.tokens.OneTimeRefresh {
		next = remove(next, refreshToken)
	}
	next = append(next, pair.RefreshToken)

	if err := a.tokenStore.SetTokens(ctx, user.ID, next); err != nil {
		log.Error("failed to persist allowlist", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("tokens refreshed", slog.String("userID", user.ID))

	return pair, nil
}

// Logout revokes exactly the presented refresh token. The same fail-safe as
// Refresh applies when the token is not on the allowlist.
func (a *Auth) Logout(
	ctx context.Context,
	refreshToken string,
) error {
	const op = "auth.Logout"
	log := a.logger.With(slog.String("op", op))
	log.Info("logout request")

	if a.tokens.RefreshSecret == "" {
		return fmt.Errorf("%s: %w", op, ErrMisconfigured)
	}

	claims, err := jwt.ParseToken(refreshToken, a.tokens.RefreshSecret)
	if err != nil {
		log.Warn("refresh token verification failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := a.userProvider.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	removed, err := a.tokenStore.RemoveToken(ctx, user.ID, refreshToken)
	if err != nil {
		log.Error("failed to remove token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if !removed {
		log.Warn("logout token not in allowlist, revoking all sessions",
			slog.String("userID", user.ID))
		if err := a.tokenStore.SetTokens(ctx, user.ID, []string{}); err != nil {
			log.Error("failed to clear allowlist", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %w", op, ErrNoMatchingToken)
	}

	log.Info("user logged out", slog.String("userID", user.ID))

	return nil
}

// UserInfo returns the full account record for the authenticated user.
func (a *Auth) UserInfo(ctx context.Context, userID string) (*models.User, error) {
	const op = "auth.UserInfo"

	user, err := a.userProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile changes email, display name and/or avatar after verifying
// the account password, and rewrites the denormalized copies on the user's
// posts and comments.
func (a *Auth) UpdateProfile(
	ctx context.Context,
	userID string,
	password string,
	email string,
	userName string,
	profileImageURL string,
) (*models.User, error) {
	const op = "auth.UpdateProfile"
	log := a.logger.With(slog.String("op", op), slog.String("userID", userID))
	log.Info("profile update request")

	user, err := a.userProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.Credential.IsExternal() {
		if err := bcrypt.CompareHashAndPassword(user.Credential.PassHash, []byte(password)); err != nil {
			log.Warn("invalid password", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
	}

	if email != "" && email != user.Email {
		if existing, err := a.userProvider.User(ctx, email); err == nil && existing.ID != userID {
			return nil, fmt.Errorf("%s: email: %w", op, ErrUserAlreadyExists)
		}
	}
	if userName != "" && userName != user.UserName {
		if existing, err := a.userProvider.UserByName(ctx, userName); err == nil && existing.ID != userID {
			return nil, fmt.Errorf("%s: user name: %w", op, ErrUserAlreadyExists)
		}
	}

	if profileImageURL != "" && user.ProfileImageURL != "" && profileImageURL != user.ProfileImageURL {
		if err := a.photos.Delete(ctx, user.ProfileImageURL); err != nil {
			log.Warn("failed to delete previous profile image", sl.Err(err))
		}
	}

	if err := a.userMutator.UpdateProfile(ctx, userID, email, userName, profileImageURL); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserAlreadyExists)
		}
		log.Error("failed to update profile", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if userName != "" || profileImageURL != "" {
		if err := a.contentUpdater.SetPostsOwnerIdentity(ctx, userID, userName, profileImageURL); err != nil {
			log.Error("failed to propagate identity to posts", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if userName != "" {
		if err := a.contentUpdater.SetCommentsOwnerName(ctx, userID, userName); err != nil {
			log.Error("failed to propagate identity to comments", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	updated, err := a.userProvider.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("profile updated")

	return updated, nil
}

// ChangePassword verifies the old password and stores a new hash. Rejected
// for external-provider accounts, which have no local password.
func (a *Auth) ChangePassword(
	ctx context.Context,
	userID string,
	oldPassword string,
	newPassword string,
) error {
	const op = "auth.ChangePassword"
	log := a.logger.With(slog.String("op", op), slog.String("userID", userID))
	log.Info("password change request")

	user, err := a.userProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.Credential.IsExternal() {
		return fmt.Errorf("%s: %w", op, ErrExternalAccount)
	}

	if err := bcrypt.CompareHashAndPassword(user.Credential.PassHash, []byte(oldPassword)); err != nil {
		log.Warn("invalid password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.userMutator.UpdatePassHash(ctx, userID, newHash); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password changed")

	return nil
}

// DeleteAccount removes the user and everything they own: posts (with
// photos), comments, likes (with counter reconciliation), the profile image
// and finally the account document with its allowlist.
func (a *Auth) DeleteAccount(
	ctx context.Context,
	userID string,
	password string,
) error {
	const op = "auth.DeleteAccount"
	log := a.logger.With(slog.String("op", op), slog.String("userID", userID))
	log.Info("account deletion request")

	user, err := a.userProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if !user.Credential.IsExternal() {
		if err := bcrypt.CompareHashAndPassword(user.Credential.PassHash, []byte(password)); err != nil {
			log.Warn("invalid password", sl.Err(err))
			return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		if user.ProfileImageURL != "" {
			if err := a.photos.Delete(ctx, user.ProfileImageURL); err != nil {
				log.Warn("failed to delete profile image", sl.Err(err))
			}
		}
	}

	for _, purger := range a.purgers {
		if err := purger.PurgeOwner(ctx, userID); err != nil {
			log.Error("failed to purge user content", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := a.userMutator.DeleteUser(ctx, userID); err != nil {
		log.Error("failed to delete user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("account deleted")

	return nil
}

// issueTokenPair generates a pair and appends the refresh token to the
// allowlist, leaving existing sessions untouched.
func (a *Auth) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	pair, err := a.generatePair(user)
	if err != nil {
		return nil, err
	}

	if err := a.tokenStore.AppendToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	return pair, nil
}

// generatePair signs a fresh access/refresh pair without persisting anything.
func (a *Auth) generatePair(user *models.User) (*models.TokenPair, error) {
	if err := a.checkTokenConfig(); err != nil {
		return nil, err
	}

	nonce := uuid.NewString()

	accessToken, err := jwt.GenerateToken(user, a.tokens.AccessSecret, a.tokens.AccessTTL, nonce)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateToken(user, a.tokens.RefreshSecret, a.tokens.RefreshTTL, nonce)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    a.tokens.AccessTTL,
		RefreshTTL:   a.tokens.RefreshTTL,
	}, nil
}

func (a *Auth) checkTokenConfig() error {
	if a.tokens.AccessSecret == "" || a.tokens.RefreshSecret == "" ||
		a.tokens.AccessTTL <= 0 || a.tokens.RefreshTTL <= 0 {
		return ErrMisconfigured
	}
	return nil
}

// pruneTokens drops allowlist entries that no longer verify, so long-lived
// accounts do not accumulate expired sessions forever.
func (a *Auth) pruneTokens(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, err := jwt.ParseToken(t, a.tokens.RefreshSecret); err == nil {
			kept = append(kept, t)
		}
	}
	return kept
}

func contains(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

func remove(tokens []string, token string) []string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	return kept
}
