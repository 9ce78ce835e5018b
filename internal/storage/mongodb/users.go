package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type userDoc struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	Email           string        `bson:"email"`
	PassHash        []byte        `bson:"pass_hash,omitempty"`
	Provider        string        `bson:"provider,omitempty"`
	UserName        string        `bson:"user_name"`
	ProfileImageURL string        `bson:"profile_image_url"`
	Tokens          []string      `bson:"tokens"`
	CreatedAt       time.Time     `bson:"created_at"`
}

func (d *userDoc) toModel() *models.User {
	cred := models.Credential{Kind: models.CredentialLocal, PassHash: d.PassHash}
	if d.Provider != "" {
		cred = models.Credential{Kind: models.CredentialExternal, Provider: d.Provider}
	}
	tokens := d.Tokens
	if tokens == nil {
		tokens = []string{}
	}
	return &models.User{
		ID:              d.ID.Hex(),
		Email:           d.Email,
		Credential:      cred,
		UserName:        d.UserName,
		ProfileImageURL: d.ProfileImageURL,
		Tokens:          tokens,
		CreatedAt:       d.CreatedAt,
	}
}

// SaveUser saves a new user and returns the generated user ID.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) (string, error) {
	const op = "storage.mongodb.SaveUser"

	doc := userDoc{
		ID:              bson.NewObjectID(),
		Email:           user.Email,
		UserName:        user.UserName,
		ProfileImageURL: user.ProfileImageURL,
		Tokens:          []string{},
		CreatedAt:       time.Now(),
	}
	if user.Credential.IsExternal() {
		doc.Provider = user.Credential.Provider
	} else {
		doc.PassHash = user.Credential.PassHash
	}

	_, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if isDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return doc.ID.Hex(), nil
}

// User retrieves a user by email.
func (s *Storage) User(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongodb.User"

	var doc userDoc
	err := s.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// UserByID retrieves a user by ID.
func (s *Storage) UserByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.mongodb.UserByID"

	id, ok := objectID(userID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	var doc userDoc
	err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// UserByName retrieves a user by display name. Used only for uniqueness
// checks on profile updates.
func (s *Storage) UserByName(ctx context.Context, userName string) (*models.User, error) {
	const op = "storage.mongodb.UserByName"

	var doc userDoc
	err := s.users.FindOne(ctx, bson.D{{Key: "user_name", Value: userName}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// AppendToken atomically adds a refresh token to the user's allowlist.
func (s *Storage) AppendToken(ctx context.Context, userID, token string) error {
	const op = "storage.mongodb.AppendToken"

	id, ok := objectID(userID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "tokens", Value: token}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

// RemoveToken atomically removes one refresh token from the allowlist.
// Returns false when the token was not in the list; the membership check and
// the removal are a single write, so two concurrent revokes of the same
// token cannot both report success.
func (s *Storage) RemoveToken(ctx context.Context, userID, token string) (bool, error) {
	const op = "storage.mongodb.RemoveToken"

	id, ok := objectID(userID)
	if !ok {
		return false, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	res, err := s.users.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "tokens", Value: token},
		},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "tokens", Value: token}}}},
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return res.MatchedCount > 0, nil
}

// SetTokens replaces the user's allowlist wholesale. Used for the fail-safe
// clear and for pruning on rotation.
func (s *Storage) SetTokens(ctx context.Context, userID string, tokens []string) error {
	const op = "storage.mongodb.SetTokens"

	id, ok := objectID(userID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if tokens == nil {
		tokens = []string{}
	}

	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "tokens", Value: tokens}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

// UpdateProfile sets the non-empty profile fields on the user.
func (s *Storage) UpdateProfile(ctx context.Context, userID, email, userName, profileImageURL string) error {
	const op = "storage.mongodb.UpdateProfile"

	id, ok := objectID(userID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	set := bson.D{}
	if email != "" {
		set = append(set, bson.E{Key: "email", Value: email})
	}
	if userName != "" {
		set = append(set, bson.E{Key: "user_name", Value: userName})
	}
	if profileImageURL != "" {
		set = append(set, bson.E{Key: "profile_image_url", Value: profileImageURL})
	}
	if len(set) == 0 {
		return nil
	}

	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrUserAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

// UpdatePassHash replaces the user's bcrypt hash.
func (s *Storage) UpdatePassHash(ctx context.Context, userID string, passHash []byte) error {
	const op = "storage.mongodb.UpdatePassHash"

	id, ok := objectID(userID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "pass_hash", Value: passHash}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

// DeleteUser removes the user document, allowlist included.
func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	const op = "storage.mongodb.DeleteUser"

	id, ok := objectID(userID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	res, err := s.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}
