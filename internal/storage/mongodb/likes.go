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
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type likeDoc struct {
	ID     bson.ObjectID `bson:"_id,omitempty"`
	PostID bson.ObjectID `bson:"post_id"`
	Owner  bson.ObjectID `bson:"owner"`
	Value  int           `bson:"value"`
	Date   time.Time     `bson:"date"`
}

func (d *likeDoc) toModel() *models.Like {
	return &models.Like{
		ID:     d.ID.Hex(),
		PostID: d.PostID.Hex(),
		Owner:  d.Owner.Hex(),
		Value:  d.Value,
		Date:   d.Date,
	}
}

// SaveLike inserts a like document. The unique (post_id, owner) index turns
// a second like from the same user into ErrAlreadyLiked.
func (s *Storage) SaveLike(ctx context.Context, like *models.Like) (string, error) {
	const op = "storage.mongodb.SaveLike"

	postID, ok := objectID(like.PostID)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}
	owner, ok := objectID(like.Owner)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	doc := likeDoc{
		ID:     bson.NewObjectID(),
		PostID: postID,
		Owner:  owner,
		Value:  like.Value,
		Date:   time.Now(),
	}

	if _, err := s.likes.InsertOne(ctx, doc); err != nil {
		if isDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrAlreadyLiked)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return doc.ID.Hex(), nil
}

// Like retrieves a like by ID.
func (s *Storage) Like(ctx context.Context, likeID string) (*models.Like, error) {
	const op = "storage.mongodb.Like"

	id, ok := objectID(likeID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrLikeNotFound)
	}

	var doc likeDoc
	err := s.likes.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrLikeNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// DeleteLike removes a single like document.
func (s *Storage) DeleteLike(ctx context.Context, likeID string) error {
	const op = "storage.mongodb.DeleteLike"

	id, ok := objectID(likeID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrLikeNotFound)
	}

	res, err := s.likes.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrLikeNotFound)
	}

	return nil
}

// LikesByOwner returns every like the user has placed.
func (s *Storage) LikesByOwner(ctx context.Context, owner string) ([]*models.Like, error) {
	const op = "storage.mongodb.LikesByOwner"

	id, ok := objectID(owner)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.likes.Find(ctx, bson.D{{Key: "owner", Value: id}}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var docs []likeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	likes := make([]*models.Like, 0, len(docs))
	for i := range docs {
		likes = append(likes, docs[i].toModel())
	}

	return likes, nil
}

// LikeByOwnerAndPost finds the user's like on a specific post, if any.
func (s *Storage) LikeByOwnerAndPost(ctx context.Context, owner, postID string) (*models.Like, error) {
	const op = "storage.mongodb.LikeByOwnerAndPost"

	ownerID, ok := objectID(owner)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	pID, ok := objectID(postID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	var doc likeDoc
	err := s.likes.FindOne(ctx, bson.D{
		{Key: "owner", Value: ownerID},
		{Key: "post_id", Value: pID},
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrLikeNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// DeleteLikesByPost drops every like attached to the post.
func (s *Storage) DeleteLikesByPost(ctx context.Context, postID string) error {
	const op = "storage.mongodb.DeleteLikesByPost"

	id, ok := objectID(postID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	if _, err := s.likes.DeleteMany(ctx, bson.D{{Key: "post_id", Value: id}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteLikesByOwner drops every like the user has placed.
func (s *Storage) DeleteLikesByOwner(ctx context.Context, owner string) error {
	const op = "storage.mongodb.DeleteLikesByOwner"

	id, ok := objectID(owner)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	if _, err := s.likes.DeleteMany(ctx, bson.D{{Key: "owner", Value: id}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
