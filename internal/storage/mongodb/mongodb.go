package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Storage struct {
	client   *mongo.Client
	database *mongo.Database
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	likes    *mongo.Collection
}

// New creates a new MongoDB storage instance and sets up indexes.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	db := client.Database(database)
	s := &Storage{
		client:   client,
		database: db,
		users:    db.Collection("users"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
		likes:    db.Collection("likes"),
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("%s: indexes: %w", op, err)
	}

	return s, nil
}

// EnsureIndexes creates the indexes every collection relies on. Safe to call
// repeatedly; Mongo treats identical index specs as a no-op.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	// users.email unique
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users.email index: %w", err)
	}

	// posts.owner for per-user feeds
	_, err = s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("posts.owner index: %w", err)
	}

	// posts.date for newest-first pagination
	_, err = s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("posts.date index: %w", err)
	}

	// comments.post_id for per-post listings
	_, err = s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("comments.post_id index: %w", err)
	}

	// likes (post_id, owner) unique: one like per user per post
	_, err = s.likes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "post_id", Value: 1},
			{Key: "owner", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("likes (post_id, owner) index: %w", err)
	}

	return nil
}

// Close disconnects from MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// isDuplicateKeyError checks if the error is a MongoDB duplicate key error (code 11000).
func isDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}

// objectID parses a hex document id. Malformed ids behave like ids that do
// not exist, so callers get the same not-found sentinel either way.
func objectID(hex string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}
