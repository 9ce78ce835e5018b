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

type commentDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	PostID    bson.ObjectID `bson:"post_id"`
	Owner     bson.ObjectID `bson:"owner"`
	OwnerName string        `bson:"owner_name"`
	Content   string        `bson:"content"`
	Date      time.Time     `bson:"date"`
}

func (d *commentDoc) toModel() *models.Comment {
	return &models.Comment{
		ID:        d.ID.Hex(),
		PostID:    d.PostID.Hex(),
		Owner:     d.Owner.Hex(),
		OwnerName: d.OwnerName,
		Content:   d.Content,
		Date:      d.Date,
	}
}

// SaveComment inserts a comment and returns the generated ID.
func (s *Storage) SaveComment(ctx context.Context, comment *models.Comment) (string, error) {
	const op = "storage.mongodb.SaveComment"

	postID, ok := objectID(comment.PostID)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}
	owner, ok := objectID(comment.Owner)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	doc := commentDoc{
		ID:        bson.NewObjectID(),
		PostID:    postID,
		Owner:     owner,
		OwnerName: comment.OwnerName,
		Content:   comment.Content,
		Date:      time.Now(),
	}

	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return doc.ID.Hex(), nil
}

// Comment retrieves a comment by ID.
func (s *Storage) Comment(ctx context.Context, commentID string) (*models.Comment, error) {
	const op = "storage.mongodb.Comment"

	id, ok := objectID(commentID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
	}

	var doc commentDoc
	err := s.comments.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// UpdateComment replaces the comment body.
func (s *Storage) UpdateComment(ctx context.Context, commentID, content string) error {
	const op = "storage.mongodb.UpdateComment"

	id, ok := objectID(commentID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
	}

	res, err := s.comments.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "content", Value: content}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
	}

	return nil
}

// DeleteComment removes a single comment.
func (s *Storage) DeleteComment(ctx context.Context, commentID string) error {
	const op = "storage.mongodb.DeleteComment"

	id, ok := objectID(commentID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
	}

	res, err := s.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
	}

	return nil
}

// CommentsByPost returns one newest-first page of a post's comments plus the
// total count for that post.
func (s *Storage) CommentsByPost(ctx context.Context, postID string, page, limit int64) ([]*models.Comment, int64, error) {
	const op = "storage.mongodb.CommentsByPost"

	id, ok := objectID(postID)
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	filter := bson.D{{Key: "post_id", Value: id}}

	total, err := s.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := s.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
	}

	comments := make([]*models.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, docs[i].toModel())
	}

	return comments, total, nil
}

// CommentsByOwner returns all comments written by the user, newest first.
func (s *Storage) CommentsByOwner(ctx context.Context, owner string) ([]*models.Comment, error) {
	const op = "storage.mongodb.CommentsByOwner"

	id, ok := objectID(owner)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.comments.Find(ctx, bson.D{{Key: "owner", Value: id}}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	comments := make([]*models.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, docs[i].toModel())
	}

	return comments, nil
}

// DeleteCommentsByPost drops every comment attached to the post.
func (s *Storage) DeleteCommentsByPost(ctx context.Context, postID string) error {
	const op = "storage.mongodb.DeleteCommentsByPost"

	id, ok := objectID(postID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	if _, err := s.comments.DeleteMany(ctx, bson.D{{Key: "post_id", Value: id}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteCommentsByOwner drops every comment written by the user.
func (s *Storage) DeleteCommentsByOwner(ctx context.Context, owner string) error {
	const op = "storage.mongodb.DeleteCommentsByOwner"

	id, ok := objectID(owner)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	if _, err := s.comments.DeleteMany(ctx, bson.D{{Key: "owner", Value: id}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetCommentsOwnerName rewrites the denormalized owner name on the user's comments.
func (s *Storage) SetCommentsOwnerName(ctx context.Context, owner, ownerName string) error {
	const op = "storage.mongodb.SetCommentsOwnerName"

	id, ok := objectID(owner)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	_, err := s.comments.UpdateMany(ctx,
		bson.D{{Key: "owner", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "owner_name", Value: ownerName}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
