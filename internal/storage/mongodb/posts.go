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

type postDoc struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	Title      string        `bson:"title"`
	Content    string        `bson:"content"`
	Photo      string        `bson:"photo,omitempty"`
	Owner      bson.ObjectID `bson:"owner"`
	OwnerName  string        `bson:"owner_name"`
	OwnerPhoto string        `bson:"owner_photo,omitempty"`
	Likes      int64         `bson:"likes"`
	Date       time.Time     `bson:"date"`
}

func (d *postDoc) toModel() *models.Post {
	return &models.Post{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Content:    d.Content,
		Photo:      d.Photo,
		Owner:      d.Owner.Hex(),
		OwnerName:  d.OwnerName,
		OwnerPhoto: d.OwnerPhoto,
		Likes:      d.Likes,
		Date:       d.Date,
	}
}

// SavePost inserts a post and returns the generated ID.
func (s *Storage) SavePost(ctx context.Context, post *models.Post) (string, error) {
	const op = "storage.mongodb.SavePost"

	owner, ok := objectID(post.Owner)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	doc := postDoc{
		ID:         bson.NewObjectID(),
		Title:      post.Title,
		Content:    post.Content,
		Photo:      post.Photo,
		Owner:      owner,
		OwnerName:  post.OwnerName,
		OwnerPhoto: post.OwnerPhoto,
		Likes:      0,
		Date:       time.Now(),
	}

	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return doc.ID.Hex(), nil
}

// Post retrieves a post by ID.
func (s *Storage) Post(ctx context.Context, postID string) (*models.Post, error) {
	const op = "storage.mongodb.Post"

	id, ok := objectID(postID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	var doc postDoc
	err := s.posts.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// UpdatePost sets title and content, and the photo when non-empty.
func (s *Storage) UpdatePost(ctx context.Context, postID, title, content, photo string) error {
	const op = "storage.mongodb.UpdatePost"

	id, ok := objectID(postID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	set := bson.D{
		{Key: "title", Value: title},
		{Key: "content", Value: content},
	}
	if photo != "" {
		set = append(set, bson.E{Key: "photo", Value: photo})
	}

	res, err := s.posts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	return nil
}

// DeletePost removes a single post document.
func (s *Storage) DeletePost(ctx context.Context, postID string) error {
	const op = "storage.mongodb.DeletePost"

	id, ok := objectID(postID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	res, err := s.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	return nil
}

// Posts returns one newest-first page plus the total post count.
func (s *Storage) Posts(ctx context.Context, page, limit int64) ([]*models.Post, int64, error) {
	const op = "storage.mongodb.Posts"

	total, err := s.posts.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := s.posts.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
	}

	posts := make([]*models.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toModel())
	}

	return posts, total, nil
}

// PostsByOwner returns all posts created by the user, newest first.
func (s *Storage) PostsByOwner(ctx context.Context, owner string) ([]*models.Post, error) {
	const op = "storage.mongodb.PostsByOwner"

	id, ok := objectID(owner)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.posts.Find(ctx, bson.D{{Key: "owner", Value: id}}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	posts := make([]*models.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toModel())
	}

	return posts, nil
}

// AdjustLikes atomically adds delta to the post's like counter.
func (s *Storage) AdjustLikes(ctx context.Context, postID string, delta int) error {
	const op = "storage.mongodb.AdjustLikes"

	id, ok := objectID(postID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	res, err := s.posts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "likes", Value: int64(delta)}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	return nil
}

// SetPostsOwnerIdentity rewrites the denormalized owner name/photo on every
// post owned by the user. Empty fields are left untouched.
func (s *Storage) SetPostsOwnerIdentity(ctx context.Context, owner, ownerName, ownerPhoto string) error {
	const op = "storage.mongodb.SetPostsOwnerIdentity"

	id, ok := objectID(owner)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	set := bson.D{}
	if ownerName != "" {
		set = append(set, bson.E{Key: "owner_name", Value: ownerName})
	}
	if ownerPhoto != "" {
		set = append(set, bson.E{Key: "owner_photo", Value: ownerPhoto})
	}
	if len(set) == 0 {
		return nil
	}

	_, err := s.posts.UpdateMany(ctx,
		bson.D{{Key: "owner", Value: id}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
