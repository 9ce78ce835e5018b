package models

import "time"

// Like records a single user's reaction to a post. Value is +1 or -1 and is
// mirrored into the post's like counter when the like is created or removed.
type Like struct {
	ID     string    `json:"id"`
	PostID string    `json:"postId"`
	Owner  string    `json:"owner"`
	Value  int       `json:"value"`
	Date   time.Time `json:"date"`
}
