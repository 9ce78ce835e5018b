package models

import "time"

// Post carries denormalized owner identity (name and photo) so feeds render
// without extra lookups; profile updates rewrite these fields in place.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Photo      string    `json:"photo,omitempty"`
	Owner      string    `json:"owner"`
	OwnerName  string    `json:"ownerName"`
	OwnerPhoto string    `json:"ownerPhoto,omitempty"`
	Likes      int64     `json:"likes"`
	Date       time.Time `json:"date"`
}

// PostPage is one page of a newest-first post listing.
type PostPage struct {
	Posts       []*Post
	TotalPages  int64
	CurrentPage int64
	TotalPosts  int64
}
