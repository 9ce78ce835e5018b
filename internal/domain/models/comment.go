package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Owner     string    `json:"owner"`
	OwnerName string    `json:"ownerName"`
	Content   string    `json:"content"`
	Date      time.Time `json:"date"`
}

type CommentPage struct {
	Comments      []*Comment
	TotalPages    int64
	CurrentPage   int64
	TotalComments int64
}
