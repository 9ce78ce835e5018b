package storage

import "errors"

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrLikeNotFound      = errors.New("like not found")
	ErrAlreadyLiked      = errors.New("post already liked by user")
)
