package service

import "errors"

var (
	ErrFollowSelf       = errors.New("cannot follow self")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrInvalidPassword  = errors.New("invalid username or password")
	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrNotAuthor        = errors.New("only the author may do this")
	ErrTitleRequired    = errors.New("title is required")
	ErrBodyRequired     = errors.New("body is required")
	ErrAlreadyRequested = errors.New("access already requested")
	ErrRequestNotFound  = errors.New("access request not found")
	ErrInvalidPrivacy   = errors.New("privacy value must be 0 or 1")
)
