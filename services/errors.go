package services

import "errors"

// Request-scoped failures surfaced to clients as 4xx responses. Anything
// else coming out of a service is an opaque store fault.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("forbidden")
)
