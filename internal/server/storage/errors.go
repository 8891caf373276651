package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrSpaceNotFound indicates that space was not found
	ErrSpaceNotFound = errors.New("space not found")

	// ErrSpaceAlreadyExists indicates that owner already has a space with this slug
	ErrSpaceAlreadyExists = errors.New("space already exists")

	// ErrDocumentNotFound indicates that document was not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAttachmentNotFound indicates that attachment was not found
	ErrAttachmentNotFound = errors.New("attachment not found")
)
