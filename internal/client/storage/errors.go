package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrReplicaNotFound indicates that no local replica exists for a document
	ErrReplicaNotFound = errors.New("document replica not found")
)
