package models

import "errors"

// Shared storage-level errors.
var (
	ErrNotFound = errors.New("resource not found")
)
