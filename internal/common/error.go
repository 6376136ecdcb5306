// Package common defines shared constants and sentinel errors used across
// the storage, service and CLI layers of maitenotas. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Storage errors. ErrStorageUnavailable means the data file could not be
	// opened at all; ErrStorage means a statement failed on an open store.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorage            = errors.New("storage error")
)
