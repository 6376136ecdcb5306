package services

import "errors"

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrStoreUnavailable = errors.New("note store unavailable")
	ErrStoreExists      = errors.New("note store already exists")
	ErrStoreIncomplete  = errors.New("note store initialized without a diary, remove the data file and run init again")
	ErrNothingSelected  = errors.New("no note selected")
	ErrSessionClosed    = errors.New("session closed")
)
