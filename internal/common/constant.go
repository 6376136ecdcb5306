// Package common contains shared constants and sentinel errors used across
// maitenotas components.
package common

// DataFileName is the default name of the encrypted note store on disk.
const DataFileName = "maitenotas.data"

// Reserved book ids. The password-check book is never shown to the user.
const (
	PasswordBookID int64 = 1
	FirstDiaryID   int64 = 2
)

// RootParentID marks a journal attached directly under its book.
const RootParentID int64 = 0
