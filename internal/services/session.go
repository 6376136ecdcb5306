package services

import "github.com/maitelab/maitenotas/internal/cryptox"

// Session is the state of one unlocked store: the derived key, the book
// being edited and the currently selected note. It is created by Create or
// Unlock and handed to every later call.
type Session struct {
	key      cryptox.Key
	BookID   int64
	selected int64
}

// Selected returns the id of the selected note, 0 when none.
func (s *Session) Selected() int64 {
	return s.selected
}

// Closed reports whether Wipe was called.
func (s *Session) Closed() bool {
	return s.key.IsZero()
}

// Wipe destroys the key material. The session is unusable afterwards.
func (s *Session) Wipe() {
	s.key.Wipe()
	s.selected = 0
}
