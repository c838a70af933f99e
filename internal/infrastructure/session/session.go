// Package session keeps per-visitor state (identity, flash messages and the
// post-login return URL) in a server-side store keyed by an opaque id.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Flash kinds rendered by the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Session is the per-request view of a stored session record.
// It is not safe for concurrent use; each request owns its copy.
type Session struct {
	ID        string
	UserID    uuid.UUID
	Flashes   map[string][]string
	ReturnTo  string
	CreatedAt time.Time
	TouchedAt time.Time

	isNew    bool
	dirty    bool
	previous string
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Flashes:   map[string][]string{},
		CreatedAt: now,
		TouchedAt: now,
		isNew:     true,
	}
}

func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) IsAuthenticated() bool { return s.UserID != uuid.Nil }

// AddFlash queues a one-shot message for the next rendered page.
func (s *Session) AddFlash(kind, message string) {
	if message == "" {
		return
	}
	if s.Flashes == nil {
		s.Flashes = map[string][]string{}
	}
	s.Flashes[kind] = append(s.Flashes[kind], message)
	s.dirty = true
}

// ConsumeFlashes returns and clears the queued messages of one kind.
func (s *Session) ConsumeFlashes(kind string) []string {
	msgs := s.Flashes[kind]
	if len(msgs) == 0 {
		return nil
	}
	delete(s.Flashes, kind)
	s.dirty = true
	return msgs
}

// SetReturnTo remembers where to resume after login.
func (s *Session) SetReturnTo(url string) {
	s.ReturnTo = url
	s.dirty = true
}

// PopReturnTo returns and clears the stored resume URL.
func (s *Session) PopReturnTo() string {
	url := s.ReturnTo
	if url != "" {
		s.ReturnTo = ""
		s.dirty = true
	}
	return url
}

// Login binds the session to a user and rotates its id so a pre-login id
// cannot be reused. Flashes and the return URL carry over.
func (s *Session) Login(userID uuid.UUID) {
	s.rotate()
	s.UserID = userID
	s.dirty = true
}

// Logout ends the authenticated session: the old record is removed on the
// next save and a fresh id carries any flash set afterwards.
func (s *Session) Logout() {
	s.rotate()
	s.UserID = uuid.Nil
	s.ReturnTo = ""
	s.dirty = true
}

func (s *Session) rotate() {
	if !s.isNew && s.previous == "" {
		s.previous = s.ID
	}
	s.ID = uuid.NewString()
}
