// Package session keeps the signed-in student's identity for the lifetime
// of the client and persists the auth tokens between runs.
package session

import (
	"sync"

	"campus-gms/types"
)

// Session is the identity every form stamps into "raised by".
type Session struct {
	Name        string `json:"name" yaml:"name"`
	ID          string `json:"id" yaml:"id"`
	Confirmed   bool   `json:"confirmed" yaml:"confirmed"`
	PhoneNumber string `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Department  string `json:"department,omitempty" yaml:"department,omitempty"`
}

// FromAccount builds a session from the account returned by the API.
func FromAccount(a *types.Account) Session {
	return Session{
		Name:        a.FullName,
		ID:          a.StudentID,
		Confirmed:   a.Confirmed,
		PhoneNumber: a.PhoneNumber,
		Email:       a.Email,
		Department:  a.Department,
	}
}

// Update is a partial session. Nil fields are left alone by Merge.
type Update struct {
	Name        *string
	ID          *string
	Confirmed   *bool
	PhoneNumber *string
	Email       *string
	Department  *string
}

// Store is the process-wide session holder. Writers do not coordinate;
// the last merge wins.
type Store struct {
	mu  sync.RWMutex
	cur *Session
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the session.
func (s *Store) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = &sess
}

// Merge applies u on top of the current session, creating one if needed,
// and returns the result.
func (s *Store) Merge(u Update) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next Session
	if s.cur != nil {
		next = *s.cur
	}
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.ID != nil {
		next.ID = *u.ID
	}
	if u.Confirmed != nil {
		next.Confirmed = *u.Confirmed
	}
	if u.PhoneNumber != nil {
		next.PhoneNumber = *u.PhoneNumber
	}
	if u.Email != nil {
		next.Email = *u.Email
	}
	if u.Department != nil {
		next.Department = *u.Department
	}
	s.cur = &next
	return next
}

// Get returns a copy of the session and whether one is held.
func (s *Store) Get() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Session{}, false
	}
	return *s.cur, true
}

// Clear forgets the session, as on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = nil
}

// Reporter returns the "raised by" stamp for a submission.
func (s *Store) Reporter() (types.Reporter, bool) {
	sess, ok := s.Get()
	if !ok || sess.ID == "" {
		return types.Reporter{}, false
	}
	return types.Reporter{Name: sess.Name, ID: sess.ID}, true
}
