package school

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Sessions holds the authenticated user's record for the lifetime of the
// process. It never touches the Store's document.
type Sessions struct {
	mu      sync.RWMutex
	store   *Store
	current *User
}

func NewSessions(store *Store) *Sessions {
	return &Sessions{store: store}
}

// Login matches the credentials exactly against the user collection.
// Blank fields or no match fail with ErrInvalidCredentials and leave no
// session behind.
func (s *Sessions) Login(login, password string) (User, error) {
	login = core.CleanString(login)
	password = core.CleanString(password)
	if login == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	usr, ok := s.store.findUser(login, password)
	if !ok {
		return User{}, ErrInvalidCredentials
	}

	s.mu.Lock()
	s.current = &usr
	s.mu.Unlock()
	return usr, nil
}

// Current is a pure read of the session record.
func (s *Sessions) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

// Logout clears the session unconditionally.
func (s *Sessions) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
