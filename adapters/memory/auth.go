package memory

import (
	"sync"
	"time"

	"github.com/lborres/tipon/core"
	"github.com/lborres/tipon/pkg/crypto"
)

// AuthStorage is an embedded core.AuthStorage for development and tests.
type AuthStorage struct {
	mu       sync.RWMutex
	users    map[string]*core.User
	accounts map[string]*core.Account
	sessions map[string]*core.Session // keyed by token hash
	nanoid   *crypto.NanoIDGenerator
}

var _ core.AuthStorage = (*AuthStorage)(nil)

func NewAuthStorage() *AuthStorage {
	nanoid, _ := crypto.NewNanoID()
	return &AuthStorage{
		users:    make(map[string]*core.User),
		accounts: make(map[string]*core.Account),
		sessions: make(map[string]*core.Session),
		nanoid:   nanoid,
	}
}

// UserStorage

func (s *AuthStorage) CreateUser(u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.ErrUserExists
		}
	}

	if u.ID == "" {
		id, err := s.nanoid.Generate()
		if err != nil {
			return err
		}
		u.ID = id
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	return nil
}

func (s *AuthStorage) GetUserByID(id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, core.ErrUserNotFound
}

func (s *AuthStorage) GetUserByEmail(email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (s *AuthStorage) UpdateUser(u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return core.ErrUserNotFound
	}
	u.UpdatedAt = time.Now()
	s.users[u.ID] = u
	return nil
}

func (s *AuthStorage) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return core.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// AccountStorage

func (s *AuthStorage) CreateAccount(a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		id, err := s.nanoid.Generate()
		if err != nil {
			return err
		}
		a.ID = id
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.accounts[a.ID] = a
	return nil
}

func (s *AuthStorage) GetAccountByID(id string) (*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.accounts[id]; ok {
		return a, nil
	}
	return nil, core.ErrUserNotFound
}

func (s *AuthStorage) GetAccountByUserAndProvider(userID, providerID string) ([]*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var accounts []*core.Account
	for _, a := range s.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (s *AuthStorage) UpdateAccount(a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return core.ErrUserNotFound
	}
	a.UpdatedAt = time.Now()
	s.accounts[a.ID] = a
	return nil
}

func (s *AuthStorage) DeleteAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return core.ErrUserNotFound
	}
	delete(s.accounts, id)
	return nil
}

// SessionStorage

func (s *AuthStorage) CreateSession(session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.TokenHash] = session
	return nil
}

func (s *AuthStorage) GetSessionByHash(tokenHash string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[tokenHash]; ok {
		return sess, nil
	}
	return nil, core.ErrSessionNotFound
}

func (s *AuthStorage) GetSessionByID(id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, nil
		}
	}
	return nil, core.ErrSessionNotFound
}

func (s *AuthStorage) GetUserSessions(userID string) ([]*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []*core.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}

func (s *AuthStorage) UpdateSession(session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.TokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	session.UpdatedAt = time.Now()
	s.sessions[session.TokenHash] = session
	return nil
}

func (s *AuthStorage) DeleteSessionByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, sess := range s.sessions {
		if sess.ID == id {
			delete(s.sessions, hash)
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (s *AuthStorage) DeleteSessionByHash(tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(s.sessions, tokenHash)
	return nil
}

func (s *AuthStorage) DeleteUserSessions(userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for hash, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, hash)
			count++
		}
	}
	return count, nil
}

func (s *AuthStorage) DeleteExpiredSessions() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	count := 0
	for hash, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, hash)
			count++
		}
	}
	return count, nil
}
