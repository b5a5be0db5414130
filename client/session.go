package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Session holds the bearer token and the signed-in user. It is the only
// place a token lives: Init sets it on login, Teardown clears it on logout.
//
// Session implements oauth2.TokenSource, so the transport attaches the
// Authorization header through oauth2.Transport on every request.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *User

	// path is where the session is persisted. Empty disables persistence.
	path string
}

type sessionFile struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// NewSession returns an empty in-memory session.
func NewSession() *Session {
	return &Session{}
}

// LoadSession reads a persisted session from path. A missing file yields an
// empty session bound to path.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "failed to read session file %s", path)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to decode session file %s", path)
	}
	s.token = f.Token
	s.user = f.User
	return s, nil
}

// Init starts an authenticated session and persists it when a path is set.
func (s *Session) Init(token string, user *User) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(sessionFile{Token: token, User: user}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return errors.Wrapf(err, "failed to create session dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write session file %s", path)
	}
	return nil
}

// Teardown clears the session and removes the persisted copy.
func (s *Session) Teardown() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove session file %s", path)
	}
	return nil
}

// Token implements oauth2.TokenSource. An empty session still yields a
// token so that requests carry "Bearer " and the backend answers 401.
func (s *Session) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: s.AccessToken(), TokenType: "Bearer"}, nil
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// Path returns the file the session persists to.
func (s *Session) Path() string {
	return s.path
}
