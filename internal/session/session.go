// Package session persists the player's local identity between runs: the
// bearer token handed out by the backend and the current player's id and
// nickname. It is the terminal-client analog of the browser's local storage.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type state struct {
	Token          string `json:"token,omitempty"`
	PlayerID       string `json:"currentPlayerId,omitempty"`
	PlayerNickname string `json:"currentPlayerNickname,omitempty"`
}

// Store is a file-backed session store. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	st   state
	file string
}

// NewStore creates a store persisting to dir/session.json. Existing state is
// loaded if present; a missing or unreadable file just means a fresh session.
func NewStore(dir string) *Store {
	s := &Store{file: filepath.Join(dir, "session.json")}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return
	}
	s.st = st
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.file), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.file, data, 0600)
}

// Token returns the stored bearer credential, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Token
}

// SetToken stores a new bearer credential.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Token = token
	return s.save()
}

// ClearToken evicts the stored credential. Called on 401 responses.
func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Token = ""
	return s.save()
}

// TokenExpired reports whether the stored token is a JWT whose expiry has
// passed. Opaque or absent tokens are never reported as expired; the backend
// remains the authority either way.
func (s *Store) TokenExpired(now time.Time) bool {
	s.mu.RLock()
	token := s.st.Token
	s.mu.RUnlock()
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}

// Player returns the stored player identity.
func (s *Store) Player() (id, nickname string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.PlayerID, s.st.PlayerNickname
}

// SetPlayer stores the current player identity. Called after a successful
// create or join.
func (s *Store) SetPlayer(id, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.PlayerID = id
	s.st.PlayerNickname = nickname
	return s.save()
}

// ClearPlayer removes the stored player identity. Called on leave.
func (s *Store) ClearPlayer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.PlayerID = ""
	s.st.PlayerNickname = ""
	return s.save()
}
