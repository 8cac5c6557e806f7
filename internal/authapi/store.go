package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// sessionStore persists the current session to a local file so the client
// stays signed in across restarts. The auth service remains the source of
// truth; the file is just a cache of the last issued tokens.
type sessionStore struct {
	path string
}

func newSessionStore(path string) *sessionStore {
	return &sessionStore{path: path}
}

// Load reads the persisted session. A missing file is not an error: it
// simply means no one is signed in.
func (s *sessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if sess.AccessToken == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session with owner-only permissions. Passing nil removes
// the file.
func (s *sessionStore) Save(sess *Session) error {
	if sess == nil {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
