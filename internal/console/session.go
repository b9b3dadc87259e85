package console

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
)

// ErrNotLoggedIn is returned by Require when no stored session exists or
// the stored session no longer verifies against the server.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrNotAdmin is returned by Require when an admin-only surface is
// requested with a non-admin session.
var ErrNotAdmin = errors.New("admin privileges required")

// SessionStore persists the session as a JSON file holding exactly the
// three client-local values: token, username and the admin flag.
type SessionStore struct {
	Path string
}

// NewSessionStore creates a store at the given file path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{Path: path}
}

// Load reads the stored session. A missing file yields a zero session and
// no error.
func (s *SessionStore) Load() (Session, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt session file is treated as logged out.
		return Session{}, nil
	}
	return sess, nil
}

// Save writes the session to disk, creating parent directories as needed.
func (s *SessionStore) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o600)
}

// Clear removes the stored session. A missing file is not an error.
func (s *SessionStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Auth is the session lifecycle façade: login, verification on startup,
// role-gated access and logout.
type Auth struct {
	Client *Client
	Store  *SessionStore
}

// NewAuth wires the auth façade and registers the global 401 handler:
// any unauthorized response from any call clears the stored session.
func NewAuth(client *Client, store *SessionStore) *Auth {
	a := &Auth{Client: client, Store: store}
	client.OnUnauthorized = func() {
		_ = store.Clear()
	}
	return a
}

// Login authenticates and persists the session on success.
func (a *Auth) Login(ctx context.Context, username, password string) (Session, error) {
	sess, err := a.Client.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	if err := a.Store.Save(sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Verify probes a protected endpoint to check that the stored token is
// still accepted. Admin sessions probe the query-template list; non-admin
// sessions probe the building list, which any authenticated user may read.
// Any failure, including transport errors, counts as invalid and clears
// the store, since a client-local token cannot reflect server-side
// revocation.
func (a *Auth) Verify(ctx context.Context, sess Session) bool {
	if sess.Token == "" {
		return false
	}

	path := "/api/buildings"
	if sess.IsAdmin {
		path = "/api/admin/queries"
	}

	if err := a.Client.do(ctx, http.MethodGet, path, sess, nil, nil); err != nil {
		_ = a.Store.Clear()
		return false
	}
	return true
}

// Require loads and verifies the stored session. When adminOnly is set, a
// valid non-admin session is rejected with ErrNotAdmin but kept intact.
func (a *Auth) Require(ctx context.Context, adminOnly bool) (Session, error) {
	sess, err := a.Store.Load()
	if err != nil {
		return Session{}, err
	}
	if !a.Verify(ctx, sess) {
		return Session{}, ErrNotLoggedIn
	}
	if adminOnly && !sess.IsAdmin {
		return Session{}, ErrNotAdmin
	}
	return sess, nil
}

// Logout clears the stored session. Confirmation is the caller's
// responsibility.
func (a *Auth) Logout() error {
	return a.Store.Clear()
}
