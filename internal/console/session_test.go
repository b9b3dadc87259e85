package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestSessionStore_LoadMissingFileIsZeroSession(t *testing.T) {
	store := tempStore(t)
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)
}

func TestSessionStore_SaveLoadRoundTrip(t *testing.T) {
	store := tempStore(t)
	want := Session{Token: "tok", Username: "ops", IsAdmin: true}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSessionStore_CorruptFileIsLoggedOut(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path), 0o700))
	require.NoError(t, os.WriteFile(store.Path, []byte("{not json"), 0o600))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)
}

func TestSessionStore_ClearIsIdempotent(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save(Session{Token: "tok"}))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
}

func TestAuth_UnauthorizedResponseClearsStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":100007,"message":"Invalid token"}`))
	}))
	defer srv.Close()

	store := tempStore(t)
	require.NoError(t, store.Save(Session{Token: "stale", Username: "ops"}))

	client := NewClient(srv.URL)
	NewAuth(client, store)

	_, err := client.FetchBuildings(context.Background(), Session{Token: "stale"})
	require.Error(t, err)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
}

func TestAuth_VerifyProbesByRole(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"code":200,"message":"Success","data":[]}`))
	}))
	defer srv.Close()

	auth := NewAuth(NewClient(srv.URL), tempStore(t))

	assert.True(t, auth.Verify(context.Background(), Session{Token: "t", IsAdmin: true}))
	assert.True(t, auth.Verify(context.Background(), Session{Token: "t"}))
	require.Len(t, paths, 2)
	assert.Equal(t, "/api/admin/queries", paths[0])
	assert.Equal(t, "/api/buildings", paths[1])
}

func TestAuth_VerifyEmptyTokenIsFalseWithoutNetwork(t *testing.T) {
	auth := NewAuth(NewClient("http://127.0.0.1:1"), tempStore(t))
	assert.False(t, auth.Verify(context.Background(), Session{}))
}

func TestAuth_VerifyFailureClearsStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":100008,"message":"Forbidden"}`))
	}))
	defer srv.Close()

	store := tempStore(t)
	require.NoError(t, store.Save(Session{Token: "tok"}))

	auth := NewAuth(NewClient(srv.URL), store)
	assert.False(t, auth.Verify(context.Background(), Session{Token: "tok"}))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
}

func TestAuth_RequireAdminOnlyRejectsNonAdmin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":200,"message":"Success","data":[]}`))
	}))
	defer srv.Close()

	store := tempStore(t)
	require.NoError(t, store.Save(Session{Token: "tok", Username: "viewer"}))

	auth := NewAuth(NewClient(srv.URL), store)
	_, err := auth.Require(context.Background(), true)
	assert.ErrorIs(t, err, ErrNotAdmin)

	// A valid non-admin session is rejected but kept intact.
	sess, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Equal(t, "tok", sess.Token)
}

func TestAuth_RequireNoSessionIsNotLoggedIn(t *testing.T) {
	auth := NewAuth(NewClient("http://127.0.0.1:1"), tempStore(t))
	_, err := auth.Require(context.Background(), false)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
