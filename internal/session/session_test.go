package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]int64
	putErr   error
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]int64)}
}

func (m *memStore) Put(_ context.Context, id string, userID int64, _ time.Duration) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = userID
	return nil
}

func (m *memStore) Lookup(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.sessions[id]
	if !ok {
		return 0, ErrNotFound
	}
	return userID, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func newTestManager(t *testing.T, store Store) *Manager {
	t.Helper()
	m, err := NewManager(store, Options{Secret: []byte("test-secret"), TTL: time.Hour})
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(newMemStore(), Options{})
	require.Error(t, err)
}

func TestIssueResolve(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newMemStore())

	token, expires, err := m.Issue(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	userID, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newMemStore())

	token, _, err := m.Issue(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, token))
	_, err = m.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrInvalid)

	// Revoking twice is a no-op.
	require.NoError(t, m.Revoke(ctx, token))
	require.NoError(t, m.Revoke(ctx, "garbage"))
}

func TestResolve_Expired(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newMemStore())

	issuedAt := time.Now()
	m.now = func() time.Time { return issuedAt }
	token, _, err := m.Issue(ctx, 1)
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = m.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestResolve_WrongSecret(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	m := newTestManager(t, store)

	other, err := NewManager(store, Options{Secret: []byte("other-secret"), TTL: time.Hour})
	require.NoError(t, err)
	token, _, err := other.Issue(ctx, 1)
	require.NoError(t, err)

	_, err = m.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestResolve_Malformed(t *testing.T) {
	m := newTestManager(t, newMemStore())

	_, err := m.Resolve(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestIssue_StoreError(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("redis down")
	m := newTestManager(t, store)

	_, _, err := m.Issue(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store session")
}
