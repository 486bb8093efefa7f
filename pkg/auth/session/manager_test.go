package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
)

type mockStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) GetDel(ctx context.Context, key string) (string, error) {
	val, err := m.Get(ctx, key)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return val, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

var fixedNow = time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, ttl: time.Hour, now: func() time.Time { return fixedNow }}
}

func storedRecord(t *testing.T, store *mockStore, accessID string) record {
	t.Helper()
	raw, ok := store.data[store.AccessSessionKey(accessID)]
	if !ok {
		t.Fatalf("no session stored for %s", accessID)
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return rec
}

func TestManagerGenerateStoresHashOnly(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	userID := uuid.New()

	token, err := manager.Generate(context.Background(), "access-123", userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	rec := storedRecord(t, store, "access-123")
	if rec.UserID != userID || !rec.IssuedAt.Equal(fixedNow) {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.TokenHash != hashToken(token) {
		t.Fatalf("expected stored token hash")
	}
	if strings.Contains(store.data["sess:access-123"], token) {
		t.Fatalf("raw refresh token must not be stored")
	}
	if store.ttls["sess:access-123"] != time.Hour {
		t.Fatalf("expected session ttl, got %s", store.ttls["sess:access-123"])
	}
}

func TestManagerRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	userID := uuid.New()

	token, err := manager.Generate(ctx, "access-1", userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	newAccessID, newToken, err := manager.Rotate(ctx, "access-1", userID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, exists := store.data["sess:access-1"]; exists {
		t.Fatalf("old session left behind")
	}
	if rec := storedRecord(t, store, newAccessID); rec.TokenHash != hashToken(newToken) {
		t.Fatalf("expected new token stored")
	}
	if _, _, err := manager.Rotate(ctx, "access-1", userID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("rotated-out session must not be reusable, got %v", err)
	}
}

func TestManagerRotateRejectsAndBurnsSession(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	cases := []struct {
		name     string
		user     uuid.UUID
		provided string
	}{
		{"wrong token", userID, "wrong"},
		{"foreign user", uuid.New(), ""},
	}
	for _, tc := range cases {
		store := newMockStore()
		manager := newTestManager(store)
		token, err := manager.Generate(ctx, "access-x", userID)
		if err != nil {
			t.Fatalf("%s: generate: %v", tc.name, err)
		}
		provided := tc.provided
		if provided == "" {
			provided = token
		}
		if _, _, err := manager.Rotate(ctx, "access-x", tc.user, provided); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("%s: expected invalid refresh token, got %v", tc.name, err)
		}
		if _, exists := store.data["sess:access-x"]; exists {
			t.Fatalf("%s: failed rotation must consume the session", tc.name)
		}
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "access-1", uuid.New()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ok, err := manager.HasSession(ctx, "access-1"); err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, err := manager.HasSession(ctx, "access-1"); err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("second revoke should be a no-op, got %v", err)
	}

	store.getErr = errors.New("redis down")
	if _, err := manager.HasSession(ctx, "access-1"); err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestManagerRejectsBlankInput(t *testing.T) {
	manager := newTestManager(newMockStore())
	ctx := context.Background()
	if _, err := manager.Generate(ctx, "", uuid.New()); err == nil {
		t.Fatal("expected error for empty access id")
	}
	if _, err := manager.Generate(ctx, "access-2", uuid.Nil); err == nil {
		t.Fatal("expected error for nil user id")
	}
	if _, _, err := manager.Rotate(ctx, " ", uuid.New(), "token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestNewManagerValidatesTTL(t *testing.T) {
	if _, err := NewManager(nil, config.JWTConfig{}); err == nil {
		t.Fatal("expected error without store")
	}
	store := newMockStore()
	if _, err := NewManager(store, config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30}); err == nil {
		t.Fatal("expected error when refresh ttl does not exceed access ttl")
	}
	if _, err := NewManager(store, config.JWTConfig{ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
