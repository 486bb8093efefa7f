// Package idempotency keeps at-least-once event consumers from acting twice
// on the same outbox event.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	stateProcessing = "processing"
	stateDone       = "done"

	// DefaultClaimTTL bounds how long a crashed consumer can hold an event
	// before a redelivery may claim it again.
	DefaultClaimTTL = 5 * time.Minute
)

// Store is the redis surface needed for claims. Keys are built as
// <ns>:idempotency:evt:<consumer>:<event_id>.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Manager tracks per-consumer processing of event ids in two phases. Claim
// takes a short lease; Complete turns it into a long lived marker; Release
// drops it so the broker can redeliver.
type Manager struct {
	store    Store
	ttl      time.Duration
	claimTTL time.Duration
}

// NewManager keeps completed markers for ttl. Zero means no expiry.
func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	claimTTL := DefaultClaimTTL
	if ttl > 0 && ttl < claimTTL {
		claimTTL = ttl
	}
	return &Manager{store: store, ttl: ttl, claimTTL: claimTTL}, nil
}

// Claim reports true when this caller now owns eventID for consumer. False
// means the event is done or another delivery is working on it.
func (m *Manager) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return m.store.SetNX(ctx, key, stateProcessing, m.claimTTL)
}

// Complete records eventID as handled for the full retention period.
func (m *Manager) Complete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, stateDone, m.ttl)
}

// Release clears the claim so a redelivered event is handled again.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) key(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return m.store.IdempotencyKey("evt:"+consumer, eventID.String()), nil
}
