package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

type stubPinger struct {
	err   error
	calls int
}

func (s *stubPinger) Ping(context.Context) error {
	s.calls++
	return s.err
}

type stubConsumer struct {
	err     error
	blocked bool
}

func (s *stubConsumer) Run(ctx context.Context) error {
	if s.blocked {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "worker-test", Output: buf})
}

func TestServiceRunReturnsConsumerError(t *testing.T) {
	var buf bytes.Buffer
	db := &stubPinger{}
	service, err := NewService(ServiceParams{
		Logger:       testLogger(&buf),
		Consumer:     &stubConsumer{err: errors.New("subscription gone")},
		Dependencies: map[string]pinger{"database": db},
		Heartbeat:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := service.Run(context.Background()); err == nil || err.Error() != "subscription gone" {
		t.Fatalf("expected consumer error, got %v", err)
	}
	if db.calls != 1 {
		t.Fatalf("expected one readiness ping, got %d", db.calls)
	}
	if !strings.Contains(buf.String(), "notification consumer stopped unexpectedly") {
		t.Fatalf("expected failure log, got %s", buf.String())
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	service, err := NewService(ServiceParams{
		Logger:   testLogger(&buf),
		Consumer: &stubConsumer{blocked: true},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := service.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestServiceRunFailsWhenDependencyDown(t *testing.T) {
	var buf bytes.Buffer
	consumer := &stubConsumer{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(&buf),
		Consumer: consumer,
		Dependencies: map[string]pinger{
			"database": &stubPinger{},
			"redis":    &stubPinger{err: errors.New("refused")},
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = service.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis ping failed") {
		t.Fatalf("expected redis readiness failure, got %v", err)
	}
}

func TestNewServiceValidatesParams(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewService(ServiceParams{Consumer: &stubConsumer{}}); err == nil {
		t.Fatalf("expected logger error")
	}
	if _, err := NewService(ServiceParams{Logger: testLogger(&buf)}); err == nil {
		t.Fatalf("expected consumer error")
	}
	_, err := NewService(ServiceParams{
		Logger:       testLogger(&buf),
		Consumer:     &stubConsumer{},
		Dependencies: map[string]pinger{"pubsub": nil},
	})
	if err == nil {
		t.Fatalf("expected nil dependency error")
	}
}
