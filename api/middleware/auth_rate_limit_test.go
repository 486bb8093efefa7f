package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

func TestAuthRateLimitWindows(t *testing.T) {
	cases := []struct {
		name     string
		policy   AuthRateLimitPolicy
		body     string
		remote   string
		attempts int
		want     int
	}{
		{"under limit", NewAuthRateLimitPolicy("login", time.Minute, 2, 2), `{"email":"tester@example.com","password":"secret"}`, "1.2.3.4:5678", 2, http.StatusOK},
		{"email limit", NewAuthRateLimitPolicy("login", time.Minute, 0, 2), `{"email":"blocked@example.com","password":"secret"}`, "1.2.3.4:5678", 3, http.StatusTooManyRequests},
		{"ip limit", NewAuthRateLimitPolicy("register", time.Minute, 1, 0), `{"email":"foo@example.com","password":"secret"}`, "5.6.7.8:1234", 2, http.StatusTooManyRequests},
		{"emails counted apart from ips", NewAuthRateLimitPolicy("login", time.Minute, 10, 1), `{"password":"secret"}`, "5.6.7.8:1234", 3, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := AuthRateLimit(tc.policy, newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				if string(body) != tc.body {
					t.Fatalf("body not restored: %s", body)
				}
				w.WriteHeader(http.StatusOK)
			}))

			var rec *httptest.ResponseRecorder
			for i := 0; i < tc.attempts; i++ {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/"+tc.policy.name, strings.NewReader(tc.body))
				req.RemoteAddr = tc.remote
				rec = httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				if i < tc.attempts-1 && rec.Code != http.StatusOK {
					t.Fatalf("attempt %d: expected 200 before limit, got %d", i+1, rec.Code)
				}
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if tc.want != http.StatusTooManyRequests {
				return
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected code: %s", payload.Error.Code)
			}
		})
	}
}

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRateStore) RateLimitKey(parts ...string) string {
	return "rl:" + strings.Join(parts, ":")
}

func TestAuthRateLimit_KeysByPolicyAndHashedEmail(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy(" Login ", time.Minute, 5, 5)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":" Mixed@Example.com "}`))
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if store.counts["rl:login:ip:9.9.9.9"] != 1 {
		t.Fatalf("expected ip counter keyed by first forwarded hop, got %v", store.counts)
	}
	emailKey := "rl:login:email:" + hashValue("mixed@example.com")
	if store.counts[emailKey] != 1 {
		t.Fatalf("expected normalized hashed email counter, got %v", store.counts)
	}
	for key := range store.counts {
		if strings.Contains(key, "example.com") {
			t.Fatalf("raw email leaked into key %s", key)
		}
	}
}

func TestAuthRateLimit_StoreErrorIsDependencyFailure(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	called := false
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 1, 0), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run when the limiter is unavailable")
	}
}

func TestAuthRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 1, 1), nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected passthrough, got %d", rec.Code)
	}
}
