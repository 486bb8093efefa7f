package redis

import "strings"

const defaultNamespace = "dental"

// Keyspace builds the namespaced keys every redis consumer in the clinic
// backend writes. Empty segments are dropped so callers can pass optional parts.
type Keyspace struct {
	namespace string
}

// NewKeyspace returns a Keyspace rooted at namespace, or "dental" when empty.
func NewKeyspace(namespace string) Keyspace {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = defaultNamespace
	}
	return Keyspace{namespace: namespace}
}

// AccessSessionKey holds the refresh token bound to an access token jti.
func (k Keyspace) AccessSessionKey(accessID string) string {
	return k.join("session", "access", accessID)
}

// IdempotencyKey records a processed request or event id within scope.
func (k Keyspace) IdempotencyKey(scope, id string) string {
	return k.join("idempotency", scope, id)
}

// RateLimitKey is a fixed-window counter, e.g. RateLimitKey("login", "ip", addr).
func (k Keyspace) RateLimitKey(parts ...string) string {
	return k.join(append([]string{"rate_limit"}, parts...)...)
}

func (k Keyspace) join(parts ...string) string {
	ns := k.namespace
	if ns == "" {
		ns = defaultNamespace
	}
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, ns)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, ":")
}
