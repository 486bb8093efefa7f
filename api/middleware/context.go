package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

// Principal is the authenticated caller as established by Auth.
type Principal struct {
	UserID    uuid.UUID
	Role      enums.Role
	SessionID string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// WithUserID sets only the user of the context principal. Malformed ids
// leave the principal anonymous.
func WithUserID(ctx context.Context, userID string) context.Context {
	p, _ := PrincipalFromContext(ctx)
	p.UserID, _ = uuid.Parse(userID)
	return WithPrincipal(ctx, p)
}

// WithRole sets only the role of the context principal.
func WithRole(ctx context.Context, role enums.Role) context.Context {
	p, _ := PrincipalFromContext(ctx)
	p.Role = role
	return WithPrincipal(ctx, p)
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := UserUUIDFromContext(ctx); ok {
		return id.String()
	}
	return ""
}

func UserUUIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return p.UserID, true
}

func RoleFromContext(ctx context.Context) (enums.Role, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || !p.Role.IsValid() {
		return 0, false
	}
	return p.Role, true
}
