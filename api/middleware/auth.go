package middleware

import (
	"net/http"

	"github.com/angelmondragon/dentalclinic-backend/api/responses"
	"github.com/angelmondragon/dentalclinic-backend/api/validators"
	pkgAuth "github.com/angelmondragon/dentalclinic-backend/pkg/auth"
	"github.com/angelmondragon/dentalclinic-backend/pkg/auth/session"
	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

// Auth requires a valid access token whose session is still live and puts the
// resulting Principal on the request context. A nil verifier skips the
// session lookup.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authenticate(r, cfg, verifier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			if logg != nil {
				ctx = logg.WithUserID(ctx, p.UserID.String())
				ctx = logg.WithActorRole(ctx, p.Role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (Principal, error) {
	token, err := validators.BearerToken(r)
	if err != nil {
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	// Subject, role and session id are checked by the claims validator.
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return Principal{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if verifier != nil {
		live, err := verifier.HasSession(r.Context(), claims.ID)
		if err != nil {
			return Principal{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !live {
			return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired or revoked")
		}
	}
	return Principal{UserID: claims.UserID, Role: claims.Role, SessionID: claims.ID}, nil
}
