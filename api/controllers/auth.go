package controllers

import (
	"net/http"

	"github.com/angelmondragon/dentalclinic-backend/internal/auth"
	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

// AuthRegister creates a user account with its role assignment.
func AuthRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	if reg == nil {
		return unavailable(logg, "register service")
	}
	return endpoint(logg, http.StatusCreated, func(r *http.Request) (*users.UserDTO, error) {
		body, err := decodeBody[auth.RegisterRequest](r)
		if err != nil {
			return nil, err
		}
		return reg.Register(r.Context(), body)
	})
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*auth.LoginResponse, error) {
		body, err := decodeBody[auth.LoginRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Login(r.Context(), body)
	})
}

// AuthRefresh rotates the refresh token bound to the presented access token.
// The access token may already be expired.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*auth.TokenPair, error) {
		body, err := decodeBody[auth.RefreshRequest](r)
		if err != nil {
			return nil, err
		}
		token, err := bearer(r)
		if err != nil {
			return nil, err
		}
		return svc.Refresh(r.Context(), token, body)
	})
}

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (map[string]string, error) {
		token, err := bearer(r)
		if err != nil {
			return nil, err
		}
		if err := svc.Logout(r.Context(), token); err != nil {
			return nil, err
		}
		return map[string]string{"status": "logged_out"}, nil
	})
}

// AuthVerifyToken reports the claims of a still valid access token.
func AuthVerifyToken(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*auth.VerifyResponse, error) {
		token, err := bearer(r)
		if err != nil {
			return nil, err
		}
		return svc.Verify(r.Context(), token)
	})
}
