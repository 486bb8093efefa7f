package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token paired with the bearer access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is the credential bundle handed to clients.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// LoginResponse contains the authenticated user and their tokens.
type LoginResponse struct {
	User   *users.UserDTO `json:"user"`
	Tokens TokenPair      `json:"tokens"`
}

// VerifyResponse describes a token that passed validation.
type VerifyResponse struct {
	Valid     bool      `json:"valid"`
	UserID    uuid.UUID `json:"userId"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
