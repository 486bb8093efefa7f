package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims is the JWT body. The jti doubles as the refresh
// session key.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

var (
	errClaimsUser    = errors.New("token user does not match subject")
	errClaimsRole    = errors.New("token role is invalid")
	errClaimsTokenID = errors.New("token id is missing")
)

// Validate runs after the registered-claims checks. jwt/v5 picks it up
// through jwt.ClaimsValidator.
func (c AccessTokenClaims) Validate() error {
	switch {
	case c.UserID == uuid.Nil || c.Subject != c.UserID.String():
		return errClaimsUser
	case !c.Role.IsValid():
		return errClaimsRole
	case c.ID == "":
		return errClaimsTokenID
	}
	return nil
}
