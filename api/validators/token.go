package validators

import (
	"errors"
	"net/http"
	"strings"
)

var ErrMissingToken = errors.New("missing bearer token")

// BearerToken extracts the token from an Authorization header. The "Bearer"
// scheme is optional and matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	fields := strings.Fields(r.Header.Get("Authorization"))
	switch {
	case len(fields) == 2 && strings.EqualFold(fields[0], "bearer"):
		return fields[1], nil
	case len(fields) == 1 && !strings.EqualFold(fields[0], "bearer"):
		return fields[0], nil
	default:
		return "", ErrMissingToken
	}
}
