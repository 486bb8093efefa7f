package controllers

import (
	"net/http"

	"github.com/angelmondragon/dentalclinic-backend/api/responses"
	"github.com/angelmondragon/dentalclinic-backend/api/validators"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

// endpoint adapts fn to an http.HandlerFunc that writes fn's result with
// status inside the success envelope, or the error envelope on failure.
func endpoint[T any](logg *logger.Logger, status int, fn func(r *http.Request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}
}

// unavailable answers every request with a 500 for a dependency that was
// never wired.
func unavailable(logg *logger.Logger, what string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, what+" unavailable"))
	}
}

func decodeBody[T any](r *http.Request) (T, error) {
	var body T
	err := validators.DecodeJSONBody(r, &body)
	return body, err
}

func bearer(r *http.Request) (string, error) {
	token, err := validators.BearerToken(r)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

type deleted[ID comparable] struct {
	Deleted bool `json:"deleted"`
	ID      ID   `json:"id"`
}
