package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

// uuidParam reads a UUID path parameter. Malformed ids are reported as a
// missing entity since no row could ever match them.
func uuidParam(r *http.Request, key, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return id, nil
}

func intParam(r *http.Request, key, entity string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return id, nil
}
