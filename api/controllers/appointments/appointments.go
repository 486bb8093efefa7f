package appointments

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/api/middleware"
	"github.com/angelmondragon/dentalclinic-backend/api/responses"
	"github.com/angelmondragon/dentalclinic-backend/api/validators"
	internalappointments "github.com/angelmondragon/dentalclinic-backend/internal/appointments"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable")
}

// Create books a pending appointment.
func Create(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}

		var body internalappointments.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, appt)
	}
}

// List returns the appointments visible to the authenticated user.
func List(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}

		requesterID, ok := middleware.UserUUIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		list, err := svc.ListForRequester(r.Context(), requesterID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListByDateAndUser serves /date/{date}/user/{userId}.
func ListByDateAndUser(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listByDate(w, r, svc, logg, chi.URLParam(r, "date"), chi.URLParam(r, "userId"))
	}
}

// ListByDateQuery serves the ?date=&userId= form of the same lookup.
func ListByDateQuery(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		listByDate(w, r, svc, logg, query.Get("date"), query.Get("userId"))
	}
}

func listByDate(w http.ResponseWriter, r *http.Request, svc internalappointments.Service, logg *logger.Logger, date, userID string) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, unavailable())
		return
	}

	list, err := svc.ListByDateAndUser(r.Context(), strings.TrimSpace(date), strings.TrimSpace(userID))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, list)
}

func Get(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}

		appt, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	}
}

// Update applies a partial change. The caller is recorded as the actor of
// any confirmation event.
func Update(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}

		var body internalappointments.UpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if userID, ok := middleware.UserUUIDFromContext(r.Context()); ok {
			role, _ := middleware.RoleFromContext(r.Context())
			body.Actor = &internalappointments.Actor{UserID: userID, Role: role}
		}

		appt, err := svc.Update(r.Context(), chi.URLParam(r, "id"), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	}
}

func Delete(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}

		raw := chi.URLParam(r, "id")
		if err := svc.Delete(r.Context(), raw); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, _ := uuid.Parse(strings.TrimSpace(raw))
		responses.WriteSuccess(w, internalappointments.DeleteResult{Deleted: true, ID: id})
	}
}
