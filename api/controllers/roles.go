package controllers

import (
	"net/http"

	"github.com/angelmondragon/dentalclinic-backend/internal/roles"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

func RolesCreate(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "roles service")
	}
	return endpoint(logg, http.StatusCreated, func(r *http.Request) (*roles.RoleDTO, error) {
		body, err := decodeBody[roles.RoleInput](r)
		if err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), body)
	})
}

func RolesList(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "roles service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) ([]roles.RoleDTO, error) {
		return svc.List(r.Context())
	})
}

func RolesGet(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "roles service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*roles.RoleDTO, error) {
		id, err := intParam(r, "id", "role")
		if err != nil {
			return nil, err
		}
		return svc.Get(r.Context(), id)
	})
}

// RolesUpdate renames a role. Renaming one of the built-in roles is refused
// by the service.
func RolesUpdate(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "roles service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*roles.RoleDTO, error) {
		id, err := intParam(r, "id", "role")
		if err != nil {
			return nil, err
		}
		body, err := decodeBody[roles.RoleInput](r)
		if err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), id, body)
	})
}

func RolesDelete(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "roles service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*deleted[int], error) {
		id, err := intParam(r, "id", "role")
		if err != nil {
			return nil, err
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			return nil, err
		}
		return &deleted[int]{Deleted: true, ID: id}, nil
	})
}
