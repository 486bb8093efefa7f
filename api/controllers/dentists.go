package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/api/validators"
	"github.com/angelmondragon/dentalclinic-backend/internal/dentists"
	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/pagination"
)

const directory = "dentist directory"

func DentistsCreate(svc dentists.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, directory)
	}
	return endpoint(logg, http.StatusCreated, func(r *http.Request) (*users.UserDTO, error) {
		body, err := decodeBody[dentists.CreateDentistRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), body)
	})
}

// DentistsList pages through users holding the dentist role.
func DentistsList(svc dentists.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, directory)
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (pagination.Page[users.UserDTO], error) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			return pagination.Page[users.UserDTO]{}, err
		}
		return svc.List(r.Context(), dentists.ListQuery{
			Page:   page,
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 100),
		})
	})
}

func DentistsGet(svc dentists.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, directory)
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*users.UserDTO, error) {
		id, err := uuidParam(r, "id", "dentist")
		if err != nil {
			return nil, err
		}
		return svc.Get(r.Context(), id)
	})
}

func DentistsUpdate(svc dentists.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, directory)
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*users.UserDTO, error) {
		id, err := uuidParam(r, "id", "dentist")
		if err != nil {
			return nil, err
		}
		body, err := decodeBody[dentists.UpdateDentistRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), id, body)
	})
}

func DentistsDelete(svc dentists.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, directory)
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*deleted[uuid.UUID], error) {
		id, err := uuidParam(r, "id", "dentist")
		if err != nil {
			return nil, err
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			return nil, err
		}
		return &deleted[uuid.UUID]{Deleted: true, ID: id}, nil
	})
}
