package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/internal/services"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

const catalog = "service catalog"

// ServicesCreate adds an entry to the treatment catalog.
func ServicesCreate(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, catalog)
	}
	return endpoint(logg, http.StatusCreated, func(r *http.Request) (*services.ServiceDTO, error) {
		body, err := decodeBody[services.ServiceInput](r)
		if err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), body)
	})
}

func ServicesList(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, catalog)
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) ([]services.ServiceDTO, error) {
		return svc.List(r.Context())
	})
}

func ServicesGet(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, catalog)
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*services.ServiceDTO, error) {
		id, err := uuidParam(r, "id", "service")
		if err != nil {
			return nil, err
		}
		return svc.Get(r.Context(), id)
	})
}

func ServicesUpdate(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, catalog)
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*services.ServiceDTO, error) {
		id, err := uuidParam(r, "id", "service")
		if err != nil {
			return nil, err
		}
		body, err := decodeBody[services.ServiceInput](r)
		if err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), id, body)
	})
}

func ServicesDelete(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, catalog)
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*deleted[uuid.UUID], error) {
		id, err := uuidParam(r, "id", "service")
		if err != nil {
			return nil, err
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			return nil, err
		}
		return &deleted[uuid.UUID]{Deleted: true, ID: id}, nil
	})
}
