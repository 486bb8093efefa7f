package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/dentalclinic-backend/api/validators"
	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/pagination"
)

// UsersList serves the paginated user directory.
func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "users service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (pagination.Page[users.UserDTO], error) {
		filter, err := userFilter(r)
		if err != nil {
			return pagination.Page[users.UserDTO]{}, err
		}
		return svc.List(r.Context(), filter)
	})
}

func UsersGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "users service")
	}
	return endpoint(logg, http.StatusOK, func(r *http.Request) (*users.UserDTO, error) {
		id, err := uuidParam(r, "id", "user")
		if err != nil {
			return nil, err
		}
		return svc.Get(r.Context(), id)
	})
}

func userFilter(r *http.Request) (users.ListFilter, error) {
	page, err := validators.ParsePagination(r)
	if err != nil {
		return users.ListFilter{}, err
	}
	isActive, err := validators.ParseQueryBool(r, "isActive")
	if err != nil {
		return users.ListFilter{}, err
	}
	query := r.URL.Query()
	return users.ListFilter{
		Page:      page,
		SortBy:    strings.TrimSpace(query.Get("sortBy")),
		SortOrder: strings.TrimSpace(query.Get("sortOrder")),
		Search:    validators.SanitizeString(query.Get("search"), 100),
		IsActive:  isActive,
	}, nil
}
