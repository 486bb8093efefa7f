package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/internal/dentists"
	"github.com/angelmondragon/dentalclinic-backend/internal/roles"
	"github.com/angelmondragon/dentalclinic-backend/internal/services"
	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/pagination"
)

type stubUsersService struct {
	filter users.ListFilter
	getID  uuid.UUID
	err    error
}

func (s *stubUsersService) List(ctx context.Context, filter users.ListFilter) (pagination.Page[users.UserDTO], error) {
	s.filter = filter
	return pagination.NewPage([]users.UserDTO{}, filter.Page, 0), s.err
}

func (s *stubUsersService) Get(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
	s.getID = id
	return &users.UserDTO{ID: id}, s.err
}

func TestUsersListParsesQuery(t *testing.T) {
	svc := &stubUsersService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=2&limit=25&sortBy=email&sortOrder=asc&search=%20ana%20&isActive=true", nil)
	rec := httptest.NewRecorder()

	UsersList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	f := svc.filter
	if f.Page.Page != 2 || f.Page.Limit != 25 || f.SortBy != "email" || f.SortOrder != "asc" || f.Search != "ana" {
		t.Fatalf("unexpected filter %+v", f)
	}
	if f.IsActive == nil || !*f.IsActive {
		t.Fatalf("expected isActive=true")
	}
}

func TestUsersListRejectsBadQuery(t *testing.T) {
	cases := []string{
		"/api/v1/users?limit=500",
		"/api/v1/users?page=0",
		"/api/v1/users?isActive=maybe",
	}
	for _, url := range cases {
		rec := httptest.NewRecorder()
		UsersList(&stubUsersService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", url, rec.Code)
		}
	}
}

func TestUsersGetMalformedIDIsNotFound(t *testing.T) {
	svc := &stubUsersService{}
	r := chi.NewRouter()
	r.Get("/users/{id}", UsersGet(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}

	id := uuid.New()
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil))
	if rec.Code != http.StatusOK || svc.getID != id {
		t.Fatalf("expected lookup of %s, got status %d id %s", id, rec.Code, svc.getID)
	}
}

type stubRolesService struct {
	input roles.RoleInput
	id    int
	err   error
}

func (s *stubRolesService) Create(ctx context.Context, input roles.RoleInput) (*roles.RoleDTO, error) {
	s.input = input
	return &roles.RoleDTO{ID: 3, Description: input.Description}, s.err
}

func (s *stubRolesService) List(ctx context.Context) ([]roles.RoleDTO, error) {
	return []roles.RoleDTO{{ID: 1, Description: "dentist"}, {ID: 2, Description: "patient"}}, s.err
}

func (s *stubRolesService) Get(ctx context.Context, id int) (*roles.RoleDTO, error) {
	s.id = id
	return &roles.RoleDTO{ID: id}, s.err
}

func (s *stubRolesService) Update(ctx context.Context, id int, input roles.RoleInput) (*roles.RoleDTO, error) {
	s.id = id
	s.input = input
	return &roles.RoleDTO{ID: id, Description: input.Description}, s.err
}

func (s *stubRolesService) Delete(ctx context.Context, id int) error {
	s.id = id
	return s.err
}

func TestRolesRoutes(t *testing.T) {
	svc := &stubRolesService{}
	r := chi.NewRouter()
	r.Post("/roles", RolesCreate(svc, nil))
	r.Get("/roles", RolesList(svc, nil))
	r.Get("/roles/{id}", RolesGet(svc, nil))
	r.Put("/roles/{id}", RolesUpdate(svc, nil))
	r.Delete("/roles/{id}", RolesDelete(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(`{"description":"hygienist"}`)))
	if rec.Code != http.StatusCreated || svc.input.Description != "hygienist" {
		t.Fatalf("create: status %d input %+v", rec.Code, svc.input)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create without description: expected 400 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/roles/3", strings.NewReader(`{"description":"assistant"}`)))
	if rec.Code != http.StatusOK || svc.id != 3 {
		t.Fatalf("update: status %d id %d", rec.Code, svc.id)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get with bad id: expected 404 got %d", rec.Code)
	}

	svc.err = pkgerrors.New(pkgerrors.CodeConflict, "role is assigned to users")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/roles/3", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete conflict: expected 400 got %d", rec.Code)
	}
}

type stubCatalogService struct {
	input     services.ServiceInput
	deletedID uuid.UUID
	err       error
}

func (s *stubCatalogService) Create(ctx context.Context, input services.ServiceInput) (*services.ServiceDTO, error) {
	s.input = input
	return &services.ServiceDTO{ID: uuid.New(), Description: input.Description}, s.err
}

func (s *stubCatalogService) List(ctx context.Context) ([]services.ServiceDTO, error) {
	return []services.ServiceDTO{}, s.err
}

func (s *stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*services.ServiceDTO, error) {
	return &services.ServiceDTO{ID: id}, s.err
}

func (s *stubCatalogService) Update(ctx context.Context, id uuid.UUID, input services.ServiceInput) (*services.ServiceDTO, error) {
	s.input = input
	return &services.ServiceDTO{ID: id, Description: input.Description}, s.err
}

func (s *stubCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

func TestServicesRoutes(t *testing.T) {
	svc := &stubCatalogService{}
	r := chi.NewRouter()
	r.Post("/services", ServicesCreate(svc, nil))
	r.Get("/services", ServicesList(svc, nil))
	r.Get("/services/{id}", ServicesGet(svc, nil))
	r.Put("/services/{id}", ServicesUpdate(svc, nil))
	r.Delete("/services/{id}", ServicesDelete(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`{"description":"Cleaning"}`)))
	if rec.Code != http.StatusCreated || svc.input.Description != "Cleaning" {
		t.Fatalf("create: status %d input %+v", rec.Code, svc.input)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", rec.Code)
	}

	id := uuid.New()
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/services/"+id.String(), nil))
	if rec.Code != http.StatusOK || svc.deletedID != id {
		t.Fatalf("delete: status %d id %s", rec.Code, svc.deletedID)
	}
	var envelope struct {
		Data struct {
			Deleted bool      `json:"deleted"`
			ID      uuid.UUID `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Deleted || envelope.Data.ID != id {
		t.Fatalf("unexpected delete payload %+v", envelope.Data)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/services/nope", strings.NewReader(`{"description":"x"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update bad id: expected 404 got %d", rec.Code)
	}
}

type stubDentistsService struct {
	query  dentists.ListQuery
	update dentists.UpdateDentistRequest
	err    error
}

func (s *stubDentistsService) Create(ctx context.Context, req dentists.CreateDentistRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: uuid.New(), Email: req.Email}, s.err
}

func (s *stubDentistsService) List(ctx context.Context, query dentists.ListQuery) (pagination.Page[users.UserDTO], error) {
	s.query = query
	return pagination.NewPage([]users.UserDTO{}, query.Page, 0), s.err
}

func (s *stubDentistsService) Get(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id}, s.err
}

func (s *stubDentistsService) Update(ctx context.Context, id uuid.UUID, req dentists.UpdateDentistRequest) (*users.UserDTO, error) {
	s.update = req
	return &users.UserDTO{ID: id}, s.err
}

func (s *stubDentistsService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func TestDentistsRoutes(t *testing.T) {
	svc := &stubDentistsService{}
	r := chi.NewRouter()
	r.Post("/dentists", DentistsCreate(svc, nil))
	r.Get("/dentists", DentistsList(svc, nil))
	r.Put("/dentists/{id}", DentistsUpdate(svc, nil))
	r.Delete("/dentists/{id}", DentistsDelete(svc, nil))

	body := `{"firstName":"Rosa","lastName":"Diaz","email":"rosa@clinic.test","password":"Secret123!"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dentists", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dentists?search=rosa&limit=5", nil))
	if rec.Code != http.StatusOK || svc.query.Search != "rosa" || svc.query.Page.Limit != 5 {
		t.Fatalf("list: status %d query %+v", rec.Code, svc.query)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/dentists/"+uuid.NewString(), strings.NewReader(`{"isActive":false}`)))
	if rec.Code != http.StatusOK || svc.update.IsActive == nil || *svc.update.IsActive {
		t.Fatalf("update: status %d request %+v", rec.Code, svc.update)
	}

	svc.err = pkgerrors.New(pkgerrors.CodeConflict, "cannot delete dentist: dentist has scheduled appointments")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/dentists/"+uuid.NewString(), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete: expected 400 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "scheduled appointments") {
		t.Fatalf("expected conflict message, got %s", rec.Body.String())
	}
}
