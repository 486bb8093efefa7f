package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/api/middleware"
	internalappointments "github.com/angelmondragon/dentalclinic-backend/internal/appointments"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

type stubService struct {
	created     internalappointments.CreateInput
	updated     internalappointments.UpdateInput
	updatedID   string
	deletedID   string
	requester   uuid.UUID
	byDate      [2]string
	appointment *internalappointments.AppointmentDTO
	list        []internalappointments.AppointmentDTO
	err         error
}

func (s *stubService) Create(ctx context.Context, input internalappointments.CreateInput) (*internalappointments.AppointmentDTO, error) {
	s.created = input
	return s.appointment, s.err
}

func (s *stubService) Get(ctx context.Context, id string) (*internalappointments.AppointmentDTO, error) {
	return s.appointment, s.err
}

func (s *stubService) Update(ctx context.Context, id string, input internalappointments.UpdateInput) (*internalappointments.AppointmentDTO, error) {
	s.updatedID = id
	s.updated = input
	return s.appointment, s.err
}

func (s *stubService) Delete(ctx context.Context, id string) error {
	s.deletedID = id
	return s.err
}

func (s *stubService) ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]internalappointments.AppointmentDTO, error) {
	s.requester = requesterID
	return s.list, s.err
}

func (s *stubService) ListByDateAndUser(ctx context.Context, date, userID string) ([]internalappointments.AppointmentDTO, error) {
	s.byDate = [2]string{date, userID}
	return s.list, s.err
}

func newRouter(svc internalappointments.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/appointments", Create(svc, nil))
	r.Get("/appointments", List(svc, nil))
	r.Get("/appointments/by-date", ListByDateQuery(svc, nil))
	r.Get("/appointments/date/{date}/user/{userId}", ListByDateAndUser(svc, nil))
	r.Get("/appointments/{id}", Get(svc, nil))
	r.Put("/appointments/{id}", Update(svc, nil))
	r.Delete("/appointments/{id}", Delete(svc, nil))
	return r
}

func sampleAppointment() *internalappointments.AppointmentDTO {
	return &internalappointments.AppointmentDTO{
		AppointmentID:   uuid.New(),
		AppointmentDate: time.Date(2030, 3, 10, 14, 30, 0, 0, time.UTC),
		Status:          enums.AppointmentStatusPending,
	}
}

func TestCreateReturnsCreated(t *testing.T) {
	svc := &stubService{appointment: sampleAppointment()}
	body := `{"appointmentDate":"2030-03-10T14:30:00Z","patientUserId":"p","dentistUserId":"d","serviceId":"s","notes":"first visit"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created.Date != "2030-03-10T14:30:00Z" || svc.created.PatientID != "p" || svc.created.ServiceID != "s" {
		t.Fatalf("unexpected create input %+v", svc.created)
	}
	if svc.created.Notes == nil || *svc.created.Notes != "first visit" {
		t.Fatalf("expected notes to be forwarded")
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success || envelope.Data.Status != "pending" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestCreateMapsSchedulingConflict(t *testing.T) {
	conflict := pkgerrors.New(pkgerrors.CodeConflict, "scheduling conflict").
		WithReason(pkgerrors.ReasonSchedulingConflict)
	svc := &stubService{err: conflict}
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(`{"appointmentDate":"2030-03-10T14:30:00Z"}`))
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubService{appointment: sampleAppointment()}
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(`{"appointment_date":"2030-03-10"}`))
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListUsesAuthenticatedRequester(t *testing.T) {
	requester := uuid.New()
	svc := &stubService{list: []internalappointments.AppointmentDTO{*sampleAppointment()}}
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), requester.String()))
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.requester != requester {
		t.Fatalf("expected requester %s got %s", requester, svc.requester)
	}
}

func TestListRequiresAuthenticatedUser(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestListByDateForms(t *testing.T) {
	userID := uuid.NewString()
	cases := []struct {
		name string
		url  string
	}{
		{name: "path", url: "/appointments/date/2030-03-10/user/" + userID},
		{name: "query", url: "/appointments/by-date?date=2030-03-10&userId=" + userID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{}
			rec := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", rec.Code)
			}
			if svc.byDate != [2]string{"2030-03-10", userID} {
				t.Fatalf("unexpected params %v", svc.byDate)
			}
		})
	}
}

func TestGetNotFoundHidesDetails(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found").WithDetails(map[string]any{"id": "x"})}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments/x", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "details") {
		t.Fatalf("not found responses must not carry details: %s", rec.Body.String())
	}
}

func TestUpdateRecordsActor(t *testing.T) {
	actor := uuid.New()
	id := uuid.NewString()
	svc := &stubService{appointment: sampleAppointment()}
	req := httptest.NewRequest(http.MethodPut, "/appointments/"+id, strings.NewReader(`{"status":"confirmed"}`))
	ctx := middleware.WithUserID(req.Context(), actor.String())
	ctx = middleware.WithRole(ctx, enums.RoleDentist)
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updatedID != id {
		t.Fatalf("expected id %s got %s", id, svc.updatedID)
	}
	if svc.updated.Status == nil || *svc.updated.Status != "confirmed" {
		t.Fatalf("expected status forwarded, got %+v", svc.updated)
	}
	if svc.updated.Actor == nil || svc.updated.Actor.UserID != actor || svc.updated.Actor.Role != enums.RoleDentist {
		t.Fatalf("unexpected actor %+v", svc.updated.Actor)
	}
}

func TestDeleteAcknowledges(t *testing.T) {
	id := uuid.New()
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/appointments/"+id.String(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data internalappointments.DeleteResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Deleted || envelope.Data.ID != id {
		t.Fatalf("unexpected delete result %+v", envelope.Data)
	}
}

func TestNilServiceIsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments/abc", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
