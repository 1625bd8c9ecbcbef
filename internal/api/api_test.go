package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ultramed/clinic/internal/app"
	"github.com/ultramed/clinic/internal/domain/doctor"
	"github.com/ultramed/clinic/internal/domain/patient"
	"github.com/ultramed/clinic/internal/platform/auth"
	"github.com/ultramed/clinic/internal/platform/catalog"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Load(_ context.Context, key string, v interface{}) (bool, error) {
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (s *memStore) Save(_ context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *echo.Echo, *app.App) {
	t.Helper()
	logger := zerolog.Nop()
	a := app.New(newMemStore(), logger)
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	sessions := auth.NewSessionManager("test-secret", time.Hour)
	h := NewHandler(a, sessions, catalog.NewFetcher(logger), logger)
	return h, echo.New(), a
}

func login(t *testing.T, a *app.App) doctor.Doctor {
	t.Helper()
	doc := a.Doctors()[0]
	if _, err := a.Login(doc.ID, doc.Password); err != nil {
		t.Fatalf("login: %v", err)
	}
	return doc
}

func TestHandler_Health(t *testing.T) {
	h, e, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_ListDoctors_ScrubsPasswords(t *testing.T) {
	h, e, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListDoctors(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(rec.Body.String(), `"password":"1234"`) {
		t.Error("doctor password leaked in list response")
	}
}

func TestHandler_Login(t *testing.T) {
	h, e, a := newTestHandler(t)
	doc := a.Doctors()[0]
	body := `{"doctor_id":"` + doc.ID.String() + `","password":"1234"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a session token")
	}
	if resp.Doctor.Password != "" {
		t.Error("doctor password leaked in login response")
	}
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	h, e, a := newTestHandler(t)
	doc := a.Doctors()[0]
	body := `{"doctor_id":"` + doc.ID.String() + `","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_Login_UnknownDoctor(t *testing.T) {
	h, e, _ := newTestHandler(t)
	body := `{"doctor_id":"` + uuid.New().String() + `","password":"1234"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_CreateDoctor(t *testing.T) {
	h, e, a := newTestHandler(t)
	body := `{"name":"dra. lopez","professional_license":"555","university":"unam","password":"abc"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	docs := a.Doctors()
	if len(docs) != 2 {
		t.Fatalf("expected 2 doctors, got %d", len(docs))
	}
	if docs[1].Name != "DRA. LOPEZ" {
		t.Errorf("expected uppercased name, got %q", docs[1].Name)
	}
	if docs[1].Password != "abc" {
		t.Errorf("password must not be uppercased, got %q", docs[1].Password)
	}
}

func TestHandler_CreatePatient_NoSession(t *testing.T) {
	h, e, _ := newTestHandler(t)
	body := `{"name":"ana","dob":"1990-05-01","gender":"Femenino"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreatePatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409 without a session, got %v", err)
	}
}

func TestHandler_CreatePatient(t *testing.T) {
	h, e, a := newTestHandler(t)
	doc := login(t, a)

	body := `{"name":"ana garcia","dob":"1990-05-01","gender":"Femenino"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var p patient.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if p.Name != "ANA GARCIA" {
		t.Errorf("expected uppercased name, got %q", p.Name)
	}
	if p.DoctorID != doc.ID {
		t.Error("patient not bound to the active doctor")
	}
}

func TestHandler_CreatePatient_InvalidGender(t *testing.T) {
	h, e, a := newTestHandler(t)
	login(t, a)

	body := `{"name":"ana","dob":"1990-05-01","gender":"X"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreatePatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid gender, got %v", err)
	}
}

func TestHandler_PatientDetail(t *testing.T) {
	h, e, a := newTestHandler(t)
	login(t, a)
	p, err := a.AddPatient(context.Background(), patient.Draft{
		Name: "ANA", DOB: "1990-05-01", Gender: patient.GenderFemale,
	})
	if err != nil {
		t.Fatalf("add patient: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.PatientDetail(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var detail patientDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.Patient.ID != p.ID {
		t.Error("wrong patient in detail response")
	}
	if len(detail.Consultations) != 0 {
		t.Errorf("expected empty history, got %d", len(detail.Consultations))
	}
	if sel, ok := a.SelectedPatient(); !ok || sel.ID != p.ID {
		t.Error("detail view should select the patient")
	}
}

func TestHandler_PatientDetail_NotFound(t *testing.T) {
	h, e, a := newTestHandler(t)
	login(t, a)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.PatientDetail(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_CreateConsultation(t *testing.T) {
	h, e, a := newTestHandler(t)
	login(t, a)
	p, err := a.AddPatient(context.Background(), patient.Draft{
		Name: "ANA", DOB: "1990-05-01", Gender: patient.GenderFemale,
	})
	if err != nil {
		t.Fatalf("add patient: %v", err)
	}

	body := `{"diagnosis":"gastritis","vital_signs":{"weight":70,"height":1.75}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.CreateConsultation(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got struct {
		Diagnosis  string `json:"diagnosis"`
		VitalSigns struct {
			BMI *string `json:"bmi"`
		} `json:"vital_signs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Diagnosis != "GASTRITIS" {
		t.Errorf("expected uppercased diagnosis, got %q", got.Diagnosis)
	}
	if got.VitalSigns.BMI == nil || *got.VitalSigns.BMI != "22.86" {
		t.Errorf("expected computed BMI 22.86, got %v", got.VitalSigns.BMI)
	}
}

func TestHandler_CreateConsultation_MissingDiagnosis(t *testing.T) {
	h, e, a := newTestHandler(t)
	login(t, a)
	p, err := a.AddPatient(context.Background(), patient.Draft{
		Name: "ANA", DOB: "1990-05-01", Gender: patient.GenderFemale,
	})
	if err != nil {
		t.Fatalf("add patient: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	err = h.CreateConsultation(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing diagnosis, got %v", err)
	}
}

func TestHandler_SaveSettings(t *testing.T) {
	h, e, a := newTestHandler(t)
	login(t, a)

	body := `{"medications_url":"","clinic_info":{"name":"CLINICA NUEVA","address":"CALLE 1","phone":"555"}}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SaveSettings(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.Settings().ClinicInfo.Name; got != "CLINICA NUEVA" {
		t.Errorf("settings not replaced, got clinic name %q", got)
	}
}

func TestHandler_Medications(t *testing.T) {
	h, e, a := newTestHandler(t)
	login(t, a)
	a.SetMedicationCatalog([]string{"PARACETAMOL", "IBUPROFENO"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Medications(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var meds []string
	if err := json.Unmarshal(rec.Body.Bytes(), &meds); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(meds) != 2 || meds[0] != "PARACETAMOL" {
		t.Errorf("unexpected catalog: %v", meds)
	}
}

func TestHandler_Session(t *testing.T) {
	h, e, a := newTestHandler(t)
	doc := login(t, a)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Session(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Doctor == nil || resp.Doctor.ID != doc.ID {
		t.Error("expected the active doctor in the session view")
	}
	if resp.SelectedPatient != nil {
		t.Error("expected no selected patient yet")
	}
}

func TestHandler_Logout(t *testing.T) {
	h, e, a := newTestHandler(t)
	login(t, a)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if _, ok := a.CurrentDoctor(); ok {
		t.Error("expected session cleared")
	}
}
