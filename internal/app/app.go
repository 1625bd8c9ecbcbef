// Package app owns the in-memory application state: the doctor, patient and
// consultation collections, the settings singleton and the active session.
// Every committed mutation goes through an App operation, which rebuilds the
// affected collection (copy-on-write) and immediately re-persists it through
// the injected store. Collections persist independently; there is no
// cross-collection transaction.
//
// No operation deletes a record. Deletion is a deliberate non-goal of this
// system, not an omission.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ultramed/clinic/internal/domain/consultation"
	"github.com/ultramed/clinic/internal/domain/doctor"
	"github.com/ultramed/clinic/internal/domain/patient"
	"github.com/ultramed/clinic/internal/domain/settings"
	"github.com/ultramed/clinic/internal/platform/store"
)

var (
	// ErrBadCredentials is returned when a login password does not match.
	// The session is left untouched and the caller may retry immediately.
	ErrBadCredentials = errors.New("incorrect password")

	// ErrNoActiveDoctor is returned when a patient or consultation mutation
	// arrives without an authenticated doctor session. The UI never offers
	// those actions without a session, so hitting this indicates a caller
	// bug; the action is refused, not crashed.
	ErrNoActiveDoctor = errors.New("no active doctor session")

	// ErrNotFound is returned when an update or selection names an
	// identifier with no stored record. State is never mutated in that case.
	ErrNotFound = errors.New("record not found")
)

// App is the single state owner. All reads and writes are serialized by its
// mutex since the HTTP layer, unlike the original single-threaded UI loop,
// may deliver requests concurrently.
type App struct {
	mu     sync.Mutex
	store  store.Store
	logger zerolog.Logger

	doctors       []doctor.Doctor
	patients      []patient.Patient
	consultations []consultation.Consultation
	settings      settings.AppSettings
	medications   []string

	currentDoctor   *doctor.Doctor
	selectedPatient *patient.Patient
}

// New builds an App around the given persistence gateway. Call Load before
// using it.
func New(st store.Store, logger zerolog.Logger) *App {
	return &App{
		store:       st,
		logger:      logger,
		medications: []string{},
	}
}

// Load pulls every collection from the store, synthesizing and persisting
// defaults where nothing exists yet: one placeholder doctor (so the login
// screen is never an empty-state deadlock) and the default clinic settings.
func (a *App) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var docs []doctor.Doctor
	found, err := a.store.Load(ctx, store.KeyDoctors, &docs)
	if err != nil {
		return fmt.Errorf("load doctors: %w", err)
	}
	if !found || len(docs) == 0 {
		docs = []doctor.Doctor{doctor.Default()}
		if err := a.store.Save(ctx, store.KeyDoctors, docs); err != nil {
			return fmt.Errorf("persist default doctor: %w", err)
		}
		a.logger.Info().Msg("no doctors found, default doctor created")
	}
	a.doctors = docs

	if _, err := a.store.Load(ctx, store.KeyPatients, &a.patients); err != nil {
		return fmt.Errorf("load patients: %w", err)
	}
	if _, err := a.store.Load(ctx, store.KeyConsultations, &a.consultations); err != nil {
		return fmt.Errorf("load consultations: %w", err)
	}

	var cfg settings.AppSettings
	found, err = a.store.Load(ctx, store.KeySettings, &cfg)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !found {
		cfg = settings.Default()
		if err := a.store.Save(ctx, store.KeySettings, cfg); err != nil {
			return fmt.Errorf("persist default settings: %w", err)
		}
		a.logger.Info().Msg("no settings found, defaults created")
	}
	a.settings = cfg

	return nil
}

// MigrateLegacyPatients assigns the first doctor's identifier to every
// patient record that lacks one. Early roster records predate per-doctor
// ownership. Runs once at startup; running it again when all records already
// carry a doctor is a no-op. Returns the number of records migrated.
func (a *App) MigrateLegacyPatients(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.patients) == 0 || len(a.doctors) == 0 {
		return 0, nil
	}

	migrated := 0
	next := make([]patient.Patient, len(a.patients))
	copy(next, a.patients)
	for i := range next {
		if next[i].DoctorID == uuid.Nil {
			next[i].DoctorID = a.doctors[0].ID
			migrated++
		}
	}
	if migrated == 0 {
		return 0, nil
	}

	if err := a.store.Save(ctx, store.KeyPatients, next); err != nil {
		return 0, fmt.Errorf("persist migrated patients: %w", err)
	}
	a.patients = next
	a.logger.Info().Int("migrated", migrated).Msg("assigned legacy patients to the first doctor")
	return migrated, nil
}

// -- Doctors --

// AddDoctor creates a doctor from the draft. Always succeeds.
func (a *App) AddDoctor(ctx context.Context, d doctor.Draft) (doctor.Doctor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	d.Normalize()
	doc := d.Materialize()

	next := make([]doctor.Doctor, len(a.doctors), len(a.doctors)+1)
	copy(next, a.doctors)
	next = append(next, doc)
	if err := a.store.Save(ctx, store.KeyDoctors, next); err != nil {
		return doctor.Doctor{}, fmt.Errorf("persist doctors: %w", err)
	}
	a.doctors = next
	return doc, nil
}

// UpdateDoctor replaces the record matching d.ID and returns the stored
// value. Returns ErrNotFound, with no state change, when the identifier is
// unknown.
func (a *App) UpdateDoctor(ctx context.Context, d doctor.Doctor) (doctor.Doctor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	d.Normalize()
	idx := -1
	for i := range a.doctors {
		if a.doctors[i].ID == d.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return doctor.Doctor{}, ErrNotFound
	}

	next := make([]doctor.Doctor, len(a.doctors))
	copy(next, a.doctors)
	next[idx] = d
	if err := a.store.Save(ctx, store.KeyDoctors, next); err != nil {
		return doctor.Doctor{}, fmt.Errorf("persist doctors: %w", err)
	}
	a.doctors = next
	return d, nil
}

// Login authenticates a doctor by exact password match and makes them the
// active session. A mismatch returns ErrBadCredentials and leaves the
// session untouched. This is a local gate, not a security boundary.
func (a *App) Login(id uuid.UUID, password string) (doctor.Doctor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.doctors {
		if a.doctors[i].ID == id {
			if a.doctors[i].Password != password {
				return doctor.Doctor{}, ErrBadCredentials
			}
			doc := a.doctors[i]
			a.currentDoctor = &doc
			return doc, nil
		}
	}
	return doctor.Doctor{}, ErrNotFound
}

// Logout clears the active doctor and any selected patient unconditionally,
// forcing re-authentication.
func (a *App) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentDoctor = nil
	a.selectedPatient = nil
}

// CurrentDoctor returns the active session doctor, if any.
func (a *App) CurrentDoctor() (doctor.Doctor, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.currentDoctor == nil {
		return doctor.Doctor{}, false
	}
	return *a.currentDoctor, true
}

// Doctors returns a copy of the doctor collection.
func (a *App) Doctors() []doctor.Doctor {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]doctor.Doctor, len(a.doctors))
	copy(out, a.doctors)
	return out
}

// -- Patients --

// AddPatient creates a patient from the draft, bound to the active doctor.
// Refused with ErrNoActiveDoctor when no session is active: the caller
// should never have offered the action.
func (a *App) AddPatient(ctx context.Context, d patient.Draft) (patient.Patient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentDoctor == nil {
		a.logger.Warn().Msg("add patient refused: no active doctor session")
		return patient.Patient{}, ErrNoActiveDoctor
	}
	if err := d.Validate(); err != nil {
		return patient.Patient{}, err
	}
	d.Normalize()
	p := d.Materialize(a.currentDoctor.ID)

	next := make([]patient.Patient, len(a.patients), len(a.patients)+1)
	copy(next, a.patients)
	next = append(next, p)
	if err := a.store.Save(ctx, store.KeyPatients, next); err != nil {
		return patient.Patient{}, fmt.Errorf("persist patients: %w", err)
	}
	a.patients = next
	return p, nil
}

// UpdatePatient replaces the record matching p.ID, keeping the stored owning
// doctor (patients are never reassigned between doctors), and returns the
// stored value. When the updated patient is the current selection, the
// selection is refreshed so open views stay consistent. Returns ErrNotFound,
// with no state change, when the identifier is unknown.
func (a *App) UpdatePatient(ctx context.Context, p patient.Patient) (patient.Patient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := p.Validate(); err != nil {
		return patient.Patient{}, err
	}
	idx := -1
	for i := range a.patients {
		if a.patients[i].ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return patient.Patient{}, ErrNotFound
	}
	p.DoctorID = a.patients[idx].DoctorID
	p.Normalize()

	next := make([]patient.Patient, len(a.patients))
	copy(next, a.patients)
	next[idx] = p
	if err := a.store.Save(ctx, store.KeyPatients, next); err != nil {
		return patient.Patient{}, fmt.Errorf("persist patients: %w", err)
	}
	a.patients = next

	if a.selectedPatient != nil && a.selectedPatient.ID == p.ID {
		a.selectedPatient = &p
	}
	return p, nil
}

// SelectPatient makes the identified patient the session's focus. An unknown
// identifier leaves the selection unchanged and returns ErrNotFound.
func (a *App) SelectPatient(id uuid.UUID) (patient.Patient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.patients {
		if a.patients[i].ID == id {
			p := a.patients[i]
			a.selectedPatient = &p
			return p, nil
		}
	}
	return patient.Patient{}, ErrNotFound
}

// ClearSelectedPatient drops the patient focus, returning to the roster view.
func (a *App) ClearSelectedPatient() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selectedPatient = nil
}

// SelectedPatient returns the session's patient focus, if any.
func (a *App) SelectedPatient() (patient.Patient, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.selectedPatient == nil {
		return patient.Patient{}, false
	}
	return *a.selectedPatient, true
}

// -- Consultations --

// AddConsultation creates a consultation from the draft for the identified
// patient. The consultation is bound to the patient's owning doctor, which
// must also be the active session doctor.
func (a *App) AddConsultation(ctx context.Context, patientID uuid.UUID, d consultation.Draft) (consultation.Consultation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentDoctor == nil {
		a.logger.Warn().Msg("add consultation refused: no active doctor session")
		return consultation.Consultation{}, ErrNoActiveDoctor
	}

	var pat *patient.Patient
	for i := range a.patients {
		if a.patients[i].ID == patientID {
			pat = &a.patients[i]
			break
		}
	}
	if pat == nil {
		return consultation.Consultation{}, ErrNotFound
	}

	if err := d.Validate(); err != nil {
		return consultation.Consultation{}, err
	}
	d.Normalize()
	c := d.Materialize(pat.ID, pat.DoctorID)

	next := make([]consultation.Consultation, len(a.consultations), len(a.consultations)+1)
	copy(next, a.consultations)
	next = append(next, c)
	if err := a.store.Save(ctx, store.KeyConsultations, next); err != nil {
		return consultation.Consultation{}, fmt.Errorf("persist consultations: %w", err)
	}
	a.consultations = next
	return c, nil
}

// UpdateConsultation replaces the record matching c.ID and returns the
// stored value. Identifier, patient and doctor bindings are kept from the
// stored record; everything else is replaceable. Returns ErrNotFound, with
// no state change, when the identifier is unknown.
func (a *App) UpdateConsultation(ctx context.Context, c consultation.Consultation) (consultation.Consultation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := c.Validate(); err != nil {
		return consultation.Consultation{}, err
	}
	idx := -1
	for i := range a.consultations {
		if a.consultations[i].ID == c.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return consultation.Consultation{}, ErrNotFound
	}
	c.PatientID = a.consultations[idx].PatientID
	c.DoctorID = a.consultations[idx].DoctorID
	c.Normalize()

	next := make([]consultation.Consultation, len(a.consultations))
	copy(next, a.consultations)
	next[idx] = c
	if err := a.store.Save(ctx, store.KeyConsultations, next); err != nil {
		return consultation.Consultation{}, fmt.Errorf("persist consultations: %w", err)
	}
	a.consultations = next
	return c, nil
}

// -- Settings & catalog --

// Settings returns the settings singleton.
func (a *App) Settings() settings.AppSettings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// SaveSettings replaces the settings singleton wholesale and persists it.
func (a *App) SaveSettings(ctx context.Context, s settings.AppSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Save(ctx, store.KeySettings, s); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	a.settings = s
	return nil
}

// SetMedicationCatalog installs the fetched medication name list.
func (a *App) SetMedicationCatalog(meds []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if meds == nil {
		meds = []string{}
	}
	a.medications = meds
}

// MedicationCatalog returns the medication names available for autocomplete.
func (a *App) MedicationCatalog() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.medications))
	copy(out, a.medications)
	return out
}
