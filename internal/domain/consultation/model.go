// Package consultation defines clinical encounter records: vitals, diagnosis,
// prescriptions and ultrasound reports.
package consultation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ultramed/clinic/pkg/dates"
)

// Route is the enumerated medication administration route.
type Route string

const (
	RouteOral          Route = "ORAL"
	RouteIntramuscular Route = "INTRAMUSCULAR"
	RouteIntravenous   Route = "INTRAVENOSA"
	RouteTopical       Route = "TÓPICA"
	RouteSublingual    Route = "SUBLINGUAL"
	RouteOphthalmic    Route = "OFTÁLMICA"
	RouteOtic          Route = "ÓTICA"
	RouteNasal         Route = "NASAL"
	RouteVaginal       Route = "VAGINAL"
	RouteRectal        Route = "RECTAL"
)

var validRoutes = map[Route]bool{
	RouteOral: true, RouteIntramuscular: true, RouteIntravenous: true,
	RouteTopical: true, RouteSublingual: true, RouteOphthalmic: true,
	RouteOtic: true, RouteNasal: true, RouteVaginal: true, RouteRectal: true,
}

// Valid reports whether r is one of the enumerated routes.
func (r Route) Valid() bool { return validRoutes[r] }

// Medication is one prescribed item.
type Medication struct {
	Name       string `json:"name"`
	Indication string `json:"indication"`
	Route      Route  `json:"route"`
}

// Prescription is the list of medications plus general instructions handed to
// the patient.
type Prescription struct {
	Medications  []Medication `json:"medications"`
	Instructions *string      `json:"instructions,omitempty"`
}

// Consultation is one clinical encounter. PatientID and DoctorID are bound at
// creation and immutable afterwards; consultations are never deleted.
type Consultation struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      time.Time `json:"date"`

	Reason       string       `json:"reason"`
	VitalSigns   *VitalSigns  `json:"vital_signs,omitempty"`
	PhysicalExam *string      `json:"physical_exam,omitempty"`
	Diagnosis    string       `json:"diagnosis"`
	Prescription Prescription `json:"prescription"`
	LabStudies   *string      `json:"lab_studies,omitempty"`

	NextAppointment *string  `json:"next_appointment,omitempty"` // YYYY-MM-DD
	Cost            *float64 `json:"cost,omitempty"`

	UltrasoundReportType       *string  `json:"ultrasound_report_type,omitempty"`
	UltrasoundReportFindings   *string  `json:"ultrasound_report_findings,omitempty"`
	UltrasoundReportImpression *string  `json:"ultrasound_report_impression,omitempty"`
	UltrasoundImages           []string `json:"ultrasound_images,omitempty"` // base64
}

// Draft carries the fields of a consultation to be created. Identifier,
// patient and doctor are assigned by the orchestrator at creation time.
type Draft struct {
	Date         time.Time    `json:"date"`
	Reason       string       `json:"reason"`
	VitalSigns   *VitalSigns  `json:"vital_signs,omitempty"`
	PhysicalExam *string      `json:"physical_exam,omitempty"`
	Diagnosis    string       `json:"diagnosis"`
	Prescription Prescription `json:"prescription"`
	LabStudies   *string      `json:"lab_studies,omitempty"`

	NextAppointment *string  `json:"next_appointment,omitempty"`
	Cost            *float64 `json:"cost,omitempty"`

	UltrasoundReportType       *string  `json:"ultrasound_report_type,omitempty"`
	UltrasoundReportFindings   *string  `json:"ultrasound_report_findings,omitempty"`
	UltrasoundReportImpression *string  `json:"ultrasound_report_impression,omitempty"`
	UltrasoundImages           []string `json:"ultrasound_images,omitempty"`
}

// Validate checks required fields and enumerated values of a draft.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Diagnosis) == "" {
		return fmt.Errorf("diagnosis is required")
	}
	for _, m := range d.Prescription.Medications {
		if !m.Route.Valid() {
			return fmt.Errorf("invalid administration route: %s", m.Route)
		}
	}
	if d.NextAppointment != nil && *d.NextAppointment != "" {
		if _, err := dates.ParseLocalDate(*d.NextAppointment); err != nil {
			return fmt.Errorf("invalid next appointment: %w", err)
		}
	}
	return nil
}

// Normalize upper-cases the free-text fields and recomputes the derived
// vitals so the stored record carries the BMI valid for its inputs.
func (d *Draft) Normalize() {
	d.Reason = strings.ToUpper(d.Reason)
	d.Diagnosis = strings.ToUpper(d.Diagnosis)
	upperPtr(d.PhysicalExam)
	upperPtr(d.LabStudies)
	upperPtr(d.UltrasoundReportType)
	upperPtr(d.UltrasoundReportFindings)
	upperPtr(d.UltrasoundReportImpression)
	upperPtr(d.Prescription.Instructions)
	for i := range d.Prescription.Medications {
		d.Prescription.Medications[i].Name = strings.ToUpper(d.Prescription.Medications[i].Name)
		d.Prescription.Medications[i].Indication = strings.ToUpper(d.Prescription.Medications[i].Indication)
	}
	if d.VitalSigns != nil {
		d.VitalSigns.Recalculate()
	}
}

// Materialize builds a Consultation from the draft, bound to the given
// patient and doctor, with a fresh identifier. A zero date defaults to now.
func (d Draft) Materialize(patientID, doctorID uuid.UUID) Consultation {
	date := d.Date
	if date.IsZero() {
		date = time.Now()
	}
	return Consultation{
		ID:                         uuid.New(),
		PatientID:                  patientID,
		DoctorID:                   doctorID,
		Date:                       date,
		Reason:                     d.Reason,
		VitalSigns:                 d.VitalSigns,
		PhysicalExam:               d.PhysicalExam,
		Diagnosis:                  d.Diagnosis,
		Prescription:               d.Prescription,
		LabStudies:                 d.LabStudies,
		NextAppointment:            d.NextAppointment,
		Cost:                       d.Cost,
		UltrasoundReportType:       d.UltrasoundReportType,
		UltrasoundReportFindings:   d.UltrasoundReportFindings,
		UltrasoundReportImpression: d.UltrasoundReportImpression,
		UltrasoundImages:           d.UltrasoundImages,
	}
}

// Validate checks required fields and enumerated values of an existing record
// before an in-place update.
func (c *Consultation) Validate() error {
	if strings.TrimSpace(c.Diagnosis) == "" {
		return fmt.Errorf("diagnosis is required")
	}
	for _, m := range c.Prescription.Medications {
		if !m.Route.Valid() {
			return fmt.Errorf("invalid administration route: %s", m.Route)
		}
	}
	if c.NextAppointment != nil && *c.NextAppointment != "" {
		if _, err := dates.ParseLocalDate(*c.NextAppointment); err != nil {
			return fmt.Errorf("invalid next appointment: %w", err)
		}
	}
	return nil
}

// Normalize upper-cases the free-text fields and recomputes the derived
// vitals of an existing record.
func (c *Consultation) Normalize() {
	c.Reason = strings.ToUpper(c.Reason)
	c.Diagnosis = strings.ToUpper(c.Diagnosis)
	upperPtr(c.PhysicalExam)
	upperPtr(c.LabStudies)
	upperPtr(c.UltrasoundReportType)
	upperPtr(c.UltrasoundReportFindings)
	upperPtr(c.UltrasoundReportImpression)
	upperPtr(c.Prescription.Instructions)
	for i := range c.Prescription.Medications {
		c.Prescription.Medications[i].Name = strings.ToUpper(c.Prescription.Medications[i].Name)
		c.Prescription.Medications[i].Indication = strings.ToUpper(c.Prescription.Medications[i].Indication)
	}
	if c.VitalSigns != nil {
		c.VitalSigns.Recalculate()
	}
}

func upperPtr(s *string) {
	if s != nil {
		*s = strings.ToUpper(*s)
	}
}
