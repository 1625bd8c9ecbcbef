// Package patient defines the patient roster records owned by a doctor.
package patient

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ultramed/clinic/pkg/dates"
)

// Gender is the enumerated patient gender.
type Gender string

const (
	GenderMale   Gender = "Masculino"
	GenderFemale Gender = "Femenino"
	GenderOther  Gender = "Otro"
)

var validGenders = map[Gender]bool{
	GenderMale: true, GenderFemale: true, GenderOther: true,
}

// Valid reports whether g is one of the enumerated genders.
func (g Gender) Valid() bool { return validGenders[g] }

// Patient is a person under a doctor's care. DoctorID is bound at creation
// from the active session and is never reassigned afterwards. Patients are
// never deleted; deletion is a deliberate non-goal.
//
// The gynecological fields are meaningful only when Gender is Femenino.
type Patient struct {
	ID       uuid.UUID `json:"id"`
	DoctorID uuid.UUID `json:"doctor_id"`
	Name     string    `json:"name"`
	DOB      string    `json:"dob"` // YYYY-MM-DD
	Gender   Gender    `json:"gender"`
	Contact  string    `json:"contact"`

	Allergies              *string `json:"allergies,omitempty"`
	FamilyHistory          *string `json:"family_history,omitempty"`
	PathologicalHistory    *string `json:"pathological_history,omitempty"`
	NonPathologicalHistory *string `json:"non_pathological_history,omitempty"`
	SurgicalHistory        *string `json:"surgical_history,omitempty"`

	GynecologicalHistory *string `json:"gynecological_history,omitempty"`
	LastPapanicolaou     *string `json:"last_papanicolaou,omitempty"` // YYYY-MM-DD
	LastColposcopy       *string `json:"last_colposcopy,omitempty"`  // YYYY-MM-DD
}

// DisplayAge renders the patient's age at the given reference time, in months
// under a year and in years otherwise. ok is false for a blank, malformed or
// future date of birth.
func (p *Patient) DisplayAge(now time.Time) (string, bool) {
	return dates.DisplayAge(p.DOB, now)
}

// AgeInYears returns the patient's whole-year age at the given reference
// time, never negative.
func (p *Patient) AgeInYears(now time.Time) int {
	return dates.AgeInYears(p.DOB, now)
}

// Draft carries the fields of a patient to be created. Identifier and owning
// doctor are assigned by the orchestrator at creation time.
type Draft struct {
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Gender  Gender `json:"gender"`
	Contact string `json:"contact"`

	Allergies              *string `json:"allergies,omitempty"`
	FamilyHistory          *string `json:"family_history,omitempty"`
	PathologicalHistory    *string `json:"pathological_history,omitempty"`
	NonPathologicalHistory *string `json:"non_pathological_history,omitempty"`
	SurgicalHistory        *string `json:"surgical_history,omitempty"`

	GynecologicalHistory *string `json:"gynecological_history,omitempty"`
	LastPapanicolaou     *string `json:"last_papanicolaou,omitempty"`
	LastColposcopy       *string `json:"last_colposcopy,omitempty"`
}

// Validate checks the enumerated and date fields of a draft.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !d.Gender.Valid() {
		return fmt.Errorf("invalid gender: %s", d.Gender)
	}
	if d.DOB != "" {
		if _, err := dates.ParseLocalDate(d.DOB); err != nil {
			return fmt.Errorf("invalid date of birth: %w", err)
		}
	}
	return nil
}

// Normalize upper-cases the free-text fields per the clinic's capture
// convention. Dates and the gender token are left untouched.
func (d *Draft) Normalize() {
	d.Name = strings.ToUpper(d.Name)
	d.Contact = strings.ToUpper(d.Contact)
	upperPtr(d.Allergies)
	upperPtr(d.FamilyHistory)
	upperPtr(d.PathologicalHistory)
	upperPtr(d.NonPathologicalHistory)
	upperPtr(d.SurgicalHistory)
	upperPtr(d.GynecologicalHistory)
}

// Materialize builds a Patient from the draft, bound to the given doctor,
// with a fresh identifier.
func (d Draft) Materialize(doctorID uuid.UUID) Patient {
	return Patient{
		ID:                     uuid.New(),
		DoctorID:               doctorID,
		Name:                   d.Name,
		DOB:                    d.DOB,
		Gender:                 d.Gender,
		Contact:                d.Contact,
		Allergies:              d.Allergies,
		FamilyHistory:          d.FamilyHistory,
		PathologicalHistory:    d.PathologicalHistory,
		NonPathologicalHistory: d.NonPathologicalHistory,
		SurgicalHistory:        d.SurgicalHistory,
		GynecologicalHistory:   d.GynecologicalHistory,
		LastPapanicolaou:       d.LastPapanicolaou,
		LastColposcopy:         d.LastColposcopy,
	}
}

// Validate checks the enumerated and date fields of an existing record before
// an in-place update.
func (p *Patient) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !p.Gender.Valid() {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if p.DOB != "" {
		if _, err := dates.ParseLocalDate(p.DOB); err != nil {
			return fmt.Errorf("invalid date of birth: %w", err)
		}
	}
	return nil
}

// Normalize upper-cases the free-text fields of an existing record.
func (p *Patient) Normalize() {
	p.Name = strings.ToUpper(p.Name)
	p.Contact = strings.ToUpper(p.Contact)
	upperPtr(p.Allergies)
	upperPtr(p.FamilyHistory)
	upperPtr(p.PathologicalHistory)
	upperPtr(p.NonPathologicalHistory)
	upperPtr(p.SurgicalHistory)
	upperPtr(p.GynecologicalHistory)
}

func upperPtr(s *string) {
	if s != nil {
		*s = strings.ToUpper(*s)
	}
}
