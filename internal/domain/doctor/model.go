// Package doctor defines the clinician profile records gating all patient
// and consultation operations.
package doctor

import (
	"strings"

	"github.com/google/uuid"
)

// Doctor is a clinician profile. The password is a plain per-doctor gate for
// selecting the active session, not a security boundary. Doctors are never
// deleted; deletion is a deliberate non-goal of this system.
type Doctor struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	ProfessionalLicense string    `json:"professional_license"`
	University          string    `json:"university"`
	Diplomas            *string   `json:"diplomas,omitempty"`
	HasSpecialty        bool      `json:"has_specialty"`
	SpecialtyName       *string   `json:"specialty_name,omitempty"`
	SpecialtyLicense    *string   `json:"specialty_license,omitempty"`
	Password            string    `json:"password,omitempty"`
}

// Draft carries the fields of a doctor to be created. The identifier is
// assigned at creation time and never afterwards.
type Draft struct {
	Name                string  `json:"name"`
	ProfessionalLicense string  `json:"professional_license"`
	University          string  `json:"university"`
	Diplomas            *string `json:"diplomas,omitempty"`
	HasSpecialty        bool    `json:"has_specialty"`
	SpecialtyName       *string `json:"specialty_name,omitempty"`
	SpecialtyLicense    *string `json:"specialty_license,omitempty"`
	Password            string  `json:"password,omitempty"`
}

// Normalize upper-cases the free-text fields per the clinic's capture
// convention. The password is left untouched.
func (d *Draft) Normalize() {
	d.Name = strings.ToUpper(d.Name)
	d.ProfessionalLicense = strings.ToUpper(d.ProfessionalLicense)
	d.University = strings.ToUpper(d.University)
	upperPtr(d.Diplomas)
	upperPtr(d.SpecialtyName)
	upperPtr(d.SpecialtyLicense)
}

// Materialize builds a Doctor from the draft with a fresh identifier.
func (d Draft) Materialize() Doctor {
	return Doctor{
		ID:                  uuid.New(),
		Name:                d.Name,
		ProfessionalLicense: d.ProfessionalLicense,
		University:          d.University,
		Diplomas:            d.Diplomas,
		HasSpecialty:        d.HasSpecialty,
		SpecialtyName:       d.SpecialtyName,
		SpecialtyLicense:    d.SpecialtyLicense,
		Password:            d.Password,
	}
}

// Normalize upper-cases the free-text fields of an existing record before an
// in-place update.
func (d *Doctor) Normalize() {
	d.Name = strings.ToUpper(d.Name)
	d.ProfessionalLicense = strings.ToUpper(d.ProfessionalLicense)
	d.University = strings.ToUpper(d.University)
	upperPtr(d.Diplomas)
	upperPtr(d.SpecialtyName)
	upperPtr(d.SpecialtyLicense)
}

func upperPtr(s *string) {
	if s != nil {
		*s = strings.ToUpper(*s)
	}
}

// Default returns the doctor record materialized at first run when no doctor
// collection exists yet, so the login screen is never empty. The concrete
// values are deployment placeholders.
func Default() Doctor {
	diplomas := "COLPOSCOPIA, ULTRASONIDO MEDICO"
	return Doctor{
		ID:                  uuid.New(),
		Name:                "MEDICO GENERAL",
		ProfessionalLicense: "0000000",
		University:          "UNACH",
		Diplomas:            &diplomas,
		HasSpecialty:        false,
		Password:            "1234",
	}
}
