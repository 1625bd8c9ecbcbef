package app

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ultramed/clinic/internal/domain/consultation"
	"github.com/ultramed/clinic/internal/domain/patient"
	"github.com/ultramed/clinic/pkg/dates"
)

// Read models over the collections. All of these are pure projections scoped
// to the active doctor's records; none of them mutate state. With no active
// session they return empty results.

// SearchPatients returns the active doctor's roster filtered by a
// case-insensitive substring match on the patient name, alphabetically
// sorted. An empty query returns the whole roster.
func (a *App) SearchPatients(query string) []patient.Patient {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentDoctor == nil {
		return []patient.Patient{}
	}

	out := make([]patient.Patient, 0)
	for _, p := range a.patients {
		if p.DoctorID == a.currentDoctor.ID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if query == "" {
		return out
	}
	q := strings.ToLower(query)
	filtered := out[:0]
	for _, p := range out {
		if strings.Contains(strings.ToLower(p.Name), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// PatientConsultations returns every consultation for the identified patient,
// most recent first.
func (a *App) PatientConsultations(patientID uuid.UUID) []consultation.Consultation {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]consultation.Consultation, 0)
	for _, c := range a.consultations {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// TodaysAppointments returns the active doctor's consultations whose next
// appointment, read as a local calendar date, falls on the reference day.
func (a *App) TodaysAppointments(now time.Time) []consultation.Consultation {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentDoctor == nil {
		return []consultation.Consultation{}
	}
	today := dates.Truncate(now)

	out := make([]consultation.Consultation, 0)
	for _, c := range a.consultations {
		if c.DoctorID != a.currentDoctor.ID || c.NextAppointment == nil {
			continue
		}
		d, err := dates.ParseLocalDate(*c.NextAppointment)
		if err != nil {
			continue
		}
		if d.Equal(today) {
			out = append(out, c)
		}
	}
	return out
}

// UpcomingAppointments returns the active doctor's consultations with a next
// appointment on or after the reference day, soonest first.
func (a *App) UpcomingAppointments(now time.Time) []consultation.Consultation {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentDoctor == nil {
		return []consultation.Consultation{}
	}
	today := dates.Truncate(now)

	type dated struct {
		c    consultation.Consultation
		when time.Time
	}
	var hits []dated
	for _, c := range a.consultations {
		if c.DoctorID != a.currentDoctor.ID || c.NextAppointment == nil {
			continue
		}
		d, err := dates.ParseLocalDate(*c.NextAppointment)
		if err != nil {
			continue
		}
		if !d.Before(today) {
			hits = append(hits, dated{c: c, when: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].when.Before(hits[j].when) })

	out := make([]consultation.Consultation, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.c)
	}
	return out
}

// AgeBucket is one demographics age band.
type AgeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Demographics aggregates the active doctor's roster by gender and age band.
type Demographics struct {
	Total      int                    `json:"total"`
	ByGender   map[patient.Gender]int `json:"by_gender"`
	AgeBuckets []AgeBucket            `json:"age_buckets"`
}

var ageBands = []struct {
	label    string
	min, max int
}{
	{"0-17", 0, 17},
	{"18-29", 18, 29},
	{"30-44", 30, 44},
	{"45-59", 45, 59},
	{"60+", 60, 200},
}

// DemographicsReport aggregates the active doctor's roster at the reference
// time.
func (a *App) DemographicsReport(now time.Time) Demographics {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := Demographics{
		ByGender:   make(map[patient.Gender]int),
		AgeBuckets: make([]AgeBucket, len(ageBands)),
	}
	for i, band := range ageBands {
		report.AgeBuckets[i] = AgeBucket{Label: band.label}
	}
	if a.currentDoctor == nil {
		return report
	}

	for _, p := range a.patients {
		if p.DoctorID != a.currentDoctor.ID {
			continue
		}
		report.Total++
		report.ByGender[p.Gender]++
		age := dates.AgeInYears(p.DOB, now)
		for i, band := range ageBands {
			if age >= band.min && age <= band.max {
				report.AgeBuckets[i].Count++
				break
			}
		}
	}
	return report
}
