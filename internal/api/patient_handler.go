package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ultramed/clinic/internal/domain/consultation"
	"github.com/ultramed/clinic/internal/domain/patient"
)

func (h *Handler) SearchPatients(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.SearchPatients(c.QueryParam("q")))
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var draft patient.Draft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.app.AddPatient(c.Request().Context(), draft)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

type patientDetail struct {
	Patient       patient.Patient             `json:"patient"`
	Consultations []consultation.Consultation `json:"consultations"`
}

func (h *Handler) PatientDetail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.app.SelectPatient(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, patientDetail{
		Patient:       p,
		Consultations: h.app.PatientConsultations(p.ID),
	})
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p patient.Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	updated, err := h.app.UpdatePatient(c.Request().Context(), p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) SelectPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.app.SelectPatient(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ClearSelectedPatient(c echo.Context) error {
	h.app.ClearSelectedPatient()
	return c.NoContent(http.StatusNoContent)
}
