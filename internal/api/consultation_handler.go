package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ultramed/clinic/internal/domain/consultation"
)

func (h *Handler) CreateConsultation(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var draft consultation.Draft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.app.AddConsultation(c.Request().Context(), patientID, draft)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateConsultation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var record consultation.Consultation
	if err := c.Bind(&record); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	record.ID = id
	updated, err := h.app.UpdateConsultation(c.Request().Context(), record)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}
