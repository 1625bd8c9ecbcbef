package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (h *Handler) TodaysAppointments(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.TodaysAppointments(time.Now()))
}

func (h *Handler) UpcomingAppointments(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.UpcomingAppointments(time.Now()))
}

func (h *Handler) Demographics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.DemographicsReport(time.Now()))
}
