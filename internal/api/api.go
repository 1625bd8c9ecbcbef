// Package api exposes the clinic application state over HTTP: doctor login,
// roster and consultation management, settings and the read-only reports.
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ultramed/clinic/internal/app"
	"github.com/ultramed/clinic/internal/platform/auth"
	"github.com/ultramed/clinic/internal/platform/catalog"
)

type Handler struct {
	app      *app.App
	sessions *auth.SessionManager
	fetcher  *catalog.Fetcher
	logger   zerolog.Logger
}

func NewHandler(a *app.App, sessions *auth.SessionManager, fetcher *catalog.Fetcher, logger zerolog.Logger) *Handler {
	return &Handler{app: a, sessions: sessions, fetcher: fetcher, logger: logger}
}

// RegisterRoutes wires the API onto the echo instance. Everything past login
// requires a session token.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	v1 := e.Group("/api/v1")
	v1.GET("/doctors", h.ListDoctors)
	v1.POST("/doctors", h.CreateDoctor)
	v1.PUT("/doctors/:id", h.UpdateDoctor)
	v1.POST("/login", h.Login)

	guarded := v1.Group("", auth.RequireSession(h.sessions))
	guarded.POST("/logout", h.Logout)
	guarded.GET("/session", h.Session)

	guarded.GET("/patients", h.SearchPatients)
	guarded.POST("/patients", h.CreatePatient)
	guarded.GET("/patients/:id", h.PatientDetail)
	guarded.PUT("/patients/:id", h.UpdatePatient)
	guarded.POST("/patients/:id/select", h.SelectPatient)
	guarded.DELETE("/session/patient", h.ClearSelectedPatient)

	guarded.POST("/patients/:id/consultations", h.CreateConsultation)
	guarded.PUT("/consultations/:id", h.UpdateConsultation)

	guarded.GET("/reports/appointments/today", h.TodaysAppointments)
	guarded.GET("/reports/appointments/upcoming", h.UpcomingAppointments)
	guarded.GET("/reports/demographics", h.Demographics)

	guarded.GET("/settings", h.GetSettings)
	guarded.PUT("/settings", h.SaveSettings)
	guarded.GET("/medications", h.Medications)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": "0.1.0",
	})
}

// httpError maps application errors onto HTTP statuses. Bad credentials and
// a missing session are the caller's problem; unknown identifiers are 404;
// anything else from validation is a 400.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, app.ErrBadCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrNoActiveDoctor):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
