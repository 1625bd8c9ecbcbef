package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ultramed/clinic/internal/domain/settings"
)

func (h *Handler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.Settings())
}

// SaveSettings replaces the settings record wholesale. When the medications
// URL changes the catalog is refreshed in the background so the save itself
// never blocks on the remote endpoint.
func (h *Handler) SaveSettings(c echo.Context) error {
	var s settings.AppSettings
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	prevURL := h.app.Settings().MedicationsURL
	if err := h.app.SaveSettings(c.Request().Context(), s); err != nil {
		return httpError(err)
	}
	if s.MedicationsURL != prevURL {
		go h.refreshCatalog(s.MedicationsURL)
	}
	return c.JSON(http.StatusOK, h.app.Settings())
}

func (h *Handler) refreshCatalog(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	h.app.SetMedicationCatalog(h.fetcher.Fetch(ctx, url))
}

func (h *Handler) Medications(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.MedicationCatalog())
}
