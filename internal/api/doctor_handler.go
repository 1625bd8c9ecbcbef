package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ultramed/clinic/internal/domain/doctor"
)

// scrub blanks the password before a doctor record leaves the API.
func scrub(d doctor.Doctor) doctor.Doctor {
	d.Password = ""
	return d
}

func (h *Handler) ListDoctors(c echo.Context) error {
	docs := h.app.Doctors()
	out := make([]doctor.Doctor, 0, len(docs))
	for _, d := range docs {
		out = append(out, scrub(d))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var draft doctor.Draft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.app.AddDoctor(c.Request().Context(), draft)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, scrub(doc))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d doctor.Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	updated, err := h.app.UpdateDoctor(c.Request().Context(), d)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, scrub(updated))
}

type loginRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Password string    `json:"password"`
}

type loginResponse struct {
	Token  string        `json:"token"`
	Doctor doctor.Doctor `json:"doctor"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.app.Login(req.DoctorID, req.Password)
	if err != nil {
		return httpError(err)
	}
	token, err := h.sessions.Issue(doc.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Doctor: scrub(doc)})
}

func (h *Handler) Logout(c echo.Context) error {
	h.app.Logout()
	return c.NoContent(http.StatusNoContent)
}

type sessionResponse struct {
	Doctor          *doctor.Doctor `json:"doctor,omitempty"`
	SelectedPatient interface{}    `json:"selected_patient,omitempty"`
}

func (h *Handler) Session(c echo.Context) error {
	var resp sessionResponse
	if doc, ok := h.app.CurrentDoctor(); ok {
		s := scrub(doc)
		resp.Doctor = &s
	}
	if p, ok := h.app.SelectedPatient(); ok {
		resp.SelectedPatient = p
	}
	return c.JSON(http.StatusOK, resp)
}
