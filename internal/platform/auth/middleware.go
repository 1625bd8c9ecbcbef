package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DoctorIDKey is the echo context key under which RequireSession stores the
// authenticated doctor's identifier.
const DoctorIDKey = "doctor_id"

// RequireSession rejects requests without a valid Bearer session token and
// stores the token's doctor id on the context for handlers.
func RequireSession(m *SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}
			doctorID, err := m.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}
			c.Set(DoctorIDKey, doctorID)
			return next(c)
		}
	}
}

// DoctorIDFromContext returns the authenticated doctor's id stored by
// RequireSession.
func DoctorIDFromContext(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(DoctorIDKey).(uuid.UUID)
	return id, ok
}
