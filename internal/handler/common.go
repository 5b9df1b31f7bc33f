package handler // HTTP handlers for the appointment API

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/schedule"
)

// getUserID extracts the authenticated user id placed in the context by the
// JWT middleware. Claims decode as float64, but the helper tolerates the
// other numeric shapes too.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getEmail returns the authenticated user's email claim, or "".
func getEmail(c echo.Context) string {
	if s, ok := c.Get("email").(string); ok {
		return s
	}
	return ""
}

// pathID parses a numeric path parameter. Zero is treated as invalid.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// scheduleError maps engine sentinels onto HTTP responses. Validation
// failures are 400, missing entities 404, ownership violations 403 and
// state collisions 409.
func scheduleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, schedule.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrWrongProvider), errors.Is(err, schedule.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrOverlap),
		errors.Is(err, schedule.ErrSlotUnavailable),
		errors.Is(err, schedule.ErrSlotInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrInvalidInterval),
		errors.Is(err, schedule.ErrInPast),
		errors.Is(err, schedule.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
