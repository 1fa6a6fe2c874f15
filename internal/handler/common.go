package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel comparisons for engine failures
	"net/http"
	"strconv" // strconv converts strings to numeric types
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
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

// getPrincipal builds the engine's caller identity from the JWT claims the
// middleware stored in context.
func getPrincipal(c echo.Context) (model.Principal, error) {
	id, err := getUserID(c)
	if err != nil {
		return model.Principal{}, err
	}
	role, _ := c.Get("role").(string)
	return model.Principal{ID: id, Role: strings.ToUpper(role)}, nil
}

// engineError translates a booking engine failure into the JSON error
// response for that request.  Validation problems map to 400, missing
// entities to 404, conflicts and lifecycle violations to 409, capability
// failures to 403 and guard timeouts to 503 with a Retry-After hint —
// the only case a client should retry.
func engineError(c echo.Context, err error) error {
	switch {
	case booking.IsValidation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, booking.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, booking.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot conflicts with an existing booking"})
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is already cancelled"})
	case errors.Is(err, booking.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking state does not allow this operation"})
	case errors.Is(err, booking.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrBusy):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "room is busy, retry shortly"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
