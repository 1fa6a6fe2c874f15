package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// RoomHandler serves the read-only room endpoints available to every
// authenticated user: the room list, a single room, the day schedule of a
// room and the free-room search for an interval.
type RoomHandler struct {
	Rooms  *repository.RoomRepo
	Engine *booking.Engine
}

func NewRoomHandler(rooms *repository.RoomRepo, engine *booking.Engine) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Engine: engine}
}

// List returns all rooms ordered by name.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// Get returns a single room by ID.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, room)
}

// Availability returns the active reservations of a room for one calendar
// day (UTC) so clients can render the day grid.  The date path parameter
// uses the YYYY-MM-DD form.
func (h *RoomHandler) Availability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	day, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reservations, err := h.Engine.ListActiveForRoom(ctx, id, day)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_id":      id,
		"date":         day.Format("2006-01-02"),
		"reservations": reservations,
	})
}

// Available returns the rooms free for the whole interval given by the
// `start` and `end` query parameters (RFC 3339).  A room occupied for any
// part of the interval is excluded; back-to-back bookings that merely touch
// the boundary do not count as occupied.
func (h *RoomHandler) Available(c echo.Context) error {
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start, expected RFC 3339"})
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end, expected RFC 3339"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Engine.FindAvailableRooms(ctx, model.NewInterval(start, end))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}
