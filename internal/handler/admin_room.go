package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// AdminRoomHandler serves the room management endpoints.  The routes are
// registered behind the ADMIN role middleware, so no per-handler role check
// is needed here.
type AdminRoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewAdminRoomHandler(rooms *repository.RoomRepo) *AdminRoomHandler {
	return &AdminRoomHandler{Rooms: rooms}
}

type roomReq struct {
	Name     string `json:"name"`
	Capacity uint32 `json:"capacity"`
}

// validate normalizes and checks the request fields shared by create and
// update.  It returns a human-readable reason when the request is bad.
func (r *roomReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name is required"
	}
	if r.Capacity < 1 || r.Capacity > model.RoomCapacityMax {
		return "capacity must be between 1 and " + strconv.Itoa(model.RoomCapacityMax)
	}
	return ""
}

// Create adds a room.  Room names are unique.
func (h *AdminRoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if reason := req.validate(); reason != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": reason})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	taken, err := h.Rooms.NameTaken(ctx, req.Name, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
	}

	room := &model.Room{Name: req.Name, Capacity: req.Capacity}
	if err := h.Rooms.Create(ctx, room); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, room)
}

// Update changes a room's name or capacity.  Shrinking the capacity does
// not touch existing reservations; they were accepted against the capacity
// in effect at booking time.
func (h *AdminRoomHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if reason := req.validate(); reason != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": reason})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	taken, err := h.Rooms.NameTaken(ctx, req.Name, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
	}

	room := &model.Room{ID: id, Name: req.Name, Capacity: req.Capacity}
	if err := h.Rooms.Update(ctx, room); err != nil {
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, room)
}

// Delete removes a room that has no reservations at all.  Rooms with
// reservation history, including rejected and cancelled ones, cannot be
// deleted because the rows are kept for audit.
func (h *AdminRoomHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has reservations and cannot be deleted"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
