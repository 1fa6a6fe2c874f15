package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// BookingHandler serves the user-facing reservation endpoints.  State
// changes go through the booking engine, which owns validation, the
// per-room guard and the conflict check; this layer only translates HTTP
// to engine calls.
type BookingHandler struct {
	Engine       *booking.Engine
	Reservations *repository.ReservationRepo
}

func NewBookingHandler(engine *booking.Engine, reservations *repository.ReservationRepo) *BookingHandler {
	return &BookingHandler{Engine: engine, Reservations: reservations}
}

type createBookingReq struct {
	RoomID       uint64  `json:"room_id"`
	StartTime    string  `json:"start_time"` // RFC 3339
	EndTime      string  `json:"end_time"`   // RFC 3339
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Participants uint32  `json:"participants"`
}

// Create books a room for the requesting user.  The reservation starts in
// PENDING and waits for administrator review; the slot is already held
// against other requests from the moment this returns 201.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time, expected RFC 3339"})
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time, expected RFC 3339"})
	}
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		if trimmed == "" {
			req.Description = nil
		} else {
			req.Description = &trimmed
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.CreateReservation(ctx, uid, req.RoomID,
		model.NewInterval(start, end), req.Participants, req.Title, req.Description)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ListMine returns every reservation the user has made, newest first,
// including rejected and cancelled ones.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Get returns one reservation with room details.  Users see only their own
// reservations; administrators may fetch any.
func (h *BookingHandler) Get(c echo.Context) error {
	p, err := getPrincipal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	forUser := p.ID
	if p.IsAdmin() {
		forUser = 0 // admins bypass the ownership filter
	}
	detail, err := h.Reservations.GetDetail(ctx, id, forUser)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Cancel withdraws a reservation before it starts.  The engine enforces
// ownership, the lifecycle guards and the not-yet-started rule.
func (h *BookingHandler) Cancel(c echo.Context) error {
	p, err := getPrincipal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.CancelReservation(ctx, p, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
