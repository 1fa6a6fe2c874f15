package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/room-reservation/internal/service"
)

// AdminBookingHandler serves the administrator review endpoints: the
// filterable booking list, the approve/reject decision, the reschedule
// operation and the dashboard counters.  The routes sit behind the ADMIN
// role middleware; the engine re-checks the role on every state change.
type AdminBookingHandler struct {
	Engine       *booking.Engine
	Reservations *repository.ReservationRepo
	Users        *repository.UserRepo
}

func NewAdminBookingHandler(engine *booking.Engine, reservations *repository.ReservationRepo, users *repository.UserRepo) *AdminBookingHandler {
	return &AdminBookingHandler{Engine: engine, Reservations: reservations, Users: users}
}

// List returns all reservations with requester and room details, optionally
// filtered by `status` and by the UTC day of `date` (YYYY-MM-DD).
func (h *AdminBookingHandler) List(c echo.Context) error {
	var statusFilter *model.Status
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		st, ok := model.ParseStatus(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
		}
		statusFilter = &st
	}
	var dateFilter *time.Time
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
		}
		dateFilter = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Reservations.ListForAdmin(ctx, statusFilter, dateFilter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

type statusReq struct {
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

// SetStatus moves a reservation to the given status, typically APPROVED or
// REJECTED, and records the optional note.  The decision is published to
// the broker after the write; a broker outage never fails the request.
func (h *AdminBookingHandler) SetStatus(c echo.Context) error {
	p, err := getPrincipal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	st, ok := model.ParseStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.SetStatus(ctx, p, id, st, req.Note)
	if err != nil {
		return engineError(c, err)
	}
	h.publishDecision(ctx, res)
	return c.JSON(http.StatusOK, res)
}

type rescheduleReq struct {
	StartTime string  `json:"start_time"` // RFC 3339
	EndTime   string  `json:"end_time"`   // RFC 3339
	Note      *string `json:"note"`
}

// Reschedule moves a reservation to a new slot and approves it.  The engine
// re-runs the availability check for the new interval with the reservation
// itself excluded, so moving a booking within its own slot always works.
func (h *AdminBookingHandler) Reschedule(c echo.Context) error {
	p, err := getPrincipal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req rescheduleReq
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

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.Reschedule(ctx, p, id, model.NewInterval(start, end), req.Note)
	if err != nil {
		return engineError(c, err)
	}
	h.publishDecision(ctx, res)
	return c.JSON(http.StatusOK, res)
}

// Dashboard returns the aggregate counters for the admin landing page.
func (h *AdminBookingHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Reservations.Stats(ctx, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	users, err := h.Users.CountByRole(ctx, model.RoleUser)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_bookings":   stats.TotalBookings,
		"pending_bookings": stats.PendingBookings,
		"today_bookings":   stats.TodayBookings,
		"total_users":      users,
	})
}

// publishDecision emits a reservation.decided event for the given
// reservation.  Failures are logged by the publisher and ignored here.
func (h *AdminBookingHandler) publishDecision(ctx context.Context, res *model.Reservation) {
	ev := queue.ReservationDecidedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		Title:         res.Title,
		StartsAt:      res.Interval.Start.UTC().Format(time.RFC3339),
		EndsAt:        res.Interval.End.UTC().Format(time.RFC3339),
		Status:        string(res.Status),
		DecidedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if res.AdminNotes != nil {
		ev.AdminNote = *res.AdminNotes
	}
	if room, err := h.Reservations.GetRoom(ctx, res.RoomID); err == nil {
		ev.RoomName = room.Name
	}
	_ = queue_publisher.PublishReservationDecided(ctx, ev)
}
