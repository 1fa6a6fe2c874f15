package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations and implements
// booking.Store for the conflict engine.  All timestamp columns are stored
// in UTC; the connection is opened with parseTime and loc=UTC so DATETIME
// values scan directly into time.Time.
//
// The engine invokes the mutating methods only while holding the per-room
// guard, so the conflict scan and the subsequent write cannot interleave
// with another request for the same room.
type ReservationRepo struct {
	db    *sql.DB
	rooms *RoomRepo
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
// The room repository serves the engine's room lookups.
func NewReservationRepo(db *sql.DB, rooms *RoomRepo) *ReservationRepo {
	return &ReservationRepo{db: db, rooms: rooms}
}

// reservationCols is the column list shared by every reservation query.
const reservationCols = `id, user_id, room_id, start_time, end_time, title, description, participants, status, admin_notes, created_at, updated_at`

// scanReservation reads one reservation row into a model.  It works for
// both *sql.Row and *sql.Rows receivers.
func scanReservation(scan func(dest ...any) error) (*model.Reservation, error) {
	var (
		res         model.Reservation
		description sql.NullString
		adminNotes  sql.NullString
		status      string
	)
	err := scan(
		&res.ID, &res.UserID, &res.RoomID,
		&res.Interval.Start, &res.Interval.End,
		&res.Title, &description, &res.Participants,
		&status, &adminNotes,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Status = model.Status(status)
	if description.Valid {
		d := description.String
		res.Description = &d
	}
	if adminNotes.Valid {
		n := adminNotes.String
		res.AdminNotes = &n
	}
	return &res, nil
}

// GetRoom implements booking.Store, translating the repository sentinel
// into the engine's error vocabulary.
func (r *ReservationRepo) GetRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
	room, err := r.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, booking.ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// ListRooms implements booking.Store.
func (r *ReservationRepo) ListRooms(ctx context.Context) ([]model.Room, error) {
	return r.rooms.List(ctx)
}

// FindConflicts returns active reservations on roomID overlapping iv,
// excluding excludeID when non-zero.  The half-open overlap predicate
// (start < iv.end AND end > iv.start) matches model.Interval.Overlaps, so
// boundary-touching reservations do not conflict.
func (r *ReservationRepo) FindConflicts(ctx context.Context, roomID uint64, iv model.Interval, excludeID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + `
	           FROM reservations
	           WHERE room_id = ? AND id <> ?
	             AND status IN ('PENDING', 'APPROVED')
	             AND start_time < ? AND end_time > ?
	           ORDER BY start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, roomID, excludeID, iv.End.UTC(), iv.Start.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// CreateReservation inserts a reservation and reads the row back so the
// generated ID and DB-default timestamps are populated on the model.
func (r *ReservationRepo) CreateReservation(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, room_id, start_time, end_time, title, description, participants, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.UserID, res.RoomID,
		res.Interval.Start.UTC(), res.Interval.End.UTC(),
		res.Title, res.Description, res.Participants, string(res.Status),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	created, err := r.GetReservation(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = *created
	return nil
}

// GetReservation returns the reservation or booking.ErrReservationNotFound.
func (r *ReservationRepo) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// UpdateStatus sets the status and, when note is non-nil, replaces the
// admin note.  COALESCE keeps the previous note when none is supplied.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status model.Status, note *string) error {
	const q = `UPDATE reservations SET status = ?, admin_notes = COALESCE(?, admin_notes) WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, string(status), note, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateSchedule moves the reservation to a new interval and status in a
// single statement so a failed reschedule can never leave a half-applied
// change behind.
func (r *ReservationRepo) UpdateSchedule(ctx context.Context, id uint64, iv model.Interval, status model.Status, note *string) error {
	const q = `UPDATE reservations
	           SET start_time = ?, end_time = ?, status = ?, admin_notes = COALESCE(?, admin_notes)
	           WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, iv.Start.UTC(), iv.End.UTC(), string(status), note, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ListActiveForRoom returns the active reservations whose start falls on
// the UTC day containing day, ordered by start time ascending.
func (r *ReservationRepo) ListActiveForRoom(ctx context.Context, roomID uint64, day time.Time) ([]model.Reservation, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	const q = `SELECT ` + reservationCols + `
	           FROM reservations
	           WHERE room_id = ?
	             AND status IN ('PENDING', 'APPROVED')
	             AND start_time >= ? AND start_time < ?
	           ORDER BY start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, roomID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// requireRow converts a zero-row UPDATE into the engine's not-found error.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

// collectReservations drains a result set produced with reservationCols.
func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BookingDetail is a reservation joined with its room, returned to the
// requesting user for display.
type BookingDetail struct {
	model.Reservation
	RoomName     string `json:"room_name"`
	RoomCapacity uint32 `json:"room_capacity"`
}

// AdminBookingDetail extends BookingDetail with the requesting user's
// name and email for the administrator review list.
type AdminBookingDetail struct {
	BookingDetail
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// detailCols prefixes the reservation columns for joined queries.
const detailCols = `r.id, r.user_id, r.room_id, r.start_time, r.end_time, r.title, r.description, r.participants, r.status, r.admin_notes, r.created_at, r.updated_at`

// ListByUser returns all reservations created by the user together with
// room details, newest start first.  When no reservations exist an empty
// slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT ` + detailCols + `, rm.name, rm.capacity
	           FROM reservations r
	           JOIN rooms rm ON rm.id = r.room_id
	           WHERE r.user_id = ?
	           ORDER BY r.start_time DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		res, err := scanJoined(rows, &d.RoomName, &d.RoomCapacity)
		if err != nil {
			return nil, err
		}
		d.Reservation = *res
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetDetail returns a single reservation with room and requester details.
// When forUserID is non-zero the reservation must belong to that user;
// otherwise ErrForbidden is returned.  A missing reservation yields
// sql.ErrNoRows.
func (r *ReservationRepo) GetDetail(ctx context.Context, reservationID, forUserID uint64) (*AdminBookingDetail, error) {
	const q = `SELECT ` + detailCols + `, rm.name, rm.capacity, u.name, u.email
	           FROM reservations r
	           JOIN rooms rm ON rm.id = r.room_id
	           JOIN users u ON u.id = r.user_id
	           WHERE r.id = ?`
	row := r.db.QueryRowContext(ctx, q, reservationID)
	var d AdminBookingDetail
	res, err := scanReservation(func(dest ...any) error {
		return row.Scan(append(dest, &d.RoomName, &d.RoomCapacity, &d.UserName, &d.UserEmail)...)
	})
	if err != nil {
		return nil, err
	}
	if forUserID != 0 && res.UserID != forUserID {
		return nil, ErrForbidden
	}
	d.Reservation = *res
	return &d, nil
}

// ListForAdmin returns reservations for the administrator review list,
// optionally filtered by status and by the UTC day of their start time,
// ordered by start time ascending.
func (r *ReservationRepo) ListForAdmin(ctx context.Context, status *model.Status, date *time.Time) ([]AdminBookingDetail, error) {
	q := `SELECT ` + detailCols + `, rm.name, rm.capacity, u.name, u.email
	      FROM reservations r
	      JOIN rooms rm ON rm.id = r.room_id
	      JOIN users u ON u.id = r.user_id
	      WHERE 1=1`
	args := make([]any, 0, 3)
	if status != nil {
		q += ` AND r.status = ?`
		args = append(args, string(*status))
	}
	if date != nil {
		dayStart := date.UTC().Truncate(24 * time.Hour)
		q += ` AND r.start_time >= ? AND r.start_time < ?`
		args = append(args, dayStart, dayStart.Add(24*time.Hour))
	}
	q += ` ORDER BY r.start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]AdminBookingDetail, 0)
	for rows.Next() {
		var d AdminBookingDetail
		res, err := scanJoined(rows, &d.RoomName, &d.RoomCapacity, &d.UserName, &d.UserEmail)
		if err != nil {
			return nil, err
		}
		d.Reservation = *res
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// scanJoined scans a reservation row carrying extra joined columns.
func scanJoined(rows *sql.Rows, extra ...any) (*model.Reservation, error) {
	return scanReservation(func(dest ...any) error {
		return rows.Scan(append(dest, extra...)...)
	})
}

// DashboardStats aggregates the counters shown on the admin dashboard:
// total reservations, reservations awaiting review, and reservations
// starting during the current UTC day.
type DashboardStats struct {
	TotalBookings   int64 `json:"total_bookings"`
	PendingBookings int64 `json:"pending_bookings"`
	TodayBookings   int64 `json:"today_bookings"`
}

// Stats computes the dashboard counters.  now determines the "today"
// window so callers control the clock.
func (r *ReservationRepo) Stats(ctx context.Context, now time.Time) (DashboardStats, error) {
	var s DashboardStats
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations`).Scan(&s.TotalBookings); err != nil {
		return s, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE status = 'PENDING'`).Scan(&s.PendingBookings); err != nil {
		return s, err
	}
	dayStart := now.UTC().Truncate(24 * time.Hour)
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE start_time >= ? AND start_time < ?`,
		dayStart, dayStart.Add(24*time.Hour)).Scan(&s.TodayBookings); err != nil {
		return s, err
	}
	return s, nil
}
