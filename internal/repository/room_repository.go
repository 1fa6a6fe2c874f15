package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo provides CRUD operations for rooms.  Rooms are administered
// through the admin endpoints; the booking engine only reads them.  Room
// names are unique, which the repository enforces both up front and via
// the database's unique index.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *RoomRepo) DB() *sql.DB { return r.db }

// Create inserts a new room and populates the generated ID and timestamp
// fields on the given model.  A duplicate name yields ErrConflict.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	room.Name = strings.TrimSpace(room.Name)
	const q = `INSERT INTO rooms (name, capacity) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Capacity)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT id, name, capacity, created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, room.ID).Scan(
		&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt,
	)
}

// GetByID retrieves a room by its ID.  It returns ErrRoomNotFound if
// there is no matching row.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT id, name, capacity, created_at, updated_at FROM rooms WHERE id = ?`
	var room model.Room
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// NameTaken reports whether another room (any room when excludeID is zero)
// already uses this name.
func (r *RoomRepo) NameTaken(ctx context.Context, name string, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM rooms WHERE name = ? AND id <> ?`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, strings.TrimSpace(name), excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns all rooms ordered by name ascending.  When no rooms exist
// it returns an empty slice and nil error.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT id, name, capacity, created_at, updated_at FROM rooms ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update changes a room's name and capacity.  A name collision with a
// different room yields ErrConflict; a missing room yields ErrRoomNotFound.
// The updated row is read back into the given model.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	room.Name = strings.TrimSpace(room.Name)
	const q = `UPDATE rooms SET name = ?, capacity = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Capacity, room.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the row is absent or nothing changed; distinguish by lookup.
		if _, getErr := r.GetByID(ctx, room.ID); getErr != nil {
			return getErr
		}
	}
	const sel = `SELECT id, name, capacity, created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, room.ID).Scan(
		&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt,
	)
}

// CountReservations returns how many reservations, in any status,
// reference the room.  Deletion is refused while this is non-zero.
func (r *RoomRepo) CountReservations(ctx context.Context, roomID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE room_id = ?`, roomID).Scan(&n)
	return n, err
}

// Delete removes a room.  It returns ErrConflict when any reservation
// still references the room and ErrRoomNotFound when the room is absent.
// Rejected and cancelled reservations also block deletion: they are kept
// for audit and must keep a valid room reference.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	n, err := r.CountReservations(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRoomNotFound
	}
	return nil
}
