package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodhub/internal/models"
)

const reservationColumns = `id, name, email, phone, date, time, people, occasion, meal_type,
               payment_mode, payment_status, message, status, delivery_option,
               menu_items, delivery_address, created_at`

// CreateReservation inserts without any capacity check. Used for
// takeaway and delivery orders, which have unconstrained capacity.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return db.insertReservation(ctx, db.DB, r)
}

// CreateDineInWithSlotLock re-checks table occupancy and inserts inside
// one transaction, serialized by a process-wide mutex. The original
// check-then-insert was split across an await point and could overbook
// the last table; the mutex plus transaction closes that gap.
func (db *DB) CreateDineInWithSlotLock(ctx context.Context, r *models.Reservation) error {
	requested, err := models.ClockMinutes(r.Time)
	if err != nil {
		return err
	}

	db.slotMu.Lock()
	defer db.slotMu.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	times, err := dineInTimes(ctx, tx, r.Date)
	if err != nil {
		return err
	}

	occupied := countOccupying(times, requested)
	if occupied >= models.TotalTables {
		return &CapacityError{Date: r.Date, Time: r.Time, Occupied: occupied}
	}

	if err := db.insertReservation(ctx, tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

// CountOccupiedTables returns the occupancy around a slot without
// inserting. Advisory only; the create path re-checks under the lock.
func (db *DB) CountOccupiedTables(ctx context.Context, date, clock string) (int, error) {
	requested, err := models.ClockMinutes(clock)
	if err != nil {
		return 0, err
	}
	times, err := dineInTimes(ctx, db.DB, date)
	if err != nil {
		return 0, err
	}
	return countOccupying(times, requested), nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// dineInTimes fetches the wall-clock times of every non-cancelled
// dine-in (or unset mode) reservation on a date.
func dineInTimes(ctx context.Context, q querier, date string) ([]string, error) {
	query := `SELECT time FROM reservations
              WHERE date = ? AND status != ?
              AND (delivery_option IS NULL OR delivery_option = '' OR delivery_option = ?)`
	rows, err := q.QueryContext(ctx, query, date, models.StatusCancelled, models.ModeDineIn)
	if err != nil {
		return nil, fmt.Errorf("failed to get dine-in times: %w", err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (db *DB) insertReservation(ctx context.Context, e execer, r *models.Reservation) error {
	var menuItems sql.NullString
	if len(r.MenuItems) > 0 {
		raw, err := json.Marshal(r.MenuItems)
		if err != nil {
			return fmt.Errorf("failed to marshal menu items: %w", err)
		}
		menuItems = sql.NullString{String: string(raw), Valid: true}
	}

	query := `INSERT INTO reservations (
                name, email, phone, date, time, people, occasion, meal_type,
                payment_mode, payment_status, message, status, delivery_option,
                menu_items, delivery_address, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := e.ExecContext(ctx, query,
		r.Name,
		r.Email,
		r.Phone,
		r.Date,
		r.Time,
		r.People,
		r.Occasion,
		r.MealType,
		r.PaymentMode,
		r.PaymentStatus,
		r.Message,
		r.Status,
		r.DeliveryOption,
		menuItems,
		r.DeliveryAddress,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var res models.Reservation
	var occasion, mealType, message, deliveryOption, menuItems, deliveryAddress sql.NullString
	err := row.Scan(
		&res.ID, &res.Name, &res.Email, &res.Phone, &res.Date, &res.Time, &res.People,
		&occasion, &mealType, &res.PaymentMode, &res.PaymentStatus, &message,
		&res.Status, &deliveryOption, &menuItems, &deliveryAddress, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Occasion = occasion.String
	res.MealType = mealType.String
	res.Message = message.String
	res.DeliveryOption = deliveryOption.String
	res.DeliveryAddress = deliveryAddress.String
	if menuItems.Valid && menuItems.String != "" {
		if err := json.Unmarshal([]byte(menuItems.String), &res.MenuItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal menu items for reservation %d: %w", res.ID, err)
		}
	}
	return &res, nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

// ListReservations returns newest-first. Cancelled rows stay in the
// store but are hidden from the active admin list unless requested.
func (db *DB) ListReservations(ctx context.Context, includeCancelled bool) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	args := []any{}
	if !includeCancelled {
		query += ` WHERE status != ?`
		args = append(args, models.StatusCancelled)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// UpdateReservation overwrites the admin-editable fields of a row.
func (db *DB) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	query := `UPDATE reservations SET name = ?, email = ?, phone = ?, date = ?, time = ?,
              people = ?, occasion = ?, meal_type = ?, message = ?,
              payment_mode = ?, payment_status = ?, status = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		r.Name, r.Email, r.Phone, r.Date, r.Time,
		r.People, r.Occasion, r.MealType, r.Message,
		r.PaymentMode, r.PaymentStatus, r.Status, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	result, err := db.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid sets payment_status=paid and status=confirmed in one statement.
func (db *DB) MarkPaid(ctx context.Context, id int64) error {
	query := `UPDATE reservations SET payment_status = ?, status = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, models.PaymentPaid, models.StatusConfirmed, id)
	if err != nil {
		return fmt.Errorf("failed to mark reservation paid: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
