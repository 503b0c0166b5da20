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

// ArchiveAndDelete snapshots a reservation into archived_reservations
// and removes the active row, both inside one transaction. Deleting
// without archiving first is never allowed.
func (db *DB) ArchiveAndDelete(ctx context.Context, id int64, reason string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to fetch reservation for archive: %w", err)
	}

	var menuItems sql.NullString
	if len(res.MenuItems) > 0 {
		raw, mErr := json.Marshal(res.MenuItems)
		if mErr != nil {
			return 0, fmt.Errorf("failed to marshal menu items: %w", mErr)
		}
		menuItems = sql.NullString{String: string(raw), Valid: true}
	}

	insert := `INSERT INTO archived_reservations (
                original_id, name, email, phone, date, time, people, occasion, meal_type,
                payment_mode, payment_status, message, status, delivery_option,
                menu_items, delivery_address, created_at, archived_at, archived_reason
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insert,
		res.ID, res.Name, res.Email, res.Phone, res.Date, res.Time, res.People,
		res.Occasion, res.MealType, res.PaymentMode, res.PaymentStatus, res.Message,
		res.Status, res.DeliveryOption, menuItems, res.DeliveryAddress, res.CreatedAt,
		time.Now(), reason,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert archive row: %w", err)
	}
	archivedID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get archive id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to delete reservation after archive: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit archive: %w", err)
	}
	return archivedID, nil
}

// GetArchivedByOriginalID returns the most recent archive snapshot of a
// deleted reservation.
func (db *DB) GetArchivedByOriginalID(ctx context.Context, originalID int64) (*models.ArchivedReservation, error) {
	query := `SELECT id, original_id, name, email, phone, date, time, people, occasion, meal_type,
                     payment_mode, payment_status, message, status, delivery_option,
                     menu_items, delivery_address, created_at, archived_at, archived_reason
              FROM archived_reservations WHERE original_id = ? ORDER BY archived_at DESC, id DESC LIMIT 1`

	var a models.ArchivedReservation
	var occasion, mealType, message, deliveryOption, menuItems, deliveryAddress, reason sql.NullString
	err := db.QueryRowContext(ctx, query, originalID).Scan(
		&a.ID, &a.OriginalID, &a.Reservation.Name, &a.Reservation.Email, &a.Reservation.Phone,
		&a.Reservation.Date, &a.Reservation.Time, &a.Reservation.People,
		&occasion, &mealType, &a.Reservation.PaymentMode, &a.Reservation.PaymentStatus,
		&message, &a.Reservation.Status, &deliveryOption, &menuItems, &deliveryAddress,
		&a.Reservation.CreatedAt, &a.ArchivedAt, &reason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archived reservation: %w", err)
	}
	a.Reservation.Occasion = occasion.String
	a.Reservation.MealType = mealType.String
	a.Reservation.Message = message.String
	a.Reservation.DeliveryOption = deliveryOption.String
	a.Reservation.DeliveryAddress = deliveryAddress.String
	a.ArchivedReason = reason.String
	if menuItems.Valid && menuItems.String != "" {
		if err := json.Unmarshal([]byte(menuItems.String), &a.Reservation.MenuItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal archived menu items: %w", err)
		}
	}
	return &a, nil
}
