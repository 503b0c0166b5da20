package database

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a row id does not exist.
	ErrNotFound = errors.New("record not found")
)

// CapacityError rejects a dine-in booking because every table around the
// requested slot is taken.
type CapacityError struct {
	Date     string
	Time     string
	Occupied int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("no tables available around %s on %s: all %d tables are reserved within the 2-hour window",
		e.Time, e.Date, e.Occupied)
}
