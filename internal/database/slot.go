package database

import "foodhub/internal/models"

// countOccupying counts how many existing wall-clock times fall strictly
// inside the overlap window around the requested time. Unparseable rows
// (legacy data) are skipped. Duplicate times each count on their own.
func countOccupying(times []string, requestedMinutes int) int {
	occupied := 0
	for _, t := range times {
		m, err := models.ClockMinutes(t)
		if err != nil {
			continue
		}
		diff := m - requestedMinutes
		if diff < 0 {
			diff = -diff
		}
		// Strictly less: a booking exactly OverlapMinutes away shares
		// no table with the requested slot.
		if diff < models.OverlapMinutes {
			occupied++
		}
	}
	return occupied
}
