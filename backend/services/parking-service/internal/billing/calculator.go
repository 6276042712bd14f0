// Package billing prices a parking stay from elapsed time and an hourly rate.
package billing

import (
	"errors"
	"math"
	"time"
)

// ErrExitBeforeEntry indicates the exit instant precedes the entry instant.
// Returned instead of a negative amount; the function is queried
// speculatively during fee preview.
var ErrExitBeforeEntry = errors.New("billing: exit before entry")

// Amount computes the fee for a stay. Any started hour is charged in full,
// with a minimum of one billed hour for sub-hour stays.
func Amount(perHour float64, entryAt, exitAt time.Time) (float64, error) {
	elapsed := exitAt.Sub(entryAt)
	if elapsed < 0 {
		return 0, ErrExitBeforeEntry
	}
	hours := BilledHours(elapsed)
	return float64(hours) * perHour, nil
}

// BilledHours converts elapsed time to whole billed hours:
// max(1, ceil(elapsed / 1h)).
func BilledHours(elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return 1
	}
	hours := int64(math.Ceil(elapsed.Hours()))
	if hours < 1 {
		return 1
	}
	return hours
}
