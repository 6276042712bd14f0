package repository

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"parkgate/backend/services/parking-service/internal/models"
	"parkgate/backend/services/parking-service/internal/timeparse"
)

// Document field names. "active" and "entryAt"/"exitAt" are the canonical
// schema; "status" and "entryTime" were written by older clients.
const (
	fieldPlate     = "plate"
	fieldActive    = "active"
	fieldStatus    = "status"
	fieldEntryAt   = "entryAt"
	fieldEntryTime = "entryTime"
	fieldExitAt    = "exitAt"
	fieldAmount    = "amount"

	statusActive = "active"
)

// SessionDoc is one raw session document as stored, before schema
// reconciliation.
type SessionDoc struct {
	ID  string
	Doc map[string]interface{}
}

// Active classifies the document as an open session across the three
// historical schema shapes: the canonical boolean flag, the legacy status
// string, or (for the oldest shape, which had no flag at all) the mere
// absence of an exit instant.
func (d SessionDoc) Active() bool {
	if flag, ok := d.Doc[fieldActive].(bool); ok && flag {
		return true
	}
	if status, ok := d.Doc[fieldStatus].(string); ok && status == statusActive {
		return true
	}
	_, hasFlag := d.Doc[fieldActive]
	_, hasStatus := d.Doc[fieldStatus]
	if hasFlag || hasStatus {
		return false
	}
	exit, ok := d.Doc[fieldExitAt]
	return !ok || exit == nil
}

// Session maps the raw document to the canonical session view.
func (d SessionDoc) Session() models.Session {
	s := models.Session{
		ID:     d.ID,
		Active: d.Active(),
	}
	if p, ok := d.Doc[fieldPlate].(string); ok {
		s.Plate = strings.ToUpper(p)
	}
	entryRaw := d.Doc[fieldEntryAt]
	if entryRaw == nil {
		entryRaw = d.Doc[fieldEntryTime]
	}
	s.EntryAt = timeparse.InstantOrZero(entryRaw)
	if exitRaw, ok := d.Doc[fieldExitAt]; ok && exitRaw != nil {
		if t, ok := timeparse.Instant(exitRaw); ok {
			s.ExitAt = &t
		}
	}
	if amount, ok := Numeric(d.Doc[fieldAmount]); ok {
		s.Amount = amount
	}
	return s
}

// Merge folds batches of documents into one view keyed by id. An id already
// seen in an earlier batch is never overridden by a later one.
func Merge(batches ...[]SessionDoc) map[string]SessionDoc {
	merged := make(map[string]SessionDoc)
	for _, batch := range batches {
		for _, doc := range batch {
			if _, seen := merged[doc.ID]; !seen {
				merged[doc.ID] = doc
			}
		}
	}
	return merged
}

// SortByEntryDesc orders sessions most recently entered first. Sessions
// whose entry instant could not be parsed carry the zero time and sort last.
func SortByEntryDesc(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].EntryAt.After(sessions[j].EntryAt)
	})
}

// Numeric coerces a decoded JSON value into a float64, accepting both
// native numbers and numeric strings. Historical ledger records mix the two.
func Numeric(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
