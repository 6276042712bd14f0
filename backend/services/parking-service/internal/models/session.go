package models

import "time"

// Session represents one vehicle's stay, from entry to exit.
//
// A session is open iff Active is true and ExitAt is nil. Once closed it is
// never mutated again; Amount is set exactly once at close.
type Session struct {
	ID      string     `json:"id"`
	Plate   string     `json:"plate"`
	Active  bool       `json:"active"`
	EntryAt time.Time  `json:"entry_at"`
	ExitAt  *time.Time `json:"exit_at,omitempty"`
	Amount  float64    `json:"amount"`
}

// Open reports whether the session has no recorded exit.
func (s Session) Open() bool {
	return s.Active && s.ExitAt == nil
}
