package models

import "time"

// Payment is one immutable ledger record for a settled session.
type Payment struct {
	Plate     string    `json:"plate"`
	EntryID   string    `json:"entry_id"`
	EntryAt   time.Time `json:"entry_at"`
	ExitAt    time.Time `json:"exit_at"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// DailySummary is the reduction of the ledger over one day window.
type DailySummary struct {
	Date  string  `json:"date"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}
