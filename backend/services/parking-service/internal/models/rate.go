package models

// RateKey is the canonical document key of the single current hourly rate.
// Legacy deployments hold unkeyed rate documents in the same collection;
// those are read-only fallback sources.
const RateKey = "current"

// RateConfig is the singleton hourly rate record.
type RateConfig struct {
	HourlyRate float64 `json:"hourlyRate"`
}
