// Package pattern holds reasoning-bank records: which strategy dominated a
// served recommendation set, captured for adaptive weight learning.
package pattern

import "time"

// Record is one observed fusion outcome.
type Record struct {
	ID               string
	UserID           string
	Context          string
	DominantStrategy string
	Weights          map[string]float64
	TopScore         float64
	CreatedAt        time.Time
}

// Query filters stored records.
type Query struct {
	UserID  string
	Context string
	Limit   int
}
