// Package history stores past searches and recently viewed properties.
package history

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a history entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// Default caps, newest entries win.
const (
	DefaultLimit     = 20
	DefaultViewLimit = 10
)

// Entry is one completed search.
type Entry struct {
	ID          int64     `json:"id"`
	SearchID    string    `json:"search_id"`
	SessionID   string    `json:"session_id,omitempty"`
	Query       string    `json:"query"`
	State       string    `json:"state"`
	ResultCount int       `json:"result_count"`
	RadiusMiles *float64  `json:"radius_miles,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// View is a property whose details were opened.
type View struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Owner     string    `json:"owner"`
	Address   string    `json:"address"`
	ViewedAt  time.Time `json:"viewed_at"`
}
