package domain

import "time"

// Operator is a person talking to the control bot
type Operator struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	AddedAt    time.Time `json:"added_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	// IsAdmin marks the first operator ever seen
	IsAdmin bool `json:"is_admin"`
}
