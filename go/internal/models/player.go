package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a sports player in the draftable pool
type Player struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Position  string    `json:"position"`  // 'QB', 'RB', 'WR', etc.
	TeamAbbr  string    `json:"team_abbr"` // pro team, e.g. 'KC'
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFilter narrows the draftable pool.
type PlayerFilter struct {
	Position string
	Search   string // case-insensitive substring of full_name
	Limit    int
}
