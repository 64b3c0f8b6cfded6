package db

import (
	"time"

	"github.com/google/uuid"
)

// SessionRow mirrors a record of the sessions table
type SessionRow struct {
	ID        uuid.UUID `json:"id"`
	Phase     string    `json:"phase"`
	Asked     int       `json:"asked"`
	Answers   []byte    `json:"answers"`
	Profile   *string   `json:"profile,omitempty"`
	Rule      *string   `json:"rule,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileCount is the number of sessions classified into one profile
type ProfileCount struct {
	Profile  string `json:"profile"`
	Sessions int64  `json:"sessions"`
}
