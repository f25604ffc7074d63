package models

import "time"

// ParticipantRow is one normalized row of the meeting participation log:
// one join/leave segment (or one duration record) for one display name.
// Rows are immutable once decoded.
type ParticipantRow struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`

	// Parsed timestamps; zero when the column was absent or unparseable.
	Join  time.Time `json:"join,omitempty"`
	Leave time.Time `json:"leave,omitempty"`

	// Original cell text, carried through for reconnect event reporting.
	JoinRaw  string `json:"join_raw,omitempty"`
	LeaveRaw string `json:"leave_raw,omitempty"`

	// Duration in minutes, used when the log carries no usable timestamps.
	Duration    float64 `json:"duration,omitempty"`
	HasDuration bool    `json:"-"`
}

// RosterEntry is one enrolled student from the class roster. Entries are
// matched against resolved identities, never merged into them.
type RosterEntry struct {
	ERP   string `json:"erp"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
