package models

import "time"

// Run status constants
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ProcessingRun is one persisted invocation of the attendance engine
type ProcessingRun struct {
	ID    int64  `json:"id" db:"id"`
	RunID string `json:"run_id" db:"run_id"` // externally visible UUID

	Status       string `json:"status" db:"status"`
	ErrorMessage string `json:"error_message,omitempty" db:"error_message"`

	LogRows           int `json:"log_rows" db:"log_rows"`
	IdentityCount     int `json:"identity_count" db:"identity_count"`
	PresentCount      int `json:"present_count" db:"present_count"`
	AbsentCount       int `json:"absent_count" db:"absent_count"`
	ReviewCount       int `json:"review_count" db:"review_count"`
	RosterAbsentCount int `json:"roster_absent_count" db:"roster_absent_count"`

	MetaJSON string     `json:"-" db:"meta_json"`
	Meta     *MetaBlock `json:"meta,omitempty" db:"-"`

	CreatedBy string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
