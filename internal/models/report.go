package models

// VerdictStatus is the attendance verdict for one identity
type VerdictStatus string

const (
	StatusPresent     VerdictStatus = "Present"
	StatusAbsent      VerdictStatus = "Absent"
	StatusNeedsReview VerdictStatus = "Needs Review"
)

// Match source constants describe how an identity key was established
const (
	MatchSourceERPInName  = "erp_in_name"
	MatchSourceNameOnly   = "name_only"
	MatchSourceAliasMerge = "alias_merge"
	MatchSourceRosterOnly = "roster-only"
)

// VerdictRow is the full per-identity outcome of one processing run.
// Rows keep the first-appearance order of their identity in the log;
// roster-only absentees are appended after, in roster order.
type VerdictRow struct {
	ID    int64  `json:"-" db:"id"`
	RunID string `json:"-" db:"run_id"`

	Key         string `json:"key" db:"key"`
	ERP         string `json:"erp,omitempty" db:"erp"`
	Name        string `json:"name" db:"name"`
	RawNames    string `json:"raw_names" db:"raw_names"` // "; " joined, sorted
	MatchSource string `json:"match_source" db:"match_source"`

	AttendedMinutesRaw       float64 `json:"attended_minutes_raw" db:"attended_minutes_raw"`
	ThresholdMinutesRaw      float64 `json:"threshold_minutes_raw" db:"threshold_minutes_raw"`
	AttendedMinutesDecision  float64 `json:"attended_minutes_decision" db:"attended_minutes_decision"`
	ThresholdMinutesDecision float64 `json:"threshold_minutes_decision" db:"threshold_minutes_decision"`
	ShortfallMinutes         float64 `json:"shortfall_minutes" db:"shortfall_minutes"`

	Status        VerdictStatus `json:"status" db:"status"`
	NamingPenalty int           `json:"naming_penalty" db:"naming_penalty"`
	BadMinutes    float64       `json:"bad_name_minutes" db:"bad_name_minutes"`
	BadPercent    float64       `json:"bad_name_percent" db:"bad_name_percent"`

	SegmentCount   int  `json:"segment_count" db:"segment_count"`
	DualDevice     bool `json:"dual_device" db:"dual_device"`
	Reconnect      bool `json:"reconnect" db:"reconnect"`
	ReconnectCount int  `json:"reconnect_count" db:"reconnect_count"`
	Ambiguous      bool `json:"ambiguous" db:"ambiguous"`
	RosterOnly     bool `json:"roster_only" db:"roster_only"`

	Issues []string `json:"issues" db:"-"` // stored "; " joined
}

// ReconnectEvent is one disconnect/reconnect boundary in an identity's
// timeline. Timestamps are formatted "2006-01-02 15:04:05".
type ReconnectEvent struct {
	ID    int64  `json:"-" db:"id"`
	RunID string `json:"-" db:"run_id"`

	Key   string `json:"key" db:"key"`
	ERP   string `json:"erp,omitempty" db:"erp"`
	Name  string `json:"name" db:"name"`
	Index int    `json:"event_index" db:"event_index"` // 1-based, per identity

	DisconnectTime string  `json:"disconnect_time" db:"disconnect_time"`
	ReconnectTime  string  `json:"reconnect_time" db:"reconnect_time"`
	GapMinutes     float64 `json:"gap_minutes" db:"gap_minutes"`
	GapSeconds     int     `json:"gap_seconds" db:"gap_seconds"`
	GapHMS         string  `json:"gap_hms" db:"gap_hms"`

	DisconnectRawName  string `json:"disconnect_raw_name" db:"disconnect_raw_name"`
	ReconnectRawName   string `json:"reconnect_raw_name" db:"reconnect_raw_name"`
	DisconnectJoinRaw  string `json:"disconnect_join_raw" db:"disconnect_join_raw"`
	DisconnectLeaveRaw string `json:"disconnect_leave_raw" db:"disconnect_leave_raw"`
	ReconnectJoinRaw   string `json:"reconnect_join_raw" db:"reconnect_join_raw"`
	ReconnectLeaveRaw  string `json:"reconnect_leave_raw" db:"reconnect_leave_raw"`
}

// AliasMerge records one name-only identity folded into an ID-tagged one
type AliasMerge struct {
	ID        int64  `json:"-" db:"id"`
	RunID     string `json:"-" db:"run_id"`
	SourceKey string `json:"source_key" db:"source_key"`
	TargetKey string `json:"target_key" db:"target_key"`
}

// MetaBlock summarizes the inputs and derived thresholds of a run
type MetaBlock struct {
	TotalMinutesSource string   `json:"total_minutes_source"` // "override" or "auto"
	TotalMinutes       float64  `json:"total_class_minutes"`
	BreakMinutes       float64  `json:"break_minutes"`
	AdjustedTotal      float64  `json:"adjusted_total_minutes"`
	ThresholdRatio     float64  `json:"threshold_ratio"`
	RawThreshold       float64  `json:"raw_threshold_minutes"`
	BufferMinutes      float64  `json:"buffer_minutes"`
	EffectiveThreshold float64  `json:"effective_threshold_minutes"`
	DecisionRule       string   `json:"decision_rule"`
	RoundingMode       string   `json:"rounding_mode"`
	PenaltyTolerance   float64  `json:"penalty_tolerance_minutes"`
	RosterProvided     bool     `json:"roster_provided"`
	TimestampsUsed     bool     `json:"timestamps_used"`
	ExcludedPatterns   []string `json:"excluded_name_patterns"`
}

// Report is the complete output of one processing run
type Report struct {
	Verdicts    []VerdictRow     `json:"verdicts"`
	Reconnects  []ReconnectEvent `json:"reconnect_events"`
	AliasMerges []AliasMerge     `json:"alias_merges"`
	ERPs        []string         `json:"erps"`
	Meta        MetaBlock        `json:"meta"`
}

// IdentityKey is one resolved identity, as returned by the keys
// operation for building exemption configuration
type IdentityKey struct {
	Key         string   `json:"key"`
	ERP         string   `json:"erp,omitempty"`
	Name        string   `json:"name"`
	RawNames    []string `json:"raw_names"`
	MatchSource string   `json:"match_source"`
}
