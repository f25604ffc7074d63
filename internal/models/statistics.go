package models

// RunOverview aggregates persisted run counters into one summary block
type RunOverview struct {
	TotalRuns     int64 `json:"total_runs"`
	CompletedRuns int64 `json:"completed_runs"`
	FailedRuns    int64 `json:"failed_runs"`

	LogRows      int64 `json:"log_rows"`
	Identities   int64 `json:"identities"`
	Present      int64 `json:"present"`
	Absent       int64 `json:"absent"`
	NeedsReview  int64 `json:"needs_review"`
	RosterAbsent int64 `json:"roster_absent"`

	GeneratedAt string `json:"generated_at"`
}

// VerdictDistribution is one bucket of the per-status verdict histogram
type VerdictDistribution struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// FlagCounts sums the review flags across persisted verdicts
type FlagCounts struct {
	DualDevice    int64 `json:"dual_device"`
	Reconnect     int64 `json:"reconnect"`
	Ambiguous     int64 `json:"ambiguous"`
	NamingPenalty int64 `json:"naming_penalty"`
	RosterOnly    int64 `json:"roster_only"`
	AliasMerges   int64 `json:"alias_merges"`
}

// ReconnectLeader ranks one identity by its recorded reconnect events
type ReconnectLeader struct {
	Key             string  `json:"key"`
	ERP             string  `json:"erp,omitempty"`
	Name            string  `json:"name"`
	Events          int64   `json:"events"`
	TotalGapMinutes float64 `json:"total_gap_minutes"`
	MaxGapMinutes   float64 `json:"max_gap_minutes"`
}
