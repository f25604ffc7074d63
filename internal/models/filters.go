package models

// RunFilter represents filter parameters for querying processing runs
type RunFilter struct {
	Status    string `form:"status"`    // completed, failed
	CreatedBy string `form:"createdBy"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// VerdictFilter represents filter parameters for querying verdict rows
// of a single run
type VerdictFilter struct {
	Status     string `form:"status"` // Present, Absent, Needs Review
	RosterOnly bool   `form:"rosterOnly"`
}
