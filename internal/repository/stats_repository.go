package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

// StatsRepository handles aggregate queries over persisted runs
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetRunOverview aggregates run counters, optionally restricted to one creator
func (r *StatsRepository) GetRunOverview(createdBy string) (*models.RunOverview, error) {
	overview := &models.RunOverview{}

	// Build WHERE clause
	var conditions []string
	var args []interface{}

	if createdBy != "" {
		conditions = append(conditions, "created_by = ?")
		args = append(args, createdBy)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(log_rows), 0),
		COALESCE(SUM(identity_count), 0),
		COALESCE(SUM(present_count), 0),
		COALESCE(SUM(absent_count), 0),
		COALESCE(SUM(review_count), 0),
		COALESCE(SUM(roster_absent_count), 0)
		FROM runs` + whereClause
	err := r.db.QueryRow(query, args...).Scan(
		&overview.TotalRuns, &overview.CompletedRuns, &overview.FailedRuns,
		&overview.LogRows, &overview.Identities,
		&overview.Present, &overview.Absent, &overview.NeedsReview, &overview.RosterAbsent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}

	return overview, nil
}

// GetVerdictDistribution groups verdicts by status, per run or overall
func (r *StatsRepository) GetVerdictDistribution(runID string) ([]models.VerdictDistribution, error) {
	query := `SELECT status, COUNT(*) as count
		FROM verdicts`

	var conditions []string
	var args []interface{}

	if runID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, runID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += ` GROUP BY status
		ORDER BY
			CASE status
				WHEN 'Present' THEN 1
				WHEN 'Absent' THEN 2
				WHEN 'Needs Review' THEN 3
				ELSE 4
			END`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdict distribution: %w", err)
	}
	defer rows.Close()

	var distribution []models.VerdictDistribution
	for rows.Next() {
		var vd models.VerdictDistribution
		if err := rows.Scan(&vd.Status, &vd.Count); err != nil {
			return nil, fmt.Errorf("failed to scan verdict distribution: %w", err)
		}
		distribution = append(distribution, vd)
	}

	return distribution, nil
}

// GetFlagCounts sums the review flags across verdicts, per run or overall
func (r *StatsRepository) GetFlagCounts(runID string) (*models.FlagCounts, error) {
	counts := &models.FlagCounts{}

	// Build WHERE clause, shared by both tables
	var conditions []string
	var args []interface{}

	if runID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, runID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT
		COALESCE(SUM(dual_device), 0),
		COALESCE(SUM(reconnect), 0),
		COALESCE(SUM(ambiguous), 0),
		COALESCE(SUM(CASE WHEN naming_penalty < 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(roster_only), 0)
		FROM verdicts` + whereClause
	err := r.db.QueryRow(query, args...).Scan(
		&counts.DualDevice, &counts.Reconnect, &counts.Ambiguous,
		&counts.NamingPenalty, &counts.RosterOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate verdict flags: %w", err)
	}

	query = `SELECT COUNT(*) FROM alias_merges` + whereClause
	err = r.db.QueryRow(query, args...).Scan(&counts.AliasMerges)
	if err != nil {
		return nil, fmt.Errorf("failed to count alias merges: %w", err)
	}

	return counts, nil
}

// GetReconnectLeaders ranks identities by their recorded reconnect events
func (r *StatsRepository) GetReconnectLeaders(runID, orderBy string, limit int) ([]models.ReconnectLeader, error) {
	query := `SELECT key, MAX(erp), MAX(name),
		COUNT(*) as events,
		COALESCE(SUM(gap_minutes), 0) as total_gap,
		COALESCE(MAX(gap_minutes), 0) as max_gap
		FROM reconnect_events`

	var conditions []string
	var args []interface{}

	if runID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, runID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " GROUP BY key"

	// Order by
	orderClause := "events DESC"
	if orderBy == "gap" {
		orderClause = "total_gap DESC"
	}
	query += " ORDER BY " + orderClause + ", key ASC"

	// Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconnect leaders: %w", err)
	}
	defer rows.Close()

	var leaders []models.ReconnectLeader
	for rows.Next() {
		var l models.ReconnectLeader
		err := rows.Scan(
			&l.Key, &l.ERP, &l.Name,
			&l.Events, &l.TotalGapMinutes, &l.MaxGapMinutes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconnect leader: %w", err)
		}
		leaders = append(leaders, l)
	}

	return leaders, nil
}
