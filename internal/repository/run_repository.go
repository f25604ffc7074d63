package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAK-124/attendance-backend-go/internal/database"
	"github.com/SAK-124/attendance-backend-go/internal/models"
)

// RunRepository handles database operations for processing runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun persists a completed run together with its verdicts, reconnect
// events and alias merges in one transaction
func (r *RunRepository) SaveRun(run *models.ProcessingRun, report *models.Report) error {
	if run.Meta != nil {
		metaJSON, err := json.Marshal(run.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal run meta: %w", err)
		}
		run.MetaJSON = string(metaJSON)
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if err := insertRun(tx, run); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO verdicts (
				run_id, position, key, erp, name, raw_names, match_source,
				attended_minutes_raw, threshold_minutes_raw,
				attended_minutes_decision, threshold_minutes_decision,
				shortfall_minutes, status, naming_penalty,
				bad_name_minutes, bad_name_percent, segment_count,
				dual_device, reconnect, reconnect_count, ambiguous, roster_only,
				issues
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare verdict insert: %w", err)
		}
		defer stmt.Close()

		for position, v := range report.Verdicts {
			_, err := stmt.Exec(
				run.RunID, position, v.Key, v.ERP, v.Name, v.RawNames, v.MatchSource,
				v.AttendedMinutesRaw, v.ThresholdMinutesRaw,
				v.AttendedMinutesDecision, v.ThresholdMinutesDecision,
				v.ShortfallMinutes, string(v.Status), v.NamingPenalty,
				v.BadMinutes, v.BadPercent, v.SegmentCount,
				v.DualDevice, v.Reconnect, v.ReconnectCount, v.Ambiguous, v.RosterOnly,
				strings.Join(v.Issues, "; "),
			)
			if err != nil {
				return fmt.Errorf("failed to insert verdict %s: %w", v.Key, err)
			}
		}

		eventStmt, err := tx.Prepare(`
			INSERT INTO reconnect_events (
				run_id, key, erp, name, event_index,
				disconnect_time, reconnect_time, gap_minutes, gap_seconds, gap_hms,
				disconnect_raw_name, reconnect_raw_name,
				disconnect_join_raw, disconnect_leave_raw,
				reconnect_join_raw, reconnect_leave_raw
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare reconnect event insert: %w", err)
		}
		defer eventStmt.Close()

		for _, e := range report.Reconnects {
			_, err := eventStmt.Exec(
				run.RunID, e.Key, e.ERP, e.Name, e.Index,
				e.DisconnectTime, e.ReconnectTime, e.GapMinutes, e.GapSeconds, e.GapHMS,
				e.DisconnectRawName, e.ReconnectRawName,
				e.DisconnectJoinRaw, e.DisconnectLeaveRaw,
				e.ReconnectJoinRaw, e.ReconnectLeaveRaw,
			)
			if err != nil {
				return fmt.Errorf("failed to insert reconnect event %s #%d: %w", e.Key, e.Index, err)
			}
		}

		mergeStmt, err := tx.Prepare(`
			INSERT INTO alias_merges (run_id, source_key, target_key)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare alias merge insert: %w", err)
		}
		defer mergeStmt.Close()

		for _, m := range report.AliasMerges {
			if _, err := mergeStmt.Exec(run.RunID, m.SourceKey, m.TargetKey); err != nil {
				return fmt.Errorf("failed to insert alias merge %s -> %s: %w", m.SourceKey, m.TargetKey, err)
			}
		}

		return nil
	})
}

// SaveFailedRun persists a run that errored before producing a report
func (r *RunRepository) SaveFailedRun(run *models.ProcessingRun) error {
	query := `
		INSERT INTO runs (
			run_id, status, error_message, log_rows, identity_count,
			present_count, absent_count, review_count, roster_absent_count,
			meta_json, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		run.RunID, run.Status, run.ErrorMessage,
		run.LogRows, run.IdentityCount, run.PresentCount, run.AbsentCount,
		run.ReviewCount, run.RosterAbsentCount, run.MetaJSON, run.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert failed run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

func insertRun(tx *sql.Tx, run *models.ProcessingRun) error {
	query := `
		INSERT INTO runs (
			run_id, status, error_message, log_rows, identity_count,
			present_count, absent_count, review_count, roster_absent_count,
			meta_json, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query,
		run.RunID, run.Status, run.ErrorMessage,
		run.LogRows, run.IdentityCount, run.PresentCount, run.AbsentCount,
		run.ReviewCount, run.RosterAbsentCount, run.MetaJSON, run.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// GetByRunID retrieves a processing run by its external run ID.
// Returns (nil, nil) when no such run exists.
func (r *RunRepository) GetByRunID(runID string) (*models.ProcessingRun, error) {
	query := `
		SELECT id, run_id, status, error_message, log_rows, identity_count,
			   present_count, absent_count, review_count, roster_absent_count,
			   meta_json, created_by, created_at
		FROM runs
		WHERE run_id = ?
	`

	run := &models.ProcessingRun{}
	err := r.db.QueryRow(query, runID).Scan(
		&run.ID, &run.RunID, &run.Status, &run.ErrorMessage,
		&run.LogRows, &run.IdentityCount, &run.PresentCount, &run.AbsentCount,
		&run.ReviewCount, &run.RosterAbsentCount,
		&run.MetaJSON, &run.CreatedBy, &run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.MetaJSON != "" {
		meta := &models.MetaBlock{}
		if err := json.Unmarshal([]byte(run.MetaJSON), meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run meta: %w", err)
		}
		run.Meta = meta
	}

	return run, nil
}

// List retrieves processing runs with optional filters and pagination
func (r *RunRepository) List(filter models.RunFilter) ([]models.ProcessingRun, int64, error) {
	query := `
		SELECT id, run_id, status, error_message, log_rows, identity_count,
			   present_count, absent_count, review_count, roster_absent_count,
			   meta_json, created_by, created_at
		FROM runs
	`

	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.CreatedBy != "" {
		conditions = append(conditions, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count
	countQuery := "SELECT COUNT(*) FROM runs"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	err := r.db.QueryRow(countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	// Add pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 200 {
		filter.PageSize = 200
	}

	offset := (filter.Page - 1) * filter.PageSize
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ProcessingRun
	for rows.Next() {
		var run models.ProcessingRun
		err := rows.Scan(
			&run.ID, &run.RunID, &run.Status, &run.ErrorMessage,
			&run.LogRows, &run.IdentityCount, &run.PresentCount, &run.AbsentCount,
			&run.ReviewCount, &run.RosterAbsentCount,
			&run.MetaJSON, &run.CreatedBy, &run.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, total, nil
}

// ListVerdicts retrieves the verdict rows of a run in their original
// report order
func (r *RunRepository) ListVerdicts(runID string, filter models.VerdictFilter) ([]models.VerdictRow, error) {
	query := `
		SELECT id, run_id, key, erp, name, raw_names, match_source,
			   attended_minutes_raw, threshold_minutes_raw,
			   attended_minutes_decision, threshold_minutes_decision,
			   shortfall_minutes, status, naming_penalty,
			   bad_name_minutes, bad_name_percent, segment_count,
			   dual_device, reconnect, reconnect_count, ambiguous, roster_only,
			   issues
		FROM verdicts
		WHERE run_id = ?
	`

	args := []interface{}{runID}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.RosterOnly {
		query += " AND roster_only = 1"
	}

	query += " ORDER BY position"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []models.VerdictRow
	for rows.Next() {
		var v models.VerdictRow
		var issues string
		err := rows.Scan(
			&v.ID, &v.RunID, &v.Key, &v.ERP, &v.Name, &v.RawNames, &v.MatchSource,
			&v.AttendedMinutesRaw, &v.ThresholdMinutesRaw,
			&v.AttendedMinutesDecision, &v.ThresholdMinutesDecision,
			&v.ShortfallMinutes, &v.Status, &v.NamingPenalty,
			&v.BadMinutes, &v.BadPercent, &v.SegmentCount,
			&v.DualDevice, &v.Reconnect, &v.ReconnectCount, &v.Ambiguous, &v.RosterOnly,
			&issues,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		if issues != "" {
			v.Issues = strings.Split(issues, "; ")
		}
		verdicts = append(verdicts, v)
	}

	return verdicts, nil
}

// ListReconnects retrieves the reconnect events of a run, ordered the
// way the report presents them
func (r *RunRepository) ListReconnects(runID string) ([]models.ReconnectEvent, error) {
	query := `
		SELECT id, run_id, key, erp, name, event_index,
			   disconnect_time, reconnect_time, gap_minutes, gap_seconds, gap_hms,
			   disconnect_raw_name, reconnect_raw_name,
			   disconnect_join_raw, disconnect_leave_raw,
			   reconnect_join_raw, reconnect_leave_raw
		FROM reconnect_events
		WHERE run_id = ?
		ORDER BY key, event_index, disconnect_time
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconnect events: %w", err)
	}
	defer rows.Close()

	var events []models.ReconnectEvent
	for rows.Next() {
		var e models.ReconnectEvent
		err := rows.Scan(
			&e.ID, &e.RunID, &e.Key, &e.ERP, &e.Name, &e.Index,
			&e.DisconnectTime, &e.ReconnectTime, &e.GapMinutes, &e.GapSeconds, &e.GapHMS,
			&e.DisconnectRawName, &e.ReconnectRawName,
			&e.DisconnectJoinRaw, &e.DisconnectLeaveRaw,
			&e.ReconnectJoinRaw, &e.ReconnectLeaveRaw,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconnect event: %w", err)
		}
		events = append(events, e)
	}

	return events, nil
}

// ListMerges retrieves the alias merge audit rows of a run
func (r *RunRepository) ListMerges(runID string) ([]models.AliasMerge, error) {
	query := `
		SELECT id, run_id, source_key, target_key
		FROM alias_merges
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alias merges: %w", err)
	}
	defer rows.Close()

	var merges []models.AliasMerge
	for rows.Next() {
		var m models.AliasMerge
		if err := rows.Scan(&m.ID, &m.RunID, &m.SourceKey, &m.TargetKey); err != nil {
			return nil, fmt.Errorf("failed to scan alias merge: %w", err)
		}
		merges = append(merges, m)
	}

	return merges, nil
}
