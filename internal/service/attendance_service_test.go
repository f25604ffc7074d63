package service

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/SAK-124/attendance-backend-go/internal/attendance"
	"github.com/SAK-124/attendance-backend-go/internal/database"
	"github.com/SAK-124/attendance-backend-go/internal/models"
	"github.com/SAK-124/attendance-backend-go/internal/repository"
)

const serviceLogCSV = `Name (Original Name),User Email,Join Time,Leave Time,Duration (Minutes)
12345 Alice,alice@school.edu,2025-03-01 09:00:00,2025-03-01 09:50:00,50
Bob,bob@school.edu,2025-03-01 09:00:00,2025-03-01 09:30:00,30
`

const serviceRosterCSV = `ERP,Name,Email
12345,Alice,alice@school.edu
67890,Missing Kid,missing@school.edu
`

func newTestServices(t *testing.T) (*AttendanceService, *RunService) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "service_test.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mgr := database.NewMigrationManager(db, "../../migrations")
	require.NoError(t, mgr.RunMigrations())

	engine, err := attendance.NewEngine(attendance.Options{})
	require.NoError(t, err)

	runRepo := repository.NewRunRepository(db)
	return NewAttendanceService(engine, runRepo), NewRunService(runRepo)
}

func TestProcessPersistsRun(t *testing.T) {
	svc, runs := newTestServices(t)

	runID, report, err := svc.Process([]byte(serviceLogCSV), []byte(serviceRosterCSV),
		models.DefaultDecisionParams(), models.ExemptionMap{}, "teacher@school.edu")
	require.NoError(t, err)
	require.NotNil(t, report)
	require.NotEmpty(t, runID)

	run, err := runs.GetRun(runID)
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.LogRows)
	assert.Equal(t, 2, run.IdentityCount)
	assert.Equal(t, 1, run.RosterAbsentCount)
	assert.Equal(t, 1, run.PresentCount)
	assert.Equal(t, 2, run.AbsentCount)
	assert.Equal(t, 0, run.ReviewCount)
	assert.Equal(t, "teacher@school.edu", run.CreatedBy)

	// Class span 09:00-09:50, 80% threshold
	require.NotNil(t, run.Meta)
	assert.Equal(t, "auto", run.Meta.TotalMinutesSource)
	assert.Equal(t, 50.0, run.Meta.TotalMinutes)
	assert.Equal(t, 40.0, run.Meta.EffectiveThreshold)

	verdicts, err := runs.ListVerdicts(runID, models.VerdictFilter{})
	require.NoError(t, err)
	require.Len(t, verdicts, 3)
	assert.Equal(t, "ID:12345", verdicts[0].Key)
	assert.Equal(t, models.StatusPresent, verdicts[0].Status)
	assert.Equal(t, "NAME:bob", verdicts[1].Key)
	assert.Equal(t, models.StatusAbsent, verdicts[1].Status)
	assert.Equal(t, "ID:67890", verdicts[2].Key)
	assert.True(t, verdicts[2].RosterOnly)
}

func TestProcessWithoutRoster(t *testing.T) {
	svc, runs := newTestServices(t)

	runID, report, err := svc.Process([]byte(serviceLogCSV), nil,
		models.DefaultDecisionParams(), models.ExemptionMap{}, "")
	require.NoError(t, err)
	require.Len(t, report.Verdicts, 2)

	run, err := runs.GetRun(runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 0, run.RosterAbsentCount)
	assert.False(t, run.Meta.RosterProvided)
}

func TestProcessRecordsFailedRun(t *testing.T) {
	svc, runs := newTestServices(t)

	badLog := "Name (Original Name),User Email\nAlice,alice@school.edu\n"
	runID, report, err := svc.Process([]byte(badLog), nil,
		models.DefaultDecisionParams(), models.ExemptionMap{}, "teacher@school.edu")
	require.Error(t, err)
	assert.True(t, models.IsInputError(err))
	assert.Nil(t, report)

	run, getErr := runs.GetRun(runID)
	require.NoError(t, getErr)
	require.NotNil(t, run)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Equal(t, err.Error(), run.ErrorMessage)
	assert.Equal(t, "teacher@school.edu", run.CreatedBy)
}

func TestProcessRecordsRosterFailure(t *testing.T) {
	svc, runs := newTestServices(t)

	badRoster := "Name,Email\nAlice,alice@school.edu\n"
	runID, _, err := svc.Process([]byte(serviceLogCSV), []byte(badRoster),
		models.DefaultDecisionParams(), models.ExemptionMap{}, "")
	require.Error(t, err)
	assert.True(t, models.IsInputError(err))

	run, getErr := runs.GetRun(runID)
	require.NoError(t, getErr)
	require.NotNil(t, run)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	// Log rows parsed before the roster failed
	assert.Equal(t, 2, run.LogRows)
}

func TestProcessAppliesParams(t *testing.T) {
	svc, runs := newTestServices(t)

	params := models.DefaultDecisionParams()
	params.OverrideTotalMinutes = 100
	params.ThresholdRatio = 0.5

	runID, report, err := svc.Process([]byte(serviceLogCSV), nil, params, models.ExemptionMap{}, "")
	require.NoError(t, err)

	assert.Equal(t, "override", report.Meta.TotalMinutesSource)
	assert.Equal(t, 100.0, report.Meta.TotalMinutes)
	assert.Equal(t, 50.0, report.Meta.EffectiveThreshold)

	run, err := runs.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, "override", run.Meta.TotalMinutesSource)
}

func TestKeysDoesNotPersist(t *testing.T) {
	svc, runs := newTestServices(t)

	keys, err := svc.Keys([]byte(serviceLogCSV))
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "ID:12345", keys[0].Key)
	assert.Equal(t, "NAME:bob", keys[1].Key)

	_, total, err := runs.ListRuns(models.RunFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestKeysPropagatesInputError(t *testing.T) {
	svc, _ := newTestServices(t)

	_, err := svc.Keys([]byte("no header here\n"))
	require.Error(t, err)
	assert.True(t, models.IsInputError(err))
}
