package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

// statsRunB is a second completed run with a different creator, a dual
// device verdict, a penalized name, and reconnect events on two keys.
func statsRunB() (*models.ProcessingRun, *models.Report) {
	run := sampleRun("run-b")
	run.CreatedBy = "other@school.edu"
	run.LogRows = 8
	run.IdentityCount = 2
	run.PresentCount = 1
	run.AbsentCount = 1
	run.ReviewCount = 0
	run.RosterAbsentCount = 0

	report := &models.Report{
		Verdicts: []models.VerdictRow{
			{
				Key:           "ID:54321",
				ERP:           "54321",
				Name:          "Dana",
				Status:        models.StatusPresent,
				DualDevice:    true,
				SegmentCount:  2,
				NamingPenalty: -1,
				BadMinutes:    6.5,
				BadPercent:    8.1,
				Issues:        []string{"Duplicate account - overlapping (two devices)"},
			},
			{
				Key:            "NAME:zed",
				Name:           "Zed",
				Status:         models.StatusAbsent,
				Reconnect:      true,
				ReconnectCount: 2,
				SegmentCount:   3,
				Issues:         []string{"Duplicate account - reconnects (non-overlapping x2)"},
			},
		},
		Reconnects: []models.ReconnectEvent{
			{Key: "NAME:zed", Name: "Zed", Index: 1, GapMinutes: 2, GapSeconds: 120, GapHMS: "0:02:00"},
			{Key: "NAME:zed", Name: "Zed", Index: 2, GapMinutes: 10, GapSeconds: 600, GapHMS: "0:10:00"},
			{Key: "ID:12345", ERP: "12345", Name: "Alice", Index: 1, GapMinutes: 1, GapSeconds: 60, GapHMS: "0:01:00"},
		},
	}
	return run, report
}

func seedStatsData(t *testing.T) *StatsRepository {
	t.Helper()

	db := newTestDB(t)
	runRepo := NewRunRepository(db)

	require.NoError(t, runRepo.SaveRun(sampleRun("run-a"), sampleReport()))

	runB, reportB := statsRunB()
	require.NoError(t, runRepo.SaveRun(runB, reportB))

	require.NoError(t, runRepo.SaveFailedRun(&models.ProcessingRun{
		RunID:        "run-c",
		Status:       models.RunStatusFailed,
		ErrorMessage: "Could not determine total class duration.",
		CreatedBy:    "other@school.edu",
	}))

	return NewStatsRepository(db)
}

func TestGetRunOverview(t *testing.T) {
	repo := seedStatsData(t)

	t.Run("all runs", func(t *testing.T) {
		overview, err := repo.GetRunOverview("")
		require.NoError(t, err)

		assert.Equal(t, int64(3), overview.TotalRuns)
		assert.Equal(t, int64(2), overview.CompletedRuns)
		assert.Equal(t, int64(1), overview.FailedRuns)
		assert.Equal(t, int64(20), overview.LogRows)
		assert.Equal(t, int64(5), overview.Identities)
		assert.Equal(t, int64(2), overview.Present)
		assert.Equal(t, int64(2), overview.Absent)
		assert.Equal(t, int64(1), overview.NeedsReview)
		assert.Equal(t, int64(1), overview.RosterAbsent)
	})

	t.Run("by creator", func(t *testing.T) {
		overview, err := repo.GetRunOverview("teacher@school.edu")
		require.NoError(t, err)

		assert.Equal(t, int64(1), overview.TotalRuns)
		assert.Equal(t, int64(1), overview.CompletedRuns)
		assert.Equal(t, int64(0), overview.FailedRuns)
		assert.Equal(t, int64(12), overview.LogRows)
		assert.Equal(t, int64(1), overview.Present)
	})

	t.Run("empty database", func(t *testing.T) {
		empty := NewStatsRepository(newTestDB(t))
		overview, err := empty.GetRunOverview("")
		require.NoError(t, err)

		assert.Equal(t, int64(0), overview.TotalRuns)
		assert.Equal(t, int64(0), overview.LogRows)
	})
}

func TestGetVerdictDistribution(t *testing.T) {
	repo := seedStatsData(t)

	t.Run("single run keeps status order", func(t *testing.T) {
		distribution, err := repo.GetVerdictDistribution("run-a")
		require.NoError(t, err)
		require.Len(t, distribution, 3)

		assert.Equal(t, models.VerdictDistribution{Status: "Present", Count: 1}, distribution[0])
		assert.Equal(t, models.VerdictDistribution{Status: "Absent", Count: 1}, distribution[1])
		assert.Equal(t, models.VerdictDistribution{Status: "Needs Review", Count: 1}, distribution[2])
	})

	t.Run("overall", func(t *testing.T) {
		distribution, err := repo.GetVerdictDistribution("")
		require.NoError(t, err)
		require.Len(t, distribution, 3)

		assert.Equal(t, int64(2), distribution[0].Count)
		assert.Equal(t, int64(2), distribution[1].Count)
		assert.Equal(t, int64(1), distribution[2].Count)
	})

	t.Run("unknown run", func(t *testing.T) {
		distribution, err := repo.GetVerdictDistribution("no-such-run")
		require.NoError(t, err)
		assert.Empty(t, distribution)
	})
}

func TestGetFlagCounts(t *testing.T) {
	repo := seedStatsData(t)

	t.Run("single run", func(t *testing.T) {
		counts, err := repo.GetFlagCounts("run-a")
		require.NoError(t, err)

		assert.Equal(t, int64(0), counts.DualDevice)
		assert.Equal(t, int64(1), counts.Reconnect)
		assert.Equal(t, int64(1), counts.Ambiguous)
		assert.Equal(t, int64(0), counts.NamingPenalty)
		assert.Equal(t, int64(1), counts.RosterOnly)
		assert.Equal(t, int64(1), counts.AliasMerges)
	})

	t.Run("overall", func(t *testing.T) {
		counts, err := repo.GetFlagCounts("")
		require.NoError(t, err)

		assert.Equal(t, int64(1), counts.DualDevice)
		assert.Equal(t, int64(2), counts.Reconnect)
		assert.Equal(t, int64(1), counts.Ambiguous)
		assert.Equal(t, int64(1), counts.NamingPenalty)
		assert.Equal(t, int64(1), counts.RosterOnly)
		assert.Equal(t, int64(1), counts.AliasMerges)
	})
}

func TestGetReconnectLeaders(t *testing.T) {
	repo := seedStatsData(t)

	t.Run("by events with key tiebreak", func(t *testing.T) {
		leaders, err := repo.GetReconnectLeaders("", "", 0)
		require.NoError(t, err)
		require.Len(t, leaders, 2)

		// Both keys have two events across runs; key breaks the tie
		assert.Equal(t, "ID:12345", leaders[0].Key)
		assert.Equal(t, int64(2), leaders[0].Events)
		assert.Equal(t, 6.0, leaders[0].TotalGapMinutes)
		assert.Equal(t, 5.0, leaders[0].MaxGapMinutes)

		assert.Equal(t, "NAME:zed", leaders[1].Key)
		assert.Equal(t, 12.0, leaders[1].TotalGapMinutes)
		assert.Equal(t, 10.0, leaders[1].MaxGapMinutes)
	})

	t.Run("by total gap", func(t *testing.T) {
		leaders, err := repo.GetReconnectLeaders("", "gap", 0)
		require.NoError(t, err)
		require.Len(t, leaders, 2)
		assert.Equal(t, "NAME:zed", leaders[0].Key)
		assert.Equal(t, "ID:12345", leaders[1].Key)
	})

	t.Run("scoped to one run", func(t *testing.T) {
		leaders, err := repo.GetReconnectLeaders("run-b", "", 0)
		require.NoError(t, err)
		require.Len(t, leaders, 2)
		assert.Equal(t, "NAME:zed", leaders[0].Key)
		assert.Equal(t, int64(2), leaders[0].Events)
		assert.Equal(t, int64(1), leaders[1].Events)
	})

	t.Run("limit", func(t *testing.T) {
		leaders, err := repo.GetReconnectLeaders("", "gap", 1)
		require.NoError(t, err)
		require.Len(t, leaders, 1)
		assert.Equal(t, "NAME:zed", leaders[0].Key)
	})
}
