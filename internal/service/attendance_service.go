package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/SAK-124/attendance-backend-go/internal/attendance"
	"github.com/SAK-124/attendance-backend-go/internal/ingest"
	"github.com/SAK-124/attendance-backend-go/internal/logger"
	"github.com/SAK-124/attendance-backend-go/internal/models"
	"github.com/SAK-124/attendance-backend-go/internal/repository"
)

// AttendanceService orchestrates ingest, the decision engine and run
// persistence
type AttendanceService struct {
	engine  *attendance.Engine
	runRepo *repository.RunRepository
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(engine *attendance.Engine, runRepo *repository.RunRepository) *AttendanceService {
	return &AttendanceService{
		engine:  engine,
		runRepo: runRepo,
	}
}

// Process parses the meeting log (and optional roster), runs the
// decision engine and persists the outcome. Every invocation gets a
// run ID; failed invocations are stored with their error message so
// the run history stays complete.
func (s *AttendanceService) Process(logData, rosterData []byte, params models.DecisionParams, exemptions models.ExemptionMap, createdBy string) (string, *models.Report, error) {
	runID := uuid.New().String()

	rows, err := ingest.ParseParticipants(logData)
	if err != nil {
		s.recordFailure(runID, createdBy, 0, err)
		return runID, nil, err
	}

	var roster []models.RosterEntry
	if len(rosterData) > 0 {
		roster, err = ingest.ParseRoster(rosterData)
		if err != nil {
			s.recordFailure(runID, createdBy, len(rows), err)
			return runID, nil, err
		}
	}

	report, err := s.engine.Process(rows, roster, params, exemptions)
	if err != nil {
		s.recordFailure(runID, createdBy, len(rows), err)
		return runID, nil, err
	}

	run := &models.ProcessingRun{
		RunID:     runID,
		Status:    models.RunStatusCompleted,
		LogRows:   len(rows),
		CreatedBy: createdBy,
		Meta:      &report.Meta,
	}
	for _, v := range report.Verdicts {
		if v.RosterOnly {
			run.RosterAbsentCount++
		} else {
			run.IdentityCount++
		}
		switch v.Status {
		case models.StatusPresent:
			run.PresentCount++
		case models.StatusAbsent:
			run.AbsentCount++
		case models.StatusNeedsReview:
			run.ReviewCount++
		}
	}

	if err := s.runRepo.SaveRun(run, report); err != nil {
		return runID, nil, fmt.Errorf("failed to save run: %w", err)
	}

	logger.L().Infof("[AttendanceService] run %s: %d rows, %d identities, %d present, %d absent, %d review, %d roster-absent",
		runID, run.LogRows, run.IdentityCount, run.PresentCount, run.AbsentCount, run.ReviewCount, run.RosterAbsentCount)

	return runID, report, nil
}

// Keys parses the meeting log and returns its resolved identity keys
// without persisting anything
func (s *AttendanceService) Keys(logData []byte) ([]models.IdentityKey, error) {
	rows, err := ingest.ParseParticipants(logData)
	if err != nil {
		return nil, err
	}
	return s.engine.Keys(rows), nil
}

func (s *AttendanceService) recordFailure(runID, createdBy string, logRows int, cause error) {
	run := &models.ProcessingRun{
		RunID:        runID,
		Status:       models.RunStatusFailed,
		ErrorMessage: cause.Error(),
		LogRows:      logRows,
		CreatedBy:    createdBy,
	}
	if err := s.runRepo.SaveFailedRun(run); err != nil {
		logger.L().Errorf("[AttendanceService] failed to record failed run %s: %v", runID, err)
	}
}
