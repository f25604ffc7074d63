package service

import (
	"github.com/SAK-124/attendance-backend-go/internal/models"
	"github.com/SAK-124/attendance-backend-go/internal/repository"
)

// RunService handles queries over stored processing runs
type RunService struct {
	runRepo *repository.RunRepository
}

// NewRunService creates a new run service
func NewRunService(runRepo *repository.RunRepository) *RunService {
	return &RunService{
		runRepo: runRepo,
	}
}

// ListRuns retrieves stored runs with filters and pagination
func (s *RunService) ListRuns(filter models.RunFilter) ([]models.ProcessingRun, int64, error) {
	return s.runRepo.List(filter)
}

// GetRun retrieves one run by its external ID, nil when absent
func (s *RunService) GetRun(runID string) (*models.ProcessingRun, error) {
	return s.runRepo.GetByRunID(runID)
}

// ListVerdicts retrieves the verdict rows of a run in report order
func (s *RunService) ListVerdicts(runID string, filter models.VerdictFilter) ([]models.VerdictRow, error) {
	return s.runRepo.ListVerdicts(runID, filter)
}

// ListReconnects retrieves the reconnect events of a run
func (s *RunService) ListReconnects(runID string) ([]models.ReconnectEvent, error) {
	return s.runRepo.ListReconnects(runID)
}

// ListMerges retrieves the alias merge audit rows of a run
func (s *RunService) ListMerges(runID string) ([]models.AliasMerge, error) {
	return s.runRepo.ListMerges(runID)
}
