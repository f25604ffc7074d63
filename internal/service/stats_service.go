package service

import (
	"fmt"
	"time"

	"github.com/SAK-124/attendance-backend-go/internal/models"
	"github.com/SAK-124/attendance-backend-go/internal/repository"
)

// StatsService handles business logic for attendance statistics
type StatsService struct {
	statsRepo *repository.StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(statsRepo *repository.StatsRepository) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
	}
}

// GetRunOverview aggregates persisted run counters, optionally per creator
func (s *StatsService) GetRunOverview(createdBy string) (*models.RunOverview, error) {
	overview, err := s.statsRepo.GetRunOverview(createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to get run overview: %w", err)
	}

	overview.GeneratedAt = time.Now().Format(time.RFC3339)
	return overview, nil
}

// GetVerdictDistribution retrieves the per-status verdict histogram
func (s *StatsService) GetVerdictDistribution(runID string) ([]models.VerdictDistribution, error) {
	return s.statsRepo.GetVerdictDistribution(runID)
}

// GetFlagCounts retrieves review flag totals
func (s *StatsService) GetFlagCounts(runID string) (*models.FlagCounts, error) {
	return s.statsRepo.GetFlagCounts(runID)
}

// GetReconnectLeaders ranks identities by reconnect events
func (s *StatsService) GetReconnectLeaders(runID, orderBy string, limit int) ([]models.ReconnectLeader, error) {
	return s.statsRepo.GetReconnectLeaders(runID, orderBy, limit)
}
