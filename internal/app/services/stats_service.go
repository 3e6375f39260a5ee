package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"golang.org/x/sync/errgroup"
)

// StatsService computes dashboard counters
type StatsService interface {
	Get(ctx context.Context) (*dto.StatsResponse, error)
}

type statsServiceImpl struct {
	users       UserStore
	interns     InternStore
	requests    RequestStore
	documents   DocumentStore
	evaluations EvaluationStore
	planning    PlanningStore
	now         func() time.Time
	logger      zerolog.Logger
}

// StatsSources groups the stores the counters are read from
type StatsSources struct {
	Users       UserStore
	Interns     InternStore
	Requests    RequestStore
	Documents   DocumentStore
	Evaluations EvaluationStore
	Planning    PlanningStore
}

// NewStatsService creates a new stats service
func NewStatsService(src StatsSources, logger zerolog.Logger) StatsService {
	return &statsServiceImpl{
		users:       src.Users,
		interns:     src.Interns,
		requests:    src.Requests,
		documents:   src.Documents,
		evaluations: src.Evaluations,
		planning:    src.Planning,
		now:         time.Now,
		logger:      logger,
	}
}

// Get runs the counts concurrently. The first failure cancels the rest.
func (s *statsServiceImpl) Get(ctx context.Context) (*dto.StatsResponse, error) {
	var out dto.StatsResponse
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.UsersByRole, err = s.users.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.InternsByStatus, err = s.interns.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.RequestsByStatus, err = s.requests.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Documents, err = s.documents.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Evaluations, err = s.evaluations.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.UpcomingPlanning, err = s.planning.CountUpcoming(gctx, s.now())
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute stats")
		return nil, err
	}
	return &out, nil
}
