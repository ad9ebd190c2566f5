package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/hvlab/guest-harness/internal/models"
	"github.com/hvlab/guest-harness/internal/store"
)

type RunService struct {
	store *store.Store
}

func NewRunService(st *store.Store) *RunService {
	return &RunService{store: st}
}

type RunListParams struct {
	Outcomes []string
	Tests    []string
	Targets  []string
	Limit    uint64
	Offset   uint64
}

type RunListResult struct {
	Runs  []models.TestRun
	Total int
}

func (s *RunService) List(ctx context.Context, params RunListParams) (*RunListResult, error) {
	opts := s.buildListOptions(params)

	runs, err := s.store.Runs().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// Get total count without pagination
	countOpts := s.buildListOptions(RunListParams{
		Outcomes: params.Outcomes,
		Tests:    params.Tests,
		Targets:  params.Targets,
	})
	total, err := s.store.Runs().Count(ctx, countOpts...)
	if err != nil {
		return nil, err
	}

	return &RunListResult{
		Runs:  runs,
		Total: total,
	}, nil
}

func (s *RunService) Get(ctx context.Context, id uuid.UUID) (*models.TestRun, error) {
	return s.store.Runs().Get(ctx, id)
}

func (s *RunService) buildListOptions(params RunListParams) []store.ListOption {
	var opts []store.ListOption

	if len(params.Outcomes) > 0 {
		opts = append(opts, store.ByOutcome(params.Outcomes...))
	}
	if len(params.Tests) > 0 {
		opts = append(opts, store.ByTest(params.Tests...))
	}
	if len(params.Targets) > 0 {
		opts = append(opts, store.ByTarget(params.Targets...))
	}
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	return opts
}
