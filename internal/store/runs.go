package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/hvlab/guest-harness/internal/models"
	srvErrors "github.com/hvlab/guest-harness/pkg/errors"
)

type RunStore struct {
	db *sql.DB
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Create(ctx context.Context, run models.TestRun) error {
	_, err := s.db.ExecContext(ctx, queryInsertRun,
		run.ID.String(),
		run.TestName,
		run.Target,
		run.Iteration,
		string(run.Outcome),
		run.Message,
		run.LogDir,
		run.StartedAt,
		run.FinishedAt,
	)
	return err
}

func (s *RunStore) Get(ctx context.Context, id uuid.UUID) (*models.TestRun, error) {
	row := s.db.QueryRowContext(ctx, queryGetRun, id.String())

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewRunNotFoundError(id.String())
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *RunStore) List(ctx context.Context, opts ...ListOption) ([]models.TestRun, error) {
	builder := sq.Select(
		"id", "test_name", "target", "iteration", "outcome",
		"message", "log_dir", "started_at", "finished_at",
	).From("runs").OrderBy("started_at DESC")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.TestRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

func (s *RunStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("runs")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func scanRun(scan func(...any) error) (*models.TestRun, error) {
	var run models.TestRun
	var id string
	err := scan(
		&id,
		&run.TestName,
		&run.Target,
		&run.Iteration,
		&run.Outcome,
		&run.Message,
		&run.LogDir,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	run.ID = parsed

	return &run, nil
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByOutcome(outcomes ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(outcomes) == 0 {
			return b
		}
		return b.Where(sq.Eq{"outcome": outcomes})
	}
}

func ByTest(names ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"test_name": names})
	}
}

func ByTarget(targets ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(targets) == 0 {
			return b
		}
		return b.Where(sq.Eq{"target": targets})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}
