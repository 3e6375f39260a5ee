package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/db"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

var evaluationColumns = []string{
	"e.id", "e.intern_id", "e.evaluator_id", "e.period", "e.criteria",
	"e.overall_score", "COALESCE(e.comments, '')", "e.created_at", "e.updated_at",
}

// EvaluationListParams holds filters for listing evaluations
type EvaluationListParams struct {
	InternID *int64
	Scope    Scope
}

// EvaluationRepository handles database operations on evaluations
type EvaluationRepository struct {
	db db.DBTX
}

// NewEvaluationRepository creates a new EvaluationRepository
func NewEvaluationRepository(conn db.DBTX) *EvaluationRepository {
	return &EvaluationRepository{db: conn}
}

func scanEvaluation(row pgx.Row) (*models.Evaluation, error) {
	var e models.Evaluation
	var criteria []byte
	err := row.Scan(
		&e.ID, &e.InternID, &e.EvaluatorID, &e.Period, &criteria,
		&e.OverallScore, &e.Comments, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEvaluationNotFound
		}
		return nil, err
	}
	e.Criteria = map[string]float64{}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &e.Criteria); err != nil {
			return nil, fmt.Errorf("invalid criteria for evaluation %d: %w", e.ID, err)
		}
	}
	return &e, nil
}

// Create inserts an evaluation
func (r *EvaluationRepository) Create(ctx context.Context, e *models.Evaluation) error {
	criteria, err := json.Marshal(e.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}

	sql, args, err := psql.Insert("evaluations").
		Columns("intern_id", "evaluator_id", "period", "criteria", "overall_score", "comments").
		Values(e.InternID, e.EvaluatorID, e.Period, criteria, e.OverallScore, e.Comments).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create evaluation query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("internID", e.InternID).Msg("Error executing create evaluation query")
		return fmt.Errorf("error creating evaluation: %w", err)
	}
	return nil
}

// GetByID retrieves an evaluation
func (r *EvaluationRepository) GetByID(ctx context.Context, id int64) (*models.Evaluation, error) {
	sql, args, err := psql.Select(evaluationColumns...).From("evaluations e").
		Where(squirrel.Eq{"e.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get evaluation query: %w", err)
	}

	e, err := scanEvaluation(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrEvaluationNotFound) {
		logger.Error().Err(err).Int64("evaluationID", id).Msg("Error retrieving evaluation")
		return nil, fmt.Errorf("error retrieving evaluation: %w", err)
	}
	return e, err
}

// List returns one page of evaluations, newest first
func (r *EvaluationRepository) List(ctx context.Context, params EvaluationListParams, offset, limit uint64) ([]*models.Evaluation, int64, error) {
	where := internScopeWhere("i", params.Scope)
	if params.InternID != nil {
		where = append(where, squirrel.Eq{"e.intern_id": *params.InternID})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("evaluations e").
		Join("interns i ON i.id = e.intern_id").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count evaluations query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting evaluations")
		return nil, 0, fmt.Errorf("error counting evaluations: %w", err)
	}
	if total == 0 {
		return []*models.Evaluation{}, 0, nil
	}

	sql, args, err := psql.Select(evaluationColumns...).From("evaluations e").
		Join("interns i ON i.id = e.intern_id").Where(where).
		OrderBy("e.created_at DESC", "e.id DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list evaluations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing evaluations")
		return nil, 0, fmt.Errorf("error listing evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := make([]*models.Evaluation, 0, limit)
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning evaluation: %w", err)
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, total, rows.Err()
}

// Update writes period, criteria, score and comments
func (r *EvaluationRepository) Update(ctx context.Context, e *models.Evaluation) error {
	criteria, err := json.Marshal(e.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}

	sql, args, err := psql.Update("evaluations").
		Set("period", e.Period).
		Set("criteria", criteria).
		Set("overall_score", e.OverallScore).
		Set("comments", e.Comments).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update evaluation query: %w", err)
	}
	return r.execOne(ctx, sql, args, e.ID)
}

// Delete removes an evaluation
func (r *EvaluationRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("evaluations").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete evaluation query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// Count returns the total number of evaluations
func (r *EvaluationRepository) Count(ctx context.Context) (int64, error) {
	return countTable(ctx, r.db, "evaluations")
}

func (r *EvaluationRepository) execOne(ctx context.Context, sql string, args []interface{}, id int64) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("evaluationID", id).Msg("Error executing evaluation statement")
		return fmt.Errorf("error updating evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEvaluationNotFound
	}
	return nil
}
