package repositories

import (
	"context"
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

var planningColumns = []string{
	"p.id", "p.intern_id", "p.title", "COALESCE(p.description, '')", "p.kind",
	"p.start_at", "p.end_at", "p.created_by", "p.created_at", "p.updated_at",
}

// PlanningListParams bounds a planning query. From and To compare against start_at.
type PlanningListParams struct {
	InternID *int64
	From     *time.Time
	To       *time.Time
	Scope    Scope
}

// PlanningRepository handles database operations on planning entries
type PlanningRepository struct {
	db db.DBTX
}

// NewPlanningRepository creates a new PlanningRepository
func NewPlanningRepository(conn db.DBTX) *PlanningRepository {
	return &PlanningRepository{db: conn}
}

func scanPlanning(row pgx.Row) (*models.PlanningEntry, error) {
	var p models.PlanningEntry
	err := row.Scan(
		&p.ID, &p.InternID, &p.Title, &p.Description, &p.Kind,
		&p.StartAt, &p.EndAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPlanningNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a planning entry
func (r *PlanningRepository) Create(ctx context.Context, p *models.PlanningEntry) error {
	sql, args, err := psql.Insert("planning").
		Columns("intern_id", "title", "description", "kind", "start_at", "end_at", "created_by").
		Values(p.InternID, p.Title, p.Description, p.Kind, p.StartAt, p.EndAt, p.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create planning query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("internID", p.InternID).Msg("Error executing create planning query")
		return fmt.Errorf("error creating planning entry: %w", err)
	}
	return nil
}

// GetByID retrieves a planning entry
func (r *PlanningRepository) GetByID(ctx context.Context, id int64) (*models.PlanningEntry, error) {
	sql, args, err := psql.Select(planningColumns...).From("planning p").
		Where(squirrel.Eq{"p.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get planning query: %w", err)
	}

	p, err := scanPlanning(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrPlanningNotFound) {
		logger.Error().Err(err).Int64("planningID", id).Msg("Error retrieving planning entry")
		return nil, fmt.Errorf("error retrieving planning entry: %w", err)
	}
	return p, err
}

// List returns planning entries ordered by start time. Planning is a calendar
// view so it is bounded by dates instead of pages.
func (r *PlanningRepository) List(ctx context.Context, params PlanningListParams) ([]*models.PlanningEntry, error) {
	where := internScopeWhere("i", params.Scope)
	if params.InternID != nil {
		where = append(where, squirrel.Eq{"p.intern_id": *params.InternID})
	}
	if params.From != nil {
		where = append(where, squirrel.GtOrEq{"p.start_at": *params.From})
	}
	if params.To != nil {
		where = append(where, squirrel.Lt{"p.start_at": *params.To})
	}

	sql, args, err := psql.Select(planningColumns...).From("planning p").
		Join("interns i ON i.id = p.intern_id").Where(where).
		OrderBy("p.start_at ASC", "p.id ASC").Limit(500).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list planning query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing planning entries")
		return nil, fmt.Errorf("error listing planning entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.PlanningEntry{}
	for rows.Next() {
		p, err := scanPlanning(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning planning entry: %w", err)
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

// Update writes every mutable column of a planning entry
func (r *PlanningRepository) Update(ctx context.Context, p *models.PlanningEntry) error {
	sql, args, err := psql.Update("planning").
		Set("title", p.Title).
		Set("description", p.Description).
		Set("kind", p.Kind).
		Set("start_at", p.StartAt).
		Set("end_at", p.EndAt).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update planning query: %w", err)
	}
	return r.execOne(ctx, sql, args, p.ID)
}

// Delete removes a planning entry
func (r *PlanningRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("planning").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete planning query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// CountUpcoming counts entries starting at or after the given time
func (r *PlanningRepository) CountUpcoming(ctx context.Context, from time.Time) (int64, error) {
	return countTable(ctx, r.db, "planning", squirrel.GtOrEq{"start_at": from})
}

func (r *PlanningRepository) execOne(ctx context.Context, sql string, args []interface{}, id int64) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("planningID", id).Msg("Error executing planning statement")
		return fmt.Errorf("error updating planning entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPlanningNotFound
	}
	return nil
}
