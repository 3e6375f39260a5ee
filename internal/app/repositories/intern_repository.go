package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/db"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

var internColumns = []string{
	"i.id", "i.user_id", "i.tutor_id", "i.company", "i.position", "i.department",
	"i.start_date", "i.end_date", "i.status", "i.created_at", "i.updated_at",
	"u.first_name", "u.last_name", "u.email",
	"COALESCE(t.first_name || ' ' || t.last_name, '')",
}

// InternListParams holds filters for listing interns
type InternListParams struct {
	Status  *models.InternStatus
	TutorID *int64
	Search  string
	Scope   Scope
}

// InternRepository handles database operations on internships
type InternRepository struct {
	db db.DBTX
}

// NewInternRepository creates a new InternRepository
func NewInternRepository(conn db.DBTX) *InternRepository {
	return &InternRepository{db: conn}
}

func internSelect() squirrel.SelectBuilder {
	return psql.Select(internColumns...).
		From("interns i").
		Join("users u ON u.id = i.user_id").
		LeftJoin("users t ON t.id = i.tutor_id")
}

func scanIntern(row pgx.Row) (*models.Intern, error) {
	var in models.Intern
	var department *string
	err := row.Scan(
		&in.ID, &in.UserID, &in.TutorID, &in.Company, &in.Position, &department,
		&in.StartDate, &in.EndDate, &in.Status, &in.CreatedAt, &in.UpdatedAt,
		&in.FirstName, &in.LastName, &in.Email, &in.TutorName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInternNotFound
		}
		return nil, err
	}
	if department != nil {
		in.Department = *department
	}
	return &in, nil
}

// internScopeWhere turns a caller scope into a predicate on the interns table
func internScopeWhere(alias string, scope Scope) squirrel.And {
	where := squirrel.And{}
	if scope.TutorID != nil {
		where = append(where, squirrel.Eq{alias + ".tutor_id": *scope.TutorID})
	}
	if scope.InternUserID != nil {
		where = append(where, squirrel.Eq{alias + ".user_id": *scope.InternUserID})
	}
	return where
}

// Create inserts an intern. A second intern for the same user violates the
// unique index on user_id and the raw database error is returned.
func (r *InternRepository) Create(ctx context.Context, intern *models.Intern) error {
	sql, args, err := psql.Insert("interns").
		Columns("user_id", "tutor_id", "company", "position", "department", "start_date", "end_date", "status").
		Values(intern.UserID, intern.TutorID, intern.Company, intern.Position, intern.Department,
			intern.StartDate, intern.EndDate, intern.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create intern query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&intern.ID, &intern.CreatedAt, &intern.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("userID", intern.UserID).Msg("Error executing create intern query")
		return fmt.Errorf("error creating intern: %w", err)
	}
	return nil
}

// GetByID retrieves an intern with its user and tutor names
func (r *InternRepository) GetByID(ctx context.Context, id int64) (*models.Intern, error) {
	return r.getOne(ctx, squirrel.Eq{"i.id": id})
}

// GetByUserID retrieves the intern record owned by a user
func (r *InternRepository) GetByUserID(ctx context.Context, userID int64) (*models.Intern, error) {
	return r.getOne(ctx, squirrel.Eq{"i.user_id": userID})
}

func (r *InternRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Intern, error) {
	sql, args, err := internSelect().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get intern query: %w", err)
	}

	in, err := scanIntern(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrInternNotFound) {
		logger.Error().Err(err).Msg("Error retrieving intern")
		return nil, fmt.Errorf("error retrieving intern: %w", err)
	}
	return in, err
}

// List returns one page of interns matching the filters and scope
func (r *InternRepository) List(ctx context.Context, params InternListParams, offset, limit uint64) ([]*models.Intern, int64, error) {
	where := internScopeWhere("i", params.Scope)
	if params.Status != nil {
		where = append(where, squirrel.Eq{"i.status": *params.Status})
	}
	if params.TutorID != nil {
		where = append(where, squirrel.Eq{"i.tutor_id": *params.TutorID})
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		where = append(where, squirrel.Or{
			squirrel.Like{"lower(u.first_name)": like},
			squirrel.Like{"lower(u.last_name)": like},
			squirrel.Like{"lower(i.company)": like},
		})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("interns i").
		Join("users u ON u.id = i.user_id").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count interns query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting interns")
		return nil, 0, fmt.Errorf("error counting interns: %w", err)
	}
	if total == 0 {
		return []*models.Intern{}, 0, nil
	}

	sql, args, err := internSelect().Where(where).
		OrderBy("i.start_date DESC", "i.id DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list interns query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing interns")
		return nil, 0, fmt.Errorf("error listing interns: %w", err)
	}
	defer rows.Close()

	interns := make([]*models.Intern, 0, limit)
	for rows.Next() {
		in, err := scanIntern(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning intern: %w", err)
		}
		interns = append(interns, in)
	}
	return interns, total, rows.Err()
}

// Update writes every mutable column of an intern
func (r *InternRepository) Update(ctx context.Context, intern *models.Intern) error {
	sql, args, err := psql.Update("interns").
		Set("tutor_id", intern.TutorID).
		Set("company", intern.Company).
		Set("position", intern.Position).
		Set("department", intern.Department).
		Set("start_date", intern.StartDate).
		Set("end_date", intern.EndDate).
		Set("status", intern.Status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": intern.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update intern query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("internID", intern.ID).Msg("Error executing update intern query")
		return fmt.Errorf("error updating intern: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInternNotFound
	}
	return nil
}

// Delete removes an intern
func (r *InternRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("interns").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete intern query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("internID", id).Msg("Error executing delete intern query")
		return fmt.Errorf("error deleting intern: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInternNotFound
	}
	return nil
}

// CompleteExpired marks active internships whose end date is before the
// given day as done and returns how many rows changed
func (r *InternRepository) CompleteExpired(ctx context.Context, today time.Time) (int64, error) {
	sql, args, err := psql.Update("interns").
		Set("status", models.InternStatusDone).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"status": models.InternStatusActive}).
		Where(squirrel.Lt{"end_date": today}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build complete interns query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error completing expired interns")
		return 0, fmt.Errorf("error completing interns: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountByStatus groups interns by status
func (r *InternRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	sql, args, err := psql.Select("status", "count(*)").From("interns").GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count interns query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting interns by status: %w", err)
	}
	return countByColumn(rows)
}
