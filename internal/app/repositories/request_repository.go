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

var requestColumns = []string{
	"r.id", "r.intern_id", "r.tutor_id", "r.type", "r.title", "COALESCE(r.description, '')",
	"r.status", "r.response", "r.responded_by", "r.responded_at", "r.created_at", "r.updated_at",
	"i.user_id", "u.first_name || ' ' || u.last_name",
}

// RequestListParams holds filters for listing requests
type RequestListParams struct {
	Status   *models.RequestStatus
	Type     *models.RequestType
	InternID *int64
	Scope    Scope
}

// RequestRepository handles database operations on intern requests
type RequestRepository struct {
	db db.DBTX
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(conn db.DBTX) *RequestRepository {
	return &RequestRepository{db: conn}
}

func requestSelect() squirrel.SelectBuilder {
	return psql.Select(requestColumns...).
		From("requests r").
		Join("interns i ON i.id = r.intern_id").
		Join("users u ON u.id = i.user_id")
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var req models.Request
	err := row.Scan(
		&req.ID, &req.InternID, &req.TutorID, &req.Type, &req.Title, &req.Description,
		&req.Status, &req.Response, &req.RespondedBy, &req.RespondedAt, &req.CreatedAt, &req.UpdatedAt,
		&req.InternUserID, &req.InternName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create inserts a request
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	sql, args, err := psql.Insert("requests").
		Columns("intern_id", "tutor_id", "type", "title", "description", "status").
		Values(req.InternID, req.TutorID, req.Type, req.Title, req.Description, req.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create request query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("internID", req.InternID).Msg("Error executing create request query")
		return fmt.Errorf("error creating request: %w", err)
	}
	return nil
}

// GetByID retrieves a request with the owning intern's user id and name
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	sql, args, err := requestSelect().Where(squirrel.Eq{"r.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get request query: %w", err)
	}

	req, err := scanRequest(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrRequestNotFound) {
		logger.Error().Err(err).Int64("requestID", id).Msg("Error retrieving request")
		return nil, fmt.Errorf("error retrieving request: %w", err)
	}
	return req, err
}

// List returns one page of requests, newest first
func (r *RequestRepository) List(ctx context.Context, params RequestListParams, offset, limit uint64) ([]*models.Request, int64, error) {
	where := internScopeWhere("i", params.Scope)
	if params.Status != nil {
		where = append(where, squirrel.Eq{"r.status": *params.Status})
	}
	if params.Type != nil {
		where = append(where, squirrel.Eq{"r.type": *params.Type})
	}
	if params.InternID != nil {
		where = append(where, squirrel.Eq{"r.intern_id": *params.InternID})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("requests r").
		Join("interns i ON i.id = r.intern_id").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count requests query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting requests")
		return nil, 0, fmt.Errorf("error counting requests: %w", err)
	}
	if total == 0 {
		return []*models.Request{}, 0, nil
	}

	sql, args, err := requestSelect().Where(where).
		OrderBy("r.created_at DESC", "r.id DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list requests query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing requests")
		return nil, 0, fmt.Errorf("error listing requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.Request, 0, limit)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

// UpdateContent writes type, title and description
func (r *RequestRepository) UpdateContent(ctx context.Context, req *models.Request) error {
	sql, args, err := psql.Update("requests").
		Set("type", req.Type).
		Set("title", req.Title).
		Set("description", req.Description).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": req.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update request query: %w", err)
	}
	return r.execOne(ctx, sql, args, req.ID)
}

// UpdateStatus records a status change with the responder and optional answer
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, response *string, respondedBy int64) error {
	now := time.Now()
	sql, args, err := psql.Update("requests").
		Set("status", status).
		Set("response", response).
		Set("responded_by", respondedBy).
		Set("responded_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update request status query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// Delete removes a request
func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("requests").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete request query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// CountByStatus groups requests by status
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	sql, args, err := psql.Select("status", "count(*)").From("requests").GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count requests query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting requests by status: %w", err)
	}
	return countByColumn(rows)
}

func (r *RequestRepository) execOne(ctx context.Context, sql string, args []interface{}, id int64) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("requestID", id).Msg("Error executing request statement")
		return fmt.Errorf("error updating request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRequestNotFound
	}
	return nil
}
