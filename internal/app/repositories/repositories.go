package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internhub/internal/db"
)

// psql builds statements with PostgreSQL $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	InternRepository       *InternRepository
	RequestRepository      *RequestRepository
	DocumentRepository     *DocumentRepository
	EvaluationRepository   *EvaluationRepository
	NotificationRepository *NotificationRepository
	PlanningRepository     *PlanningRepository
	TemplateRepository     *TemplateRepository
	SettingRepository      *SettingRepository
}

// NewRepositories initializes all repositories on the same connection
func NewRepositories(conn db.DBTX) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(conn),
		TokenRepository:        NewTokenRepository(conn),
		InternRepository:       NewInternRepository(conn),
		RequestRepository:      NewRequestRepository(conn),
		DocumentRepository:     NewDocumentRepository(conn),
		EvaluationRepository:   NewEvaluationRepository(conn),
		NotificationRepository: NewNotificationRepository(conn),
		PlanningRepository:     NewPlanningRepository(conn),
		TemplateRepository:     NewTemplateRepository(conn),
		SettingRepository:      NewSettingRepository(conn),
	}
}

// Scope restricts list queries to the rows a caller may see. Nil fields do
// not restrict.
type Scope struct {
	// TutorID limits rows to interns supervised by this user
	TutorID *int64
	// InternUserID limits rows to the intern owned by this user
	InternUserID *int64
}

// countByColumn reads (key, count) rows produced by a GROUP BY query
func countByColumn(rows pgx.Rows) (map[string]int64, error) {
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

func countTable(ctx context.Context, conn db.DBTX, table string, where ...squirrel.Sqlizer) (int64, error) {
	q := psql.Select("count(*)").From(table)
	for _, w := range where {
		q = q.Where(w)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int64
	if err := conn.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting %s: %w", table, err)
	}
	return n, nil
}
