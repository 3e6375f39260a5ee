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
	"github.com/yigit/internhub/internal/pkg/dberrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

const (
	usersEmailConstraint  = "users_email_key"
	usersAuthIDConstraint = "users_auth_id_key"
)

var userColumns = []string{
	"id", "auth_id", "email", "password_hash", "first_name", "last_name",
	"role", "is_active", "last_login_at", "created_at", "updated_at",
}

// UserListParams holds filters for listing users
type UserListParams struct {
	Role   *models.Role
	Active *bool
	Search string
	Page   int
	Size   int
}

// UserRepository handles database operations on users
type UserRepository struct {
	db db.DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn db.DBTX) *UserRepository {
	return &UserRepository{db: conn}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.AuthID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		logger.Error().Err(err).Msg("Error retrieving user")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, err
}

// Create inserts a user and fills in the generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := psql.Insert("users").
		Columns("auth_id", "email", "password_hash", "first_name", "last_name", "role", "is_active").
		Values(user.AuthID, strings.ToLower(user.Email), user.Password, user.FirstName, user.LastName, user.Role, user.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsDuplicateConstraintError(err, usersAuthIDConstraint) {
			return apperrors.NewCustomError(apperrors.ErrConflict, "Identity is already linked to another user")
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by primary key
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByAuthID retrieves the profile linked to an identity provider subject
func (r *UserRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"auth_id": authID})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(email)})
}

// EmailExists checks whether the email is already taken
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sql, args, err := psql.Select("1").From("users").Where(squirrel.Eq{"email": strings.ToLower(email)}).Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// List returns one page of users matching the filters
func (r *UserRepository) List(ctx context.Context, params UserListParams, offset, limit uint64) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if params.Role != nil {
		where = append(where, squirrel.Eq{"role": *params.Role})
	}
	if params.Active != nil {
		where = append(where, squirrel.Eq{"is_active": *params.Active})
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		where = append(where, squirrel.Or{
			squirrel.Like{"lower(email)": like},
			squirrel.Like{"lower(first_name)": like},
			squirrel.Like{"lower(last_name)": like},
		})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}
	if total == 0 {
		return []*models.User{}, 0, nil
	}

	sql, args, err := psql.Select(userColumns...).From("users").Where(where).
		OrderBy("created_at DESC", "id DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// ListIDsByRole returns ids of users with the role, optionally only active ones
func (r *UserRepository) ListIDsByRole(ctx context.Context, role models.Role, activeOnly bool) ([]int64, error) {
	where := squirrel.Eq{"role": role}
	if activeOnly {
		where["is_active"] = true
	}
	sql, args, err := psql.Select("id").From("users").Where(where).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list user ids query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("role", string(role)).Msg("Error listing user ids by role")
		return nil, fmt.Errorf("error listing user ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// UpdateProfile writes the editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	sql, args, err := psql.Update("users").
		Set("email", strings.ToLower(user.Email)).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}
	return r.execOne(ctx, sql, args, user.ID)
}

// SetActive flips the is_active flag and nothing else
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	sql, args, err := psql.Update("users").
		Set("is_active", active).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set active query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// SetRole assigns a new role
func (r *UserRepository) SetRole(ctx context.Context, id int64, role models.Role) error {
	sql, args, err := psql.Update("users").
		Set("role", role).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set role query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// UpdateLastLogin stamps the last successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	sql, args, err := psql.Update("users").Set("last_login_at", time.Now()).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// Delete removes the user row. Rows still referencing the user make the
// database refuse; that is reported as a validation error.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}
	err = r.execOne(ctx, sql, args, id)
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.NewValidationError("User still has related records; deactivate the account instead")
	}
	return err
}

// CountByRole groups users by role
func (r *UserRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	sql, args, err := psql.Select("role", "count(*)").From("users").GroupBy("role").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count by role query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting users by role: %w", err)
	}
	return countByColumn(rows)
}

func (r *UserRepository) execOne(ctx context.Context, sql string, args []interface{}, id int64) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing user statement")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
