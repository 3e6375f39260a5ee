package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestUserRepository_GetByAuthID(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()
	hash := "hash"
	login := now.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE auth_id = $1 LIMIT 1")).
		WithArgs("sub-1").
		WillReturnRows(mock.NewRows(userColumns).AddRow(
			int64(7), "sub-1", "jane@example.com", &hash, "Jane", "Doe",
			models.RoleTutor, true, &login, now, now,
		))

	user, err := repo.GetByAuthID(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, models.RoleTutor, user.Role)
	assert.Equal(t, "Jane Doe", user.FullName())
}

func TestUserRepository_GetByAuthID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE auth_id = $1")).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByAuthID(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("sub-2", "jane@example.com", pgxmock.AnyArg(), "Jane", "Doe", models.RoleIntern, true).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: usersEmailConstraint})

	err := repo.Create(context.Background(), &models.User{
		AuthID: "sub-2", Email: "Jane@Example.com", FirstName: "Jane", LastName: "Doe",
		Role: models.RoleIntern, IsActive: true,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestUserRepository_SetActive_TouchesOnlyActiveFlag(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(false, pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetActive(context.Background(), 3, false))
}

func TestUserRepository_SetActive_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active")).
		WithArgs(true, pgxmock.AnyArg(), int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.SetActive(context.Background(), 99, true), apperrors.ErrUserNotFound)
}

func TestUserRepository_ListIDsByRole(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE is_active = $1 AND role = $2 ORDER BY id")).
		WithArgs(true, models.RoleTutor).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(4)).AddRow(int64(9)))

	ids, err := repo.ListIDsByRole(context.Background(), models.RoleTutor, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 9}, ids)
}
