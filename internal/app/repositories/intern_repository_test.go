package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

func TestInternRepository_Create_DuplicateUserIsUnclassified(t *testing.T) {
	mock := newMock(t)
	repo := NewInternRepository(mock)
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO interns")).
		WithArgs(int64(5), (*int64)(nil), "Acme", "Developer", "", start, end, models.InternStatusActive).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "interns_user_id_key"})

	err := repo.Create(context.Background(), &models.Intern{
		UserID: 5, Company: "Acme", Position: "Developer",
		StartDate: start, EndDate: end, Status: models.InternStatusActive,
	})
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
	assert.NotErrorIs(t, err, apperrors.ErrConflict)
	assert.NotErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestInternRepository_CompleteExpired(t *testing.T) {
	mock := newMock(t)
	repo := NewInternRepository(mock)
	today := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE interns SET status = $1, updated_at = $2 WHERE status = $3 AND end_date < $4")).
		WithArgs(models.InternStatusDone, pgxmock.AnyArg(), models.InternStatusActive, today).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.CompleteExpired(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestInternRepository_List_EmptyScopeShortCircuits(t *testing.T) {
	mock := newMock(t)
	repo := NewInternRepository(mock)
	tutor := int64(12)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM interns i JOIN users u ON u.id = i.user_id WHERE (i.tutor_id = $1)")).
		WithArgs(tutor).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(0)))

	items, total, err := repo.List(context.Background(), InternListParams{Scope: Scope{TutorID: &tutor}}, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestInternRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewInternRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM interns WHERE id = $1")).
		WithArgs(int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 8), apperrors.ErrInternNotFound)
}
