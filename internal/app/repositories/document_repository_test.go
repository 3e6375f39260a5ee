package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tutorDocumentScope = "WHERE ((d.owner_id = $1 OR EXISTS (SELECT 1 FROM interns si WHERE si.user_id = d.owner_id AND si.tutor_id = $2)))"

func TestDocumentRepository_List_TutorSeesOwnAndSupervised(t *testing.T) {
	mock := newMock(t)
	repo := NewDocumentRepository(mock)
	tutor := int64(7)
	now := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM documents d " + tutorDocumentScope)).
		WithArgs(tutor, tutor).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(2)))

	columns := []string{"id", "owner_id", "request_id", "name", "mime_type", "size",
		"storage_path", "is_visible", "uploaded_by", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM documents d " + tutorDocumentScope + " ORDER BY d.created_at DESC, d.id DESC")).
		WithArgs(tutor, tutor).
		WillReturnRows(mock.NewRows(columns).
			AddRow(int64(2), tutor, (*int64)(nil), "review.pdf", "application/pdf", int64(10), "documents/b.pdf", true, tutor, now, now).
			AddRow(int64(1), int64(21), (*int64)(nil), "report.pdf", "application/pdf", int64(20), "documents/a.pdf", true, int64(21), now, now))

	docs, total, err := repo.List(context.Background(), DocumentListParams{Scope: Scope{TutorID: &tutor}}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, docs, 2)
	assert.Equal(t, tutor, docs[0].OwnerID)
	assert.Equal(t, int64(21), docs[1].OwnerID)
}

func TestDocumentScopeWhere_Intern(t *testing.T) {
	owner := int64(21)
	sql, args, err := psql.Select("d.id").From("documents d").
		Where(documentScopeWhere(Scope{InternUserID: &owner})).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT d.id FROM documents d WHERE (d.owner_id = $1)", sql)
	assert.Equal(t, []interface{}{owner}, args)
}
