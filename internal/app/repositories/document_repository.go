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

var documentColumns = []string{
	"d.id", "d.owner_id", "d.request_id", "d.name", "d.mime_type", "d.size",
	"d.storage_path", "d.is_visible", "d.uploaded_by", "d.created_at", "d.updated_at",
}

// DocumentListParams holds filters for listing documents.
// VisibleOnly hides documents whose is_visible flag is off.
type DocumentListParams struct {
	OwnerID     *int64
	RequestID   *int64
	VisibleOnly bool
	Scope       Scope
}

// DocumentRepository handles database operations on document metadata
type DocumentRepository struct {
	db db.DBTX
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(conn db.DBTX) *DocumentRepository {
	return &DocumentRepository{db: conn}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	err := row.Scan(
		&d.ID, &d.OwnerID, &d.RequestID, &d.Name, &d.MimeType, &d.Size,
		&d.StoragePath, &d.IsVisible, &d.UploadedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}

// documentScopeWhere limits documents to those owned by the scoped intern, or
// to the scoped tutor's own documents and those of the interns they supervise
func documentScopeWhere(scope Scope) squirrel.And {
	where := squirrel.And{}
	if scope.InternUserID != nil {
		where = append(where, squirrel.Eq{"d.owner_id": *scope.InternUserID})
	}
	if scope.TutorID != nil {
		where = append(where, squirrel.Or{
			squirrel.Eq{"d.owner_id": *scope.TutorID},
			squirrel.Expr(
				"EXISTS (SELECT 1 FROM interns si WHERE si.user_id = d.owner_id AND si.tutor_id = ?)", *scope.TutorID),
		})
	}
	return where
}

// Create inserts document metadata
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	sql, args, err := psql.Insert("documents").
		Columns("owner_id", "request_id", "name", "mime_type", "size", "storage_path", "is_visible", "uploaded_by").
		Values(doc.OwnerID, doc.RequestID, doc.Name, doc.MimeType, doc.Size, doc.StoragePath, doc.IsVisible, doc.UploadedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create document query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("ownerID", doc.OwnerID).Msg("Error executing create document query")
		return fmt.Errorf("error creating document: %w", err)
	}
	return nil
}

// GetByID retrieves document metadata
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	sql, args, err := psql.Select(documentColumns...).From("documents d").
		Where(squirrel.Eq{"d.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get document query: %w", err)
	}

	doc, err := scanDocument(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrDocumentNotFound) {
		logger.Error().Err(err).Int64("documentID", id).Msg("Error retrieving document")
		return nil, fmt.Errorf("error retrieving document: %w", err)
	}
	return doc, err
}

// List returns one page of documents, newest first
func (r *DocumentRepository) List(ctx context.Context, params DocumentListParams, offset, limit uint64) ([]*models.Document, int64, error) {
	where := documentScopeWhere(params.Scope)
	if params.OwnerID != nil {
		where = append(where, squirrel.Eq{"d.owner_id": *params.OwnerID})
	}
	if params.RequestID != nil {
		where = append(where, squirrel.Eq{"d.request_id": *params.RequestID})
	}
	if params.VisibleOnly {
		where = append(where, squirrel.Eq{"d.is_visible": true})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("documents d").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count documents query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting documents")
		return nil, 0, fmt.Errorf("error counting documents: %w", err)
	}
	if total == 0 {
		return []*models.Document{}, 0, nil
	}

	sql, args, err := psql.Select(documentColumns...).From("documents d").Where(where).
		OrderBy("d.created_at DESC", "d.id DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list documents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing documents")
		return nil, 0, fmt.Errorf("error listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0, limit)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

// SetVisibility toggles whether the owner can see the document
func (r *DocumentRepository) SetVisibility(ctx context.Context, id int64, visible bool) error {
	sql, args, err := psql.Update("documents").
		Set("is_visible", visible).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build document visibility query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// Delete removes document metadata
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("documents").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete document query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// Count returns the total number of documents
func (r *DocumentRepository) Count(ctx context.Context) (int64, error) {
	return countTable(ctx, r.db, "documents")
}

func (r *DocumentRepository) execOne(ctx context.Context, sql string, args []interface{}, id int64) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("documentID", id).Msg("Error executing document statement")
		return fmt.Errorf("error updating document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDocumentNotFound
	}
	return nil
}
