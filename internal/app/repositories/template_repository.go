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
	"github.com/yigit/internhub/internal/pkg/dberrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

const templatesNameConstraint = "templates_name_key"

var templateColumns = []string{"id", "name", "kind", "content", "created_by", "created_at", "updated_at"}

// TemplateRepository handles database operations on document templates
type TemplateRepository struct {
	db db.DBTX
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(conn db.DBTX) *TemplateRepository {
	return &TemplateRepository{db: conn}
}

func scanTemplate(row pgx.Row) (*models.DocumentTemplate, error) {
	var t models.DocumentTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Kind, &t.Content, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func duplicateTemplateName(err error) error {
	if dberrors.IsDuplicateConstraintError(err, templatesNameConstraint) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "A template with this name already exists")
	}
	return nil
}

// Create inserts a template
func (r *TemplateRepository) Create(ctx context.Context, t *models.DocumentTemplate) error {
	sql, args, err := psql.Insert("templates").
		Columns("name", "kind", "content", "created_by").
		Values(t.Name, t.Kind, t.Content, t.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create template query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if dup := duplicateTemplateName(err); dup != nil {
			return dup
		}
		logger.Error().Err(err).Str("name", t.Name).Msg("Error executing create template query")
		return fmt.Errorf("error creating template: %w", err)
	}
	return nil
}

// GetByID retrieves a template
func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*models.DocumentTemplate, error) {
	return r.getOne(ctx, psql.Select(templateColumns...).From("templates").Where(squirrel.Eq{"id": id}))
}

// GetDefaultByKind returns the oldest template of a kind
func (r *TemplateRepository) GetDefaultByKind(ctx context.Context, kind models.TemplateKind) (*models.DocumentTemplate, error) {
	return r.getOne(ctx, psql.Select(templateColumns...).From("templates").
		Where(squirrel.Eq{"kind": kind}).OrderBy("id ASC"))
}

func (r *TemplateRepository) getOne(ctx context.Context, q squirrel.SelectBuilder) (*models.DocumentTemplate, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get template query: %w", err)
	}

	t, err := scanTemplate(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrTemplateNotFound) {
		logger.Error().Err(err).Msg("Error retrieving template")
		return nil, fmt.Errorf("error retrieving template: %w", err)
	}
	return t, err
}

// List returns every template, optionally of one kind
func (r *TemplateRepository) List(ctx context.Context, kind *models.TemplateKind) ([]*models.DocumentTemplate, error) {
	q := psql.Select(templateColumns...).From("templates").OrderBy("kind", "name")
	if kind != nil {
		q = q.Where(squirrel.Eq{"kind": *kind})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list templates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing templates")
		return nil, fmt.Errorf("error listing templates: %w", err)
	}
	defer rows.Close()

	out := []*models.DocumentTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update writes name, kind and content
func (r *TemplateRepository) Update(ctx context.Context, t *models.DocumentTemplate) error {
	sql, args, err := psql.Update("templates").
		Set("name", t.Name).
		Set("kind", t.Kind).
		Set("content", t.Content).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update template query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dup := duplicateTemplateName(err); dup != nil {
			return dup
		}
		logger.Error().Err(err).Int64("templateID", t.ID).Msg("Error executing update template query")
		return fmt.Errorf("error updating template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTemplateNotFound
	}
	return nil
}

// Delete removes a template
func (r *TemplateRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("templates").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete template query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("templateID", id).Msg("Error executing delete template query")
		return fmt.Errorf("error deleting template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTemplateNotFound
	}
	return nil
}

// CreateIfMissing inserts a template unless one with the same name exists
func (r *TemplateRepository) CreateIfMissing(ctx context.Context, t *models.DocumentTemplate) (bool, error) {
	sql, args, err := psql.Insert("templates").
		Columns("name", "kind", "content").
		Values(t.Name, t.Kind, t.Content).
		Suffix("ON CONFLICT (name) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build seed template query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error seeding template %s: %w", t.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}
