package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/learnhub/backend/internal/db"
	"github.com/learnhub/backend/internal/models"
)

// PostgresTemplateRepository provides PostgreSQL-backed persistence for email templates.
type PostgresTemplateRepository struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgresTemplateRepository constructs a template repository backed by PostgreSQL.
func NewPostgresTemplateRepository(pool db.Pool) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

const templateColumns = `id, owner_id, name, subject, html_content, template_type, is_active, created_at, updated_at`

// Create inserts a template, assigning id and timestamps when absent.
func (r *PostgresTemplateRepository) Create(ctx context.Context, tmpl models.EmailTemplate) (models.EmailTemplate, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.EmailTemplate{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if strings.TrimSpace(tmpl.ID) == "" {
		tmpl.ID = uuid.NewString()
	}
	now := r.now()
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	tmpl.UpdatedAt = now

	_, err = conn.Exec(ctx, `
        INSERT INTO email_templates (`+templateColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, tmpl.ID, tmpl.OwnerID, tmpl.Name, tmpl.Subject, tmpl.HTMLContent, string(tmpl.Type), tmpl.IsActive, tmpl.CreatedAt, tmpl.UpdatedAt)
	if err != nil {
		return models.EmailTemplate{}, fmt.Errorf("insert email template: %w", err)
	}

	return tmpl, nil
}

// Get fetches a template by id.
func (r *PostgresTemplateRepository) Get(ctx context.Context, id string) (models.EmailTemplate, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.EmailTemplate{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, id)
	tmpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.EmailTemplate{}, ErrNotFound
		}
		return models.EmailTemplate{}, fmt.Errorf("select email template: %w", err)
	}
	return tmpl, nil
}

// ListByOwner returns the owner's templates, newest first.
func (r *PostgresTemplateRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.EmailTemplate, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+templateColumns+`
        FROM email_templates
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query email templates: %w", err)
	}
	defer rows.Close()

	templates := []models.EmailTemplate{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email template: %w", err)
		}
		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email templates: %w", err)
	}

	return templates, nil
}

// HasAny reports whether the owner has at least one template.
func (r *PostgresTemplateRepository) HasAny(ctx context.Context, ownerID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM email_templates WHERE owner_id = $1)`, ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email templates: %w", err)
	}
	return exists, nil
}

// Update overwrites the editable fields of an existing template.
func (r *PostgresTemplateRepository) Update(ctx context.Context, tmpl models.EmailTemplate) (models.EmailTemplate, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.EmailTemplate{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE email_templates
        SET name = $2, subject = $3, html_content = $4, template_type = $5, is_active = $6, updated_at = $7
        WHERE id = $1
        RETURNING `+templateColumns,
		tmpl.ID, tmpl.Name, tmpl.Subject, tmpl.HTMLContent, string(tmpl.Type), tmpl.IsActive, r.now())

	updated, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.EmailTemplate{}, ErrNotFound
		}
		return models.EmailTemplate{}, fmt.Errorf("update email template: %w", err)
	}
	return updated, nil
}

func scanTemplate(row pgx.Row) (models.EmailTemplate, error) {
	var (
		tmpl     models.EmailTemplate
		tmplType string
	)
	err := row.Scan(&tmpl.ID, &tmpl.OwnerID, &tmpl.Name, &tmpl.Subject, &tmpl.HTMLContent, &tmplType,
		&tmpl.IsActive, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	tmpl.Type = models.TemplateType(tmplType)
	tmpl.CreatedAt = tmpl.CreatedAt.UTC()
	tmpl.UpdatedAt = tmpl.UpdatedAt.UTC()
	return tmpl, err
}

var _ TemplateRepository = (*PostgresTemplateRepository)(nil)
