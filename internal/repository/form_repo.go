package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

const formSlugConstraint = "forms_slug_key"

const formColumns = `id, owner_id, title, description, slug, status, theme, settings, published_at, created_at, updated_at`

// FormRepository defines the interface for form data operations.
type FormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error)
	GetBySlug(ctx context.Context, slug string) (*models.Form, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Form, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (total int, published int, err error)
	UpdateWithBlocks(ctx context.Context, form *models.Form, changes *BlockChanges) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type formRepo struct {
	pool *pgxpool.Pool
}

// NewFormRepository creates a new form repository.
func NewFormRepository(pool *pgxpool.Pool) FormRepository {
	return &formRepo{pool: pool}
}

func scanForm(r row) (*models.Form, error) {
	var f models.Form
	err := r.Scan(
		&f.ID,
		&f.OwnerID,
		&f.Title,
		&f.Description,
		&f.Slug,
		&f.Status,
		&f.Theme,
		&f.Settings,
		&f.PublishedAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a form together with its analytics row in one transaction.
// A slug collision yields ErrSlugTaken.
func (r *formRepo) Create(ctx context.Context, form *models.Form) error {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	if form.Status == "" {
		form.Status = models.FormStatusDraft
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO forms (id, owner_id, title, description, slug, status, theme, settings, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		form.ID,
		form.OwnerID,
		form.Title,
		form.Description,
		form.Slug,
		form.Status,
		jsonObject(form.Theme),
		jsonObject(form.Settings),
		form.PublishedAt,
	).Scan(&form.CreatedAt, &form.UpdatedAt)
	if isUniqueViolation(err, formSlugConstraint) {
		return ErrSlugTaken
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO form_analytics (form_id) VALUES ($1)`, form.ID); err != nil {
		return fmt.Errorf("create analytics row: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a form by ID.
func (r *formRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	form, err := scanForm(r.pool.QueryRow(ctx, `SELECT `+formColumns+` FROM forms WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return form, err
}

// GetBySlug retrieves a form by its public slug.
func (r *formRepo) GetBySlug(ctx context.Context, slug string) (*models.Form, error) {
	form, err := scanForm(r.pool.QueryRow(ctx, `SELECT `+formColumns+` FROM forms WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return form, err
}

// SlugExists checks if any form uses the slug.
func (r *formRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM forms WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// ListByOwner lists an owner's forms, most recently updated first.
func (r *formRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Form, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+formColumns+` FROM forms WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []*models.Form{}
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

// CountByOwner counts an owner's forms and how many are published.
func (r *formRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, int, error) {
	var total, published int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'published')
		FROM forms WHERE owner_id = $1`, ownerID).Scan(&total, &published)
	return total, published, err
}

// UpdateWithBlocks writes the form's scalar fields and, when changes is
// non-nil, its reconciled block set in one transaction. A slug collision
// yields ErrSlugTaken and a field key collision ErrFieldKeyTaken; on any
// error neither the form row nor its blocks change.
func (r *formRepo) UpdateWithBlocks(ctx context.Context, form *models.Form, changes *BlockChanges) error {
	if changes == nil {
		return updateForm(ctx, r.pool, form)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := updateForm(ctx, tx, form); err != nil {
		return err
	}
	if err := applyBlockChanges(ctx, tx, form.ID, *changes); err != nil {
		return err
	}
	return commitBlocks(ctx, tx)
}

func updateForm(ctx context.Context, q querier, form *models.Form) error {
	err := q.QueryRow(ctx, `
		UPDATE forms SET
			title = $2, description = $3, slug = $4, status = $5,
			theme = $6, settings = $7, published_at = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		form.ID,
		form.Title,
		form.Description,
		form.Slug,
		form.Status,
		jsonObject(form.Theme),
		jsonObject(form.Settings),
		form.PublishedAt,
	).Scan(&form.UpdatedAt)
	if isUniqueViolation(err, formSlugConstraint) {
		return ErrSlugTaken
	}
	return err
}

// Delete removes a form and everything that belongs to it in one
// transaction. Answers go with their responses through ON DELETE CASCADE.
func (r *formRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	statements := []string{
		`DELETE FROM form_responses WHERE form_id = $1`,
		`DELETE FROM blocks WHERE form_id = $1`,
		`DELETE FROM form_analytics WHERE form_id = $1`,
		`DELETE FROM daily_stats WHERE form_id = $1`,
		`DELETE FROM forms WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Compile-time check to ensure formRepo implements FormRepository.
var _ FormRepository = (*formRepo)(nil)
