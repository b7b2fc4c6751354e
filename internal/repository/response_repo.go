package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

const responseColumns = `id, form_id, submitted_at, completion_time_seconds, notes, tags, metadata, updated_at`

// ResponseRepository defines the interface for form response data operations.
type ResponseRepository interface {
	Create(ctx context.Context, resp *models.FormResponse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FormResponse, error)
	ListByForm(ctx context.Context, formID uuid.UUID, offset, limit int) ([]*models.FormResponse, error)
	CountByForm(ctx context.Context, formID uuid.UUID) (int64, error)
	UpdateMeta(ctx context.Context, resp *models.FormResponse) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type responseRepo struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new response repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepo{pool: pool}
}

func scanResponse(r row) (*models.FormResponse, error) {
	var resp models.FormResponse
	err := r.Scan(
		&resp.ID,
		&resp.FormID,
		&resp.SubmittedAt,
		&resp.CompletionTime,
		&resp.Notes,
		&resp.Tags,
		&resp.Metadata,
		&resp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	resp.Answers = []*models.ResponseAnswer{}
	return &resp, nil
}

// Create inserts a response and its answers in one transaction.
func (r *responseRepo) Create(ctx context.Context, resp *models.FormResponse) error {
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO form_responses (id, form_id, completion_time_seconds, notes, tags, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING submitted_at, updated_at`,
		resp.ID,
		resp.FormID,
		resp.CompletionTime,
		resp.Notes,
		stringSlice(resp.Tags),
		jsonObject(resp.Metadata),
	).Scan(&resp.SubmittedAt, &resp.UpdatedAt)
	if err != nil {
		return err
	}

	for _, answer := range resp.Answers {
		if answer.ID == uuid.Nil {
			answer.ID = uuid.New()
		}
		answer.ResponseID = resp.ID

		value, err := json.Marshal(answer.Value)
		if err != nil {
			return fmt.Errorf("encode answer %q: %w", answer.FieldKey, err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO response_answers (id, response_id, block_id, field_key, value)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			answer.ID,
			answer.ResponseID,
			answer.BlockID,
			answer.FieldKey,
			json.RawMessage(value),
		).Scan(&answer.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a response with its answers.
func (r *responseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FormResponse, error) {
	resp, err := scanResponse(r.pool.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM form_responses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachAnswers(ctx, []*models.FormResponse{resp}); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListByForm lists a page of a form's responses, newest first, with answers.
func (r *responseRepo) ListByForm(ctx context.Context, formID uuid.UUID, offset, limit int) ([]*models.FormResponse, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+responseColumns+` FROM form_responses
		WHERE form_id = $1
		ORDER BY submitted_at DESC, id
		LIMIT $2 OFFSET $3`, formID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []*models.FormResponse{}
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachAnswers(ctx, responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) attachAnswers(ctx context.Context, responses []*models.FormResponse) error {
	if len(responses) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*models.FormResponse, len(responses))
	ids := make([]uuid.UUID, 0, len(responses))
	for _, resp := range responses {
		byID[resp.ID] = resp
		ids = append(ids, resp.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, response_id, block_id, field_key, value, created_at
		FROM response_answers
		WHERE response_id = ANY($1)
		ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			answer models.ResponseAnswer
			raw    []byte
		)
		if err := rows.Scan(
			&answer.ID,
			&answer.ResponseID,
			&answer.BlockID,
			&answer.FieldKey,
			&raw,
			&answer.CreatedAt,
		); err != nil {
			return err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &answer.Value); err != nil {
				return fmt.Errorf("decode answer %s: %w", answer.ID, err)
			}
		}
		if resp, ok := byID[answer.ResponseID]; ok {
			resp.Answers = append(resp.Answers, &answer)
		}
	}
	return rows.Err()
}

// CountByForm counts a form's responses.
func (r *responseRepo) CountByForm(ctx context.Context, formID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM form_responses WHERE form_id = $1`, formID).Scan(&count)
	return count, err
}

// UpdateMeta writes the owner-editable fields of a response.
func (r *responseRepo) UpdateMeta(ctx context.Context, resp *models.FormResponse) error {
	return r.pool.QueryRow(ctx, `
		UPDATE form_responses SET notes = $2, tags = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		resp.ID, resp.Notes, stringSlice(resp.Tags),
	).Scan(&resp.UpdatedAt)
}

// Delete removes a response. Its answers are removed by cascade.
func (r *responseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM form_responses WHERE id = $1`, id)
	return err
}

// Compile-time check to ensure responseRepo implements ResponseRepository.
var _ ResponseRepository = (*responseRepo)(nil)
