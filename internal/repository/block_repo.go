package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

const blockFieldKeyConstraint = "blocks_form_field_key"

const blockColumns = `id, form_id, type, label, field_key, position, required, config, created_at, updated_at`

// BlockChanges is the result of reconciling a form's stored blocks with an
// incoming block set.
type BlockChanges struct {
	Delete []uuid.UUID
	Update []*models.Block
	Create []*models.Block
}

// BlockRepository defines the interface for block data operations.
type BlockRepository interface {
	Create(ctx context.Context, block *models.Block) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Block, error)
	ListByForm(ctx context.Context, formID uuid.UUID) ([]*models.Block, error)
	Update(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, id uuid.UUID) error
	Apply(ctx context.Context, formID uuid.UUID, changes BlockChanges) error
}

type blockRepo struct {
	pool *pgxpool.Pool
}

// NewBlockRepository creates a new block repository.
func NewBlockRepository(pool *pgxpool.Pool) BlockRepository {
	return &blockRepo{pool: pool}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanBlock(r row) (*models.Block, error) {
	var b models.Block
	err := r.Scan(
		&b.ID,
		&b.FormID,
		&b.Type,
		&b.Label,
		&b.FieldKey,
		&b.Position,
		&b.Required,
		&b.Config,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func insertBlock(ctx context.Context, q querier, block *models.Block) error {
	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}
	err := q.QueryRow(ctx, `
		INSERT INTO blocks (id, form_id, type, label, field_key, position, required, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		block.ID,
		block.FormID,
		block.Type,
		block.Label,
		block.FieldKey,
		block.Position,
		block.Required,
		jsonObject(block.Config),
	).Scan(&block.CreatedAt, &block.UpdatedAt)
	if isUniqueViolation(err, blockFieldKeyConstraint) {
		return ErrFieldKeyTaken
	}
	return err
}

func updateBlock(ctx context.Context, q querier, block *models.Block) error {
	err := q.QueryRow(ctx, `
		UPDATE blocks SET
			type = $3, label = $4, field_key = $5, position = $6,
			required = $7, config = $8, updated_at = NOW()
		WHERE id = $1 AND form_id = $2
		RETURNING created_at, updated_at`,
		block.ID,
		block.FormID,
		block.Type,
		block.Label,
		block.FieldKey,
		block.Position,
		block.Required,
		jsonObject(block.Config),
	).Scan(&block.CreatedAt, &block.UpdatedAt)
	if isUniqueViolation(err, blockFieldKeyConstraint) {
		return ErrFieldKeyTaken
	}
	return err
}

// Create inserts a new block.
func (r *blockRepo) Create(ctx context.Context, block *models.Block) error {
	return insertBlock(ctx, r.pool, block)
}

// GetByID retrieves a block by ID.
func (r *blockRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	block, err := scanBlock(r.pool.QueryRow(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return block, err
}

// ListByForm lists a form's blocks in render order.
func (r *blockRepo) ListByForm(ctx context.Context, formID uuid.UUID) ([]*models.Block, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE form_id = $1 ORDER BY position, created_at`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := []*models.Block{}
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

// Update overwrites a block's mutable fields.
func (r *blockRepo) Update(ctx context.Context, block *models.Block) error {
	err := updateBlock(ctx, r.pool, block)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

// Delete removes a block. Answers referencing it are kept.
func (r *blockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM blocks WHERE id = $1`, id)
	return err
}

// Apply deletes, updates and creates blocks of one form in a single
// transaction. The field key constraint is deferred, so keys may move
// between blocks within one call.
func (r *blockRepo) Apply(ctx context.Context, formID uuid.UUID, changes BlockChanges) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := applyBlockChanges(ctx, tx, formID, changes); err != nil {
		return err
	}
	return commitBlocks(ctx, tx)
}

// applyBlockChanges writes a reconciled block set inside tx.
func applyBlockChanges(ctx context.Context, tx pgx.Tx, formID uuid.UUID, changes BlockChanges) error {
	if len(changes.Delete) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM blocks WHERE form_id = $1 AND id = ANY($2)`, formID, changes.Delete); err != nil {
			return err
		}
	}
	for _, block := range changes.Update {
		block.FormID = formID
		if err := updateBlock(ctx, tx, block); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
	}
	for _, block := range changes.Create {
		block.FormID = formID
		if err := insertBlock(ctx, tx, block); err != nil {
			return err
		}
	}
	return nil
}

// commitBlocks commits tx. Deferred field key violations surface here.
func commitBlocks(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err, blockFieldKeyConstraint) {
			return ErrFieldKeyTaken
		}
		return err
	}
	return nil
}

// Compile-time check to ensure blockRepo implements BlockRepository.
var _ BlockRepository = (*blockRepo)(nil)
