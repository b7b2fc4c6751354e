package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/repository"
)

// planBlockChanges reconciles the stored blocks of a form with the desired
// set. Inputs whose ID matches a stored block update it, the rest are
// created, and stored blocks not named by any input are deleted.
// Field keys must be unique across the resulting set; inputs without one
// keep their current key or get a generated one.
func planBlockChanges(existing []*models.Block, inputs []BlockInput) (repository.BlockChanges, error) {
	var changes repository.BlockChanges

	if len(inputs) > maxBlocks {
		return changes, apierrors.NewValidationError("blocks", fmt.Sprintf("a form can have at most %d blocks", maxBlocks))
	}

	stored := make(map[uuid.UUID]*models.Block, len(existing))
	for _, b := range existing {
		stored[b.ID] = b
	}

	// Explicit keys are reserved first so generated keys never take them.
	used := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		key := strings.TrimSpace(in.FieldKey)
		if key == "" {
			continue
		}
		if used[key] {
			return changes, duplicateFieldKey(fmt.Sprintf("blocks[%d].field_key", i), key)
		}
		used[key] = true
	}

	matched := make(map[uuid.UUID]bool, len(inputs))
	for i, in := range inputs {
		if !in.Type.Valid() {
			return changes, apierrors.NewValidationError(
				fmt.Sprintf("blocks[%d].type", i),
				fmt.Sprintf("unknown block type %q", in.Type),
			)
		}

		position := i
		if in.Position != nil {
			position = *in.Position
		}

		var current *models.Block
		if in.ID != nil {
			if matched[*in.ID] {
				return changes, apierrors.NewValidationError(
					fmt.Sprintf("blocks[%d].id", i),
					"block listed more than once",
				)
			}
			current = stored[*in.ID]
		}

		block := &models.Block{
			Type:     in.Type,
			Label:    in.Label,
			FieldKey: strings.TrimSpace(in.FieldKey),
			Position: position,
			Required: in.Required,
			Config:   in.Config,
		}

		if current != nil {
			matched[current.ID] = true
			block.ID = current.ID
			block.FormID = current.FormID
			block.CreatedAt = current.CreatedAt
			if block.FieldKey == "" {
				if used[current.FieldKey] {
					block.FieldKey = generateFieldKey(block.Type, used)
				} else {
					block.FieldKey = current.FieldKey
					used[block.FieldKey] = true
				}
			}
			changes.Update = append(changes.Update, block)
			continue
		}

		block.ID = uuid.New()
		if block.FieldKey == "" {
			block.FieldKey = generateFieldKey(block.Type, used)
		}
		changes.Create = append(changes.Create, block)
	}

	for _, b := range existing {
		if !matched[b.ID] {
			changes.Delete = append(changes.Delete, b.ID)
		}
	}

	return changes, nil
}

// generateFieldKey returns a key of the form <type>_<8 hex chars> that is
// not in used, and marks it used.
func generateFieldKey(t models.BlockType, used map[string]bool) string {
	for {
		key := string(t) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if !used[key] {
			used[key] = true
			return key
		}
	}
}

func duplicateFieldKey(field, key string) error {
	return apierrors.NewValidationError(field, fmt.Sprintf("field key %q is used by another block", key))
}
