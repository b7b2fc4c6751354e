package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/Karan-Salvi/FormVista-sub000/internal/cache"
	"github.com/Karan-Salvi/FormVista-sub000/internal/config"
	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/ulid"
	"github.com/Karan-Salvi/FormVista-sub000/internal/repository"
)

const (
	maxSlugLength   = 80
	slugSuffixLen   = 6
	maxSlugAttempts = 5
	maxBlocks       = 200
)

// FormService defines the interface for form and block operations.
type FormService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateFormRequest) (*models.FormDetail, error)
	Get(ctx context.Context, ownerID, formID uuid.UUID) (*models.FormDetail, error)
	GetPublic(ctx context.Context, slug string) (*models.PublicForm, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*models.Form, error)
	Update(ctx context.Context, ownerID, formID uuid.UUID, req UpdateFormRequest) (*models.FormDetail, error)
	Delete(ctx context.Context, ownerID, formID uuid.UUID) error

	ListBlocks(ctx context.Context, ownerID, formID uuid.UUID) ([]*models.Block, error)
	AddBlock(ctx context.Context, ownerID, formID uuid.UUID, req BlockInput) (*models.Block, error)
	UpdateBlock(ctx context.Context, ownerID, formID, blockID uuid.UUID, req UpdateBlockRequest) (*models.Block, error)
	DeleteBlock(ctx context.Context, ownerID, formID, blockID uuid.UUID) error
}

// CreateFormRequest is the request for creating a form.
type CreateFormRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=200"`
	Description string            `json:"description" validate:"max=2000"`
	Slug        string            `json:"slug" validate:"omitempty,max=100"`
	Status      models.FormStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
	Theme       models.JSONMap    `json:"theme"`
	Settings    models.JSONMap    `json:"settings"`
	Blocks      []BlockInput      `json:"blocks" validate:"omitempty,max=200,dive"`
}

// UpdateFormRequest is the request for updating a form. Nil fields are
// left unchanged. A non-nil Blocks replaces the form's block set.
type UpdateFormRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=2000"`
	Slug        *string            `json:"slug" validate:"omitempty,min=1,max=100"`
	Status      *models.FormStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
	Theme       models.JSONMap     `json:"theme"`
	Settings    models.JSONMap     `json:"settings"`
	Blocks      *[]BlockInput      `json:"blocks" validate:"omitempty,max=200,dive"`
}

// BlockInput describes a block in a create or replace request. A block
// whose ID matches a stored block of the form updates it; any other block
// is created.
type BlockInput struct {
	ID       *uuid.UUID       `json:"id,omitempty"`
	Type     models.BlockType `json:"type" validate:"required"`
	Label    string           `json:"label" validate:"max=500"`
	FieldKey string           `json:"field_key" validate:"omitempty,max=100"`
	Position *int             `json:"position" validate:"omitempty,min=0"`
	Required bool             `json:"required"`
	Config   models.JSONMap   `json:"config"`
}

// UpdateBlockRequest is the request for updating a single block.
type UpdateBlockRequest struct {
	Type     *models.BlockType `json:"type"`
	Label    *string           `json:"label" validate:"omitempty,max=500"`
	FieldKey *string           `json:"field_key" validate:"omitempty,min=1,max=100"`
	Position *int              `json:"position" validate:"omitempty,min=0"`
	Required *bool             `json:"required"`
	Config   models.JSONMap    `json:"config"`
}

type formService struct {
	forms       repository.FormRepository
	blocks      repository.BlockRepository
	analytics   repository.AnalyticsRepository
	cache       *cache.Cache
	invalidator *cache.Invalidator
	ttl         config.CacheConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewFormService creates a new form service.
func NewFormService(
	forms repository.FormRepository,
	blocks repository.BlockRepository,
	analytics repository.AnalyticsRepository,
	c *cache.Cache,
	ttl config.CacheConfig,
	logger *slog.Logger,
) FormService {
	return &formService{
		forms:       forms,
		blocks:      blocks,
		analytics:   analytics,
		cache:       c,
		invalidator: cache.NewInvalidator(c),
		ttl:         ttl,
		logger:      loggerOrDefault(logger),
		now:         time.Now,
	}
}

// Create creates a form and its analytics row. A slug already in use is
// made unique with a random suffix; creation never fails on a collision.
func (s *formService) Create(ctx context.Context, ownerID uuid.UUID, req CreateFormRequest) (*models.FormDetail, error) {
	status := req.Status
	if status == "" {
		status = models.FormStatusDraft
	}
	if !status.Valid() {
		return nil, apierrors.NewValidationError("status", "unknown form status")
	}

	form := &models.Form{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Theme:       req.Theme,
		Settings:    req.Settings,
	}
	if form.Title == "" {
		return nil, apierrors.NewValidationError("title", "title is required")
	}
	if status == models.FormStatusPublished {
		now := s.now().UTC()
		form.PublishedAt = &now
	}

	var changes repository.BlockChanges
	if len(req.Blocks) > 0 {
		var err error
		changes, err = planBlockChanges(nil, req.Blocks)
		if err != nil {
			return nil, err
		}
	}

	base := baseSlug(req.Slug, req.Title)
	candidate, err := s.availableSlug(ctx, base)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		form.Slug = candidate
		err = s.forms.Create(ctx, form)
		if !errors.Is(err, repository.ErrSlugTaken) || attempt > maxSlugAttempts {
			break
		}
		// Lost a race for the slug between the check and the insert.
		if attempt == maxSlugAttempts {
			candidate = base + "-" + strings.ToLower(ulid.New())
		} else {
			candidate = withSuffix(base)
		}
	}
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}

	blocks := []*models.Block{}
	if len(changes.Create) > 0 {
		if err := s.blocks.Apply(ctx, form.ID, changes); err != nil {
			if delErr := s.forms.Delete(ctx, form.ID); delErr != nil {
				s.logger.Error("failed to remove form after block write failure",
					slog.String("form_id", form.ID.String()),
					slog.String("error", delErr.Error()),
				)
			}
			return nil, blockWriteError(err)
		}
		blocks = changes.Create
	}

	s.invalidator.UserForms(ctx, ownerID)

	s.logger.Info("form created",
		slog.String("form_id", form.ID.String()),
		slog.String("slug", form.Slug),
		slog.Int("blocks", len(blocks)),
	)

	return &models.FormDetail{Form: *form, Blocks: blocks}, nil
}

// availableSlug returns base if no form uses it, otherwise base with a
// random suffix that no form uses.
func (s *formService) availableSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 0; i < maxSlugAttempts; i++ {
		exists, err := s.forms.SlugExists(ctx, candidate)
		if err != nil {
			return "", apierrors.NewDatabaseError(err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = withSuffix(base)
	}
	// A full ULID is unique on its own.
	return base + "-" + strings.ToLower(ulid.New()), nil
}

func baseSlug(requested, title string) string {
	source := requested
	if strings.TrimSpace(source) == "" {
		source = title
	}
	base := slug.Make(source)
	if len(base) > maxSlugLength {
		base = strings.Trim(base[:maxSlugLength], "-")
	}
	if base == "" {
		base = "form"
	}
	return base
}

func withSuffix(base string) string {
	return base + "-" + ulid.Suffix(slugSuffixLen)
}

// Get returns an owner's form with its blocks. A cached payload is used
// only when it names the requesting user as owner.
func (s *formService) Get(ctx context.Context, ownerID, formID uuid.UUID) (*models.FormDetail, error) {
	detail, err := cache.ReadThrough(ctx, s.cache, cache.KindFormID, cache.FormIDKey(formID), s.ttl.FormTTL,
		func(d *models.FormDetail) bool {
			return d != nil && d.OwnerID != uuid.Nil && d.OwnerID == ownerID
		},
		func(ctx context.Context) (*models.FormDetail, error) {
			return s.loadDetail(ctx, formID)
		},
	)
	if err != nil {
		return nil, err
	}
	if detail.OwnerID != ownerID {
		return nil, apierrors.NewNotFoundError("Form")
	}
	return detail, nil
}

// GetPublic returns the public view of a published form by slug and
// counts a view, whether or not the payload came from the cache.
func (s *formService) GetPublic(ctx context.Context, formSlug string) (*models.PublicForm, error) {
	form, err := cache.ReadThrough(ctx, s.cache, cache.KindFormSlug, cache.FormSlugKey(formSlug), s.ttl.FormTTL,
		func(p *models.PublicForm) bool {
			return p != nil && p.ID != uuid.Nil && p.Status == models.FormStatusPublished
		},
		func(ctx context.Context) (*models.PublicForm, error) {
			form, err := s.forms.GetBySlug(ctx, formSlug)
			if err != nil {
				return nil, apierrors.NewDatabaseError(err)
			}
			if form == nil || !form.IsPublished() {
				return nil, apierrors.NewNotFoundError("Form")
			}
			blocks, err := s.blocks.ListByForm(ctx, form.ID)
			if err != nil {
				return nil, apierrors.NewDatabaseError(err)
			}
			detail := &models.FormDetail{Form: *form, Blocks: blocks}
			return detail.Public(), nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.recordView(ctx, form.ID)
	return form, nil
}

func (s *formService) recordView(ctx context.Context, formID uuid.UUID) {
	if err := s.analytics.Increment(ctx, formID, s.now(), 1, 0); err != nil {
		s.logger.Warn("failed to record form view",
			slog.String("form_id", formID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *formService) loadDetail(ctx context.Context, formID uuid.UUID) (*models.FormDetail, error) {
	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if form == nil {
		return nil, apierrors.NewNotFoundError("Form")
	}
	blocks, err := s.blocks.ListByForm(ctx, formID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	return &models.FormDetail{Form: *form, Blocks: blocks}, nil
}

// List returns an owner's forms.
func (s *formService) List(ctx context.Context, ownerID uuid.UUID) ([]*models.Form, error) {
	return cache.ReadThrough(ctx, s.cache, cache.KindUserForms, cache.UserFormsKey(ownerID), s.ttl.UserFormsTTL, nil,
		func(ctx context.Context) ([]*models.Form, error) {
			forms, err := s.forms.ListByOwner(ctx, ownerID)
			if err != nil {
				return nil, apierrors.NewDatabaseError(err)
			}
			return forms, nil
		},
	)
}

// Update applies scalar changes and, when blocks are supplied, reconciles
// the form's block set with them.
func (s *formService) Update(ctx context.Context, ownerID, formID uuid.UUID, req UpdateFormRequest) (*models.FormDetail, error) {
	form, err := ownedForm(ctx, s.forms, ownerID, formID)
	if err != nil {
		return nil, err
	}
	oldSlug := form.Slug

	var changes *repository.BlockChanges
	if req.Blocks != nil {
		existing, err := s.blocks.ListByForm(ctx, formID)
		if err != nil {
			return nil, apierrors.NewDatabaseError(err)
		}
		plan, err := planBlockChanges(existing, *req.Blocks)
		if err != nil {
			return nil, err
		}
		changes = &plan
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apierrors.NewValidationError("title", "title is required")
		}
		form.Title = title
	}
	if req.Description != nil {
		form.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apierrors.NewValidationError("status", "unknown form status")
		}
		if *req.Status == models.FormStatusPublished && form.PublishedAt == nil {
			now := s.now().UTC()
			form.PublishedAt = &now
		}
		form.Status = *req.Status
	}
	if req.Theme != nil {
		form.Theme = req.Theme
	}
	if req.Settings != nil {
		form.Settings = req.Settings
	}
	if req.Slug != nil {
		newSlug := slug.Make(*req.Slug)
		if newSlug == "" {
			return nil, apierrors.NewValidationError("slug", "slug must contain letters or digits")
		}
		if newSlug != form.Slug {
			exists, err := s.forms.SlugExists(ctx, newSlug)
			if err != nil {
				return nil, apierrors.NewDatabaseError(err)
			}
			if exists {
				return nil, apierrors.NewConflictError(fmt.Sprintf("Slug %q is already in use", newSlug))
			}
			form.Slug = newSlug
		}
	}

	if err := s.forms.UpdateWithBlocks(ctx, form, changes); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, apierrors.NewConflictError(fmt.Sprintf("Slug %q is already in use", form.Slug))
		}
		return nil, blockWriteError(err)
	}

	s.invalidator.Form(ctx, formID, ownerID, oldSlug, form.Slug)

	blocks, err := s.blocks.ListByForm(ctx, formID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	return &models.FormDetail{Form: *form, Blocks: blocks}, nil
}

// Delete removes a form with its blocks, responses, answers and counters.
func (s *formService) Delete(ctx context.Context, ownerID, formID uuid.UUID) error {
	form, err := ownedForm(ctx, s.forms, ownerID, formID)
	if err != nil {
		return err
	}

	if err := s.forms.Delete(ctx, formID); err != nil {
		return apierrors.NewDatabaseError(err)
	}

	s.invalidator.Form(ctx, formID, ownerID, form.Slug)
	s.invalidator.Responses(ctx, formID)

	s.logger.Info("form deleted", slog.String("form_id", formID.String()))
	return nil
}

// ListBlocks returns a form's blocks in render order. Ownership is checked
// against the store before the cache is consulted.
func (s *formService) ListBlocks(ctx context.Context, ownerID, formID uuid.UUID) ([]*models.Block, error) {
	if _, err := ownedForm(ctx, s.forms, ownerID, formID); err != nil {
		return nil, err
	}
	return cache.ReadThrough(ctx, s.cache, cache.KindBlocks, cache.BlocksKey(formID), s.ttl.BlocksTTL, nil,
		func(ctx context.Context) ([]*models.Block, error) {
			blocks, err := s.blocks.ListByForm(ctx, formID)
			if err != nil {
				return nil, apierrors.NewDatabaseError(err)
			}
			return blocks, nil
		},
	)
}

// AddBlock appends a block to a form. The block goes last unless a
// position is given, and gets a generated field key unless one is given.
func (s *formService) AddBlock(ctx context.Context, ownerID, formID uuid.UUID, req BlockInput) (*models.Block, error) {
	form, err := ownedForm(ctx, s.forms, ownerID, formID)
	if err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, apierrors.NewValidationError("type", fmt.Sprintf("unknown block type %q", req.Type))
	}

	existing, err := s.blocks.ListByForm(ctx, formID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if len(existing) >= maxBlocks {
		return nil, apierrors.NewValidationError("blocks", fmt.Sprintf("a form can have at most %d blocks", maxBlocks))
	}

	used := make(map[string]bool, len(existing))
	for _, b := range existing {
		used[b.FieldKey] = true
	}

	block := &models.Block{
		FormID:   formID,
		Type:     req.Type,
		Label:    req.Label,
		FieldKey: strings.TrimSpace(req.FieldKey),
		Position: len(existing),
		Required: req.Required,
		Config:   req.Config,
	}
	if req.Position != nil {
		block.Position = *req.Position
	}
	if block.FieldKey == "" {
		block.FieldKey = generateFieldKey(block.Type, used)
	} else if used[block.FieldKey] {
		return nil, duplicateFieldKey("field_key", block.FieldKey)
	}

	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, blockWriteError(err)
	}

	s.invalidator.Blocks(ctx, formID, form.Slug)
	return block, nil
}

// UpdateBlock changes a single block of a form.
func (s *formService) UpdateBlock(ctx context.Context, ownerID, formID, blockID uuid.UUID, req UpdateBlockRequest) (*models.Block, error) {
	form, err := ownedForm(ctx, s.forms, ownerID, formID)
	if err != nil {
		return nil, err
	}
	block, err := s.formBlock(ctx, formID, blockID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, apierrors.NewValidationError("type", fmt.Sprintf("unknown block type %q", *req.Type))
		}
		block.Type = *req.Type
	}
	if req.Label != nil {
		block.Label = *req.Label
	}
	if req.Position != nil {
		block.Position = *req.Position
	}
	if req.Required != nil {
		block.Required = *req.Required
	}
	if req.Config != nil {
		block.Config = req.Config
	}
	if req.FieldKey != nil {
		key := strings.TrimSpace(*req.FieldKey)
		if key == "" {
			return nil, apierrors.NewValidationError("field_key", "field key must not be empty")
		}
		if key != block.FieldKey {
			siblings, err := s.blocks.ListByForm(ctx, formID)
			if err != nil {
				return nil, apierrors.NewDatabaseError(err)
			}
			for _, b := range siblings {
				if b.ID != block.ID && b.FieldKey == key {
					return nil, duplicateFieldKey("field_key", key)
				}
			}
			block.FieldKey = key
		}
	}

	if err := s.blocks.Update(ctx, block); err != nil {
		return nil, blockWriteError(err)
	}

	s.invalidator.Blocks(ctx, formID, form.Slug)
	return block, nil
}

// DeleteBlock removes a block. Answers already submitted for it are kept.
func (s *formService) DeleteBlock(ctx context.Context, ownerID, formID, blockID uuid.UUID) error {
	form, err := ownedForm(ctx, s.forms, ownerID, formID)
	if err != nil {
		return err
	}
	if _, err := s.formBlock(ctx, formID, blockID); err != nil {
		return err
	}

	if err := s.blocks.Delete(ctx, blockID); err != nil {
		return apierrors.NewDatabaseError(err)
	}

	s.invalidator.Blocks(ctx, formID, form.Slug)
	return nil
}

func (s *formService) formBlock(ctx context.Context, formID, blockID uuid.UUID) (*models.Block, error) {
	block, err := s.blocks.GetByID(ctx, blockID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if block == nil || block.FormID != formID {
		return nil, apierrors.NewNotFoundError("Block")
	}
	return block, nil
}

func blockWriteError(err error) error {
	if errors.Is(err, repository.ErrFieldKeyTaken) {
		return apierrors.NewValidationError("field_key", "field key is already used in this form")
	}
	return apierrors.NewDatabaseError(err)
}

// Compile-time check to ensure formService implements FormService.
var _ FormService = (*formService)(nil)
