package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Karan-Salvi/FormVista-sub000/internal/cache"
	"github.com/Karan-Salvi/FormVista-sub000/internal/config"
	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxPage          = math.MaxInt32 / maxPageLimit
	maxTags          = 20
	maxTagLength     = 50
)

// ResponseService defines the interface for submission operations.
type ResponseService interface {
	Submit(ctx context.Context, slug string, req SubmitResponseRequest) (*models.FormResponse, error)
	List(ctx context.Context, ownerID, formID uuid.UUID, page, limit int) (*models.ResponsePage, error)
	Get(ctx context.Context, ownerID, formID, responseID uuid.UUID) (*models.FormResponse, error)
	UpdateMeta(ctx context.Context, ownerID, formID, responseID uuid.UUID, req UpdateResponseRequest) (*models.FormResponse, error)
	Delete(ctx context.Context, ownerID, formID, responseID uuid.UUID) error
}

// SubmitResponseRequest is the request for submitting a response.
type SubmitResponseRequest struct {
	Answers        []AnswerInput  `json:"answers" validate:"max=200,dive"`
	CompletionTime *int           `json:"completion_time" validate:"omitempty,min=0"`
	Metadata       models.JSONMap `json:"metadata"`
}

// AnswerInput is one answer of a submission. The block is identified by
// BlockID or, when that is absent, by FieldKey.
type AnswerInput struct {
	BlockID  *uuid.UUID `json:"block_id"`
	FieldKey string     `json:"field_key" validate:"required_without=BlockID"`
	Value    any        `json:"value"`
}

// UpdateResponseRequest is the request for editing a response's notes
// and tags.
type UpdateResponseRequest struct {
	Notes *string   `json:"notes" validate:"omitempty,max=5000"`
	Tags  *[]string `json:"tags" validate:"omitempty,max=20"`
}

type responseService struct {
	forms       repository.FormRepository
	blocks      repository.BlockRepository
	responses   repository.ResponseRepository
	analytics   repository.AnalyticsRepository
	cache       *cache.Cache
	invalidator *cache.Invalidator
	ttl         config.CacheConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewResponseService creates a new response service.
func NewResponseService(
	forms repository.FormRepository,
	blocks repository.BlockRepository,
	responses repository.ResponseRepository,
	analytics repository.AnalyticsRepository,
	c *cache.Cache,
	ttl config.CacheConfig,
	logger *slog.Logger,
) ResponseService {
	return &responseService{
		forms:       forms,
		blocks:      blocks,
		responses:   responses,
		analytics:   analytics,
		cache:       c,
		invalidator: cache.NewInvalidator(c),
		ttl:         ttl,
		logger:      loggerOrDefault(logger),
		now:         time.Now,
	}
}

// Submit records a response to a published form. The form state is read
// from the store, never from the cache, so an unpublished form stops
// accepting responses immediately.
func (s *responseService) Submit(ctx context.Context, slug string, req SubmitResponseRequest) (*models.FormResponse, error) {
	form, err := s.forms.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if form == nil {
		return nil, apierrors.NewNotFoundError("Form")
	}
	if !form.IsPublished() {
		return nil, apierrors.NewValidationError("form", "form is not accepting responses")
	}

	blocks, err := s.blocks.ListByForm(ctx, form.ID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}

	answers, err := resolveAnswers(blocks, req.Answers)
	if err != nil {
		return nil, err
	}

	resp := &models.FormResponse{
		ID:             uuid.New(),
		FormID:         form.ID,
		SubmittedAt:    s.now().UTC(),
		CompletionTime: req.CompletionTime,
		Tags:           []string{},
		Metadata:       req.Metadata,
		Answers:        answers,
	}
	for _, a := range answers {
		a.ResponseID = resp.ID
	}

	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}

	if err := s.analytics.Increment(ctx, form.ID, resp.SubmittedAt, 0, 1); err != nil {
		s.logger.Warn("failed to record submission",
			slog.String("form_id", form.ID.String()),
			slog.String("error", err.Error()),
		)
	}
	s.invalidator.Responses(ctx, form.ID)

	s.logger.Info("response submitted",
		slog.String("form_id", form.ID.String()),
		slog.String("response_id", resp.ID.String()),
		slog.Int("answers", len(answers)),
	)

	return resp, nil
}

// resolveAnswers matches answers to the form's input blocks and enforces
// required blocks. Field keys are copied from the matched block.
func resolveAnswers(blocks []*models.Block, inputs []AnswerInput) ([]*models.ResponseAnswer, error) {
	byID := make(map[uuid.UUID]*models.Block, len(blocks))
	byKey := make(map[string]*models.Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
		byKey[b.FieldKey] = b
	}

	answered := make(map[uuid.UUID]bool, len(inputs))
	answers := make([]*models.ResponseAnswer, 0, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("answers[%d]", i)

		var block *models.Block
		if in.BlockID != nil {
			block = byID[*in.BlockID]
		} else {
			block = byKey[strings.TrimSpace(in.FieldKey)]
		}
		if block == nil {
			return nil, apierrors.NewValidationError(field, "answer does not match a block of this form")
		}
		if !block.Type.IsInput() {
			return nil, apierrors.NewValidationError(field, fmt.Sprintf("block %q does not accept answers", block.FieldKey))
		}
		if answered[block.ID] {
			return nil, apierrors.NewValidationError(field, fmt.Sprintf("block %q answered more than once", block.FieldKey))
		}
		if isEmptyValue(in.Value) {
			continue
		}
		answered[block.ID] = true

		blockID := block.ID
		answers = append(answers, &models.ResponseAnswer{
			ID:       uuid.New(),
			BlockID:  &blockID,
			FieldKey: block.FieldKey,
			Value:    in.Value,
		})
	}

	missing := map[string]string{}
	for _, b := range blocks {
		if b.Required && b.Type.IsInput() && !answered[b.ID] {
			missing[b.FieldKey] = "this field is required"
		}
	}
	if len(missing) > 0 {
		return nil, apierrors.NewValidationErrors(missing)
	}

	return answers, nil
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

// List returns one page of a form's responses, newest first.
func (s *responseService) List(ctx context.Context, ownerID, formID uuid.UUID, page, limit int) (*models.ResponsePage, error) {
	if _, err := ownedForm(ctx, s.forms, ownerID, formID); err != nil {
		return nil, err
	}
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return nil, err
	}

	return cache.ReadThrough(ctx, s.cache, cache.KindResponses, cache.ResponsesPageKey(formID, page, limit), s.ttl.ResponsesTTL, nil,
		func(ctx context.Context) (*models.ResponsePage, error) {
			total, err := s.responses.CountByForm(ctx, formID)
			if err != nil {
				return nil, apierrors.NewDatabaseError(err)
			}
			items, err := s.responses.ListByForm(ctx, formID, (page-1)*limit, limit)
			if err != nil {
				return nil, apierrors.NewDatabaseError(err)
			}
			return &models.ResponsePage{
				Items:      items,
				Pagination: models.NewPagination(page, limit, total),
			}, nil
		},
	)
}

// normalizePage applies the default and maximum page size. Pages past
// maxPage are rejected so the row offset always fits in an int32.
func normalizePage(page, limit int) (int, int, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		return 0, 0, apierrors.NewValidationError("page", fmt.Sprintf("page must be at most %d", maxPage))
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, nil
}

// Get returns a single response with its answers.
func (s *responseService) Get(ctx context.Context, ownerID, formID, responseID uuid.UUID) (*models.FormResponse, error) {
	if _, err := ownedForm(ctx, s.forms, ownerID, formID); err != nil {
		return nil, err
	}
	return s.formResponse(ctx, formID, responseID)
}

// UpdateMeta edits the owner's notes and tags on a response.
func (s *responseService) UpdateMeta(ctx context.Context, ownerID, formID, responseID uuid.UUID, req UpdateResponseRequest) (*models.FormResponse, error) {
	if _, err := ownedForm(ctx, s.forms, ownerID, formID); err != nil {
		return nil, err
	}
	resp, err := s.formResponse(ctx, formID, responseID)
	if err != nil {
		return nil, err
	}

	if req.Notes != nil {
		resp.Notes = *req.Notes
	}
	if req.Tags != nil {
		tags, err := normalizeTags(*req.Tags)
		if err != nil {
			return nil, err
		}
		resp.Tags = tags
	}

	if err := s.responses.UpdateMeta(ctx, resp); err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}

	s.invalidator.Responses(ctx, formID)
	return resp, nil
}

// normalizeTags trims tags and drops blanks and repeats, keeping order.
func normalizeTags(in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	tags := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if len(t) > maxTagLength {
			return nil, apierrors.NewValidationError("tags", fmt.Sprintf("tags are limited to %d characters", maxTagLength))
		}
		seen[t] = true
		tags = append(tags, t)
	}
	if len(tags) > maxTags {
		return nil, apierrors.NewValidationError("tags", fmt.Sprintf("a response can have at most %d tags", maxTags))
	}
	return tags, nil
}

// Delete removes a response and its answers. Form counters are not
// decremented.
func (s *responseService) Delete(ctx context.Context, ownerID, formID, responseID uuid.UUID) error {
	if _, err := ownedForm(ctx, s.forms, ownerID, formID); err != nil {
		return err
	}
	if _, err := s.formResponse(ctx, formID, responseID); err != nil {
		return err
	}

	if err := s.responses.Delete(ctx, responseID); err != nil {
		return apierrors.NewDatabaseError(err)
	}

	s.invalidator.Responses(ctx, formID)
	return nil
}

func (s *responseService) formResponse(ctx context.Context, formID, responseID uuid.UUID) (*models.FormResponse, error) {
	resp, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if resp == nil || resp.FormID != formID {
		return nil, apierrors.NewNotFoundError("Response")
	}
	return resp, nil
}

// Compile-time check to ensure responseService implements ResponseService.
var _ ResponseService = (*responseService)(nil)
