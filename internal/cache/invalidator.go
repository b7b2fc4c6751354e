package cache

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Invalidator deletes cache entries made stale by a write. It runs after
// the store mutation has succeeded; its failures are logged and counted but
// never returned, so TTLs bound any staleness. Loads still in flight for an
// invalidated key return their result but do not write it back.
type Invalidator struct {
	cache *Cache
}

// NewInvalidator creates an invalidator for c.
func NewInvalidator(c *Cache) *Invalidator {
	return &Invalidator{cache: c}
}

// Form drops every entry embedding the form: its id and slug payloads, its
// block list and its owner's form list. Pass every slug the form has been
// reachable under, so a rename drops the old slug too.
func (i *Invalidator) Form(ctx context.Context, formID, ownerID uuid.UUID, slugs ...string) {
	keys := []string{FormIDKey(formID), BlocksKey(formID), UserFormsKey(ownerID)}
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, FormSlugKey(slug))
		}
	}
	i.delete(ctx, KindFormID, keys...)
}

// Blocks drops the entries that embed a form's blocks.
func (i *Invalidator) Blocks(ctx context.Context, formID uuid.UUID, slug string) {
	keys := []string{FormIDKey(formID), BlocksKey(formID)}
	if slug != "" {
		keys = append(keys, FormSlugKey(slug))
	}
	i.delete(ctx, KindBlocks, keys...)
}

// UserForms drops a user's form list.
func (i *Invalidator) UserForms(ctx context.Context, ownerID uuid.UUID) {
	i.delete(ctx, KindUserForms, UserFormsKey(ownerID))
}

// Responses drops every cached page of a form's responses, whatever its
// page number or size.
func (i *Invalidator) Responses(ctx context.Context, formID uuid.UUID) {
	pattern := ResponsesPattern(formID)
	i.cache.markStalePrefix(strings.TrimSuffix(pattern, "*"))
	if _, err := i.cache.store.DeletePattern(ctx, pattern); err != nil {
		i.fail(KindResponses, err, slog.String("pattern", pattern))
	}
}

func (i *Invalidator) delete(ctx context.Context, kind Kind, keys ...string) {
	for _, key := range keys {
		i.cache.group.Forget(key)
	}
	i.cache.markStale(keys...)
	if err := i.cache.store.Delete(ctx, keys...); err != nil {
		i.fail(kind, err, slog.Any("keys", keys))
	}
}

func (i *Invalidator) fail(kind Kind, err error, attr slog.Attr) {
	invalidationFailuresTotal.WithLabelValues(string(kind)).Inc()
	i.cache.logger.Warn("cache invalidation failed",
		slog.String("kind", string(kind)),
		attr,
		slog.String("error", err.Error()),
	)
}
