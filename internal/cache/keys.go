// Package cache implements the read-through cache in front of the form,
// block and response read paths, and the invalidation rules that keep it
// coherent with writes.
package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind names a family of cache entries. It is used as a metric label.
type Kind string

const (
	KindFormSlug  Kind = "form_slug"
	KindFormID    Kind = "form_id"
	KindUserForms Kind = "user_forms"
	KindBlocks    Kind = "blocks"
	KindResponses Kind = "responses"
)

// FormSlugKey is the key of the public form payload for a slug.
func FormSlugKey(slug string) string {
	return "form:slug:" + slug
}

// FormIDKey is the key of the owner-facing form payload.
func FormIDKey(formID uuid.UUID) string {
	return "form:id:" + formID.String()
}

// UserFormsKey is the key of a user's form list.
func UserFormsKey(userID uuid.UUID) string {
	return "forms:user:" + userID.String()
}

// BlocksKey is the key of a form's block list.
func BlocksKey(formID uuid.UUID) string {
	return "blocks:form:" + formID.String()
}

// ResponsesPageKey is the key of one page of a form's responses. Page and
// limit are both encoded so different page sizes never alias.
func ResponsesPageKey(formID uuid.UUID, page, limit int) string {
	return fmt.Sprintf("responses:form:%s:page:%d:limit:%d", formID, page, limit)
}

// ResponsesPattern matches every response page key of a form.
func ResponsesPattern(formID uuid.UUID) string {
	return "responses:form:" + formID.String() + ":page:*"
}
