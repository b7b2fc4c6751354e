package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

// PublicHandler serves published forms to respondents. No authentication
// is required.
type PublicHandler struct {
	formService     service.FormService
	responseService service.ResponseService
	validate        *validator.Validate
}

// NewPublicHandler creates a new public form handler.
func NewPublicHandler(formService service.FormService, responseService service.ResponseService) *PublicHandler {
	return &PublicHandler{
		formService:     formService,
		responseService: responseService,
		validate:        newValidator(),
	}
}

// GetForm handles GET /v1/public/forms/{slug}
func (h *PublicHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.formService.GetPublic(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, form)
}

// Submit handles POST /v1/public/forms/{slug}/responses
func (h *PublicHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitResponseRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	resp, err := h.responseService.Submit(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSONWithMessage(w, r, http.StatusCreated, "Response recorded", resp)
}
