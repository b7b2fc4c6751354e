package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

// FormHandler handles form and block requests of the form owner.
type FormHandler struct {
	formService service.FormService
	validate    *validator.Validate
}

// NewFormHandler creates a new form handler.
func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{
		formService: formService,
		validate:    newValidator(),
	}
}

// Create handles POST /v1/forms
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req service.CreateFormRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	form, err := h.formService.Create(r.Context(), userID, req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.Created(w, r, form)
}

// List handles GET /v1/forms
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	forms, err := h.formService.List(r.Context(), userID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, forms)
}

// Get handles GET /v1/forms/{formID}
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	formID, err := uuidParam(r, "formID", "Form")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	form, err := h.formService.Get(r.Context(), userID, formID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, form)
}

// Update handles PATCH /v1/forms/{formID}
func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	formID, err := uuidParam(r, "formID", "Form")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req service.UpdateFormRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	form, err := h.formService.Update(r.Context(), userID, formID, req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, form)
}

// Delete handles DELETE /v1/forms/{formID}
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	formID, err := uuidParam(r, "formID", "Form")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.formService.Delete(r.Context(), userID, formID); err != nil {
		response.Error(w, r, err)
		return
	}

	response.NoContent(w)
}

// ListBlocks handles GET /v1/forms/{formID}/blocks
func (h *FormHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	formID, err := uuidParam(r, "formID", "Form")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	blocks, err := h.formService.ListBlocks(r.Context(), userID, formID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, blocks)
}

// AddBlock handles POST /v1/forms/{formID}/blocks
func (h *FormHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	formID, err := uuidParam(r, "formID", "Form")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req service.BlockInput
	if err := decodeJSON(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	block, err := h.formService.AddBlock(r.Context(), userID, formID, req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.Created(w, r, block)
}

// UpdateBlock handles PATCH /v1/forms/{formID}/blocks/{blockID}
func (h *FormHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	formID, err := uuidParam(r, "formID", "Form")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	blockID, err := uuidParam(r, "blockID", "Block")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req service.UpdateBlockRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	block, err := h.formService.UpdateBlock(r.Context(), userID, formID, blockID, req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, block)
}

// DeleteBlock handles DELETE /v1/forms/{formID}/blocks/{blockID}
func (h *FormHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	formID, err := uuidParam(r, "formID", "Form")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	blockID, err := uuidParam(r, "blockID", "Block")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.formService.DeleteBlock(r.Context(), userID, formID, blockID); err != nil {
		response.Error(w, r, err)
		return
	}

	response.NoContent(w)
}
