package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

// ResponseHandler handles owner access to collected responses.
type ResponseHandler struct {
	responseService service.ResponseService
	validate        *validator.Validate
}

// NewResponseHandler creates a new response handler.
func NewResponseHandler(responseService service.ResponseService) *ResponseHandler {
	return &ResponseHandler{
		responseService: responseService,
		validate:        newValidator(),
	}
}

// List handles GET /v1/forms/{formID}/responses
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
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
	page, err := queryInt(r, "page")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.responseService.List(r.Context(), userID, formID, page, limit)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, result)
}

// Get handles GET /v1/forms/{formID}/responses/{responseID}
func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, formID, responseID, err := responseParams(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	resp, err := h.responseService.Get(r.Context(), userID, formID, responseID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, resp)
}

// Update handles PATCH /v1/forms/{formID}/responses/{responseID}
func (h *ResponseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, formID, responseID, err := responseParams(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req service.UpdateResponseRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	resp, err := h.responseService.UpdateMeta(r.Context(), userID, formID, responseID, req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, resp)
}

// Delete handles DELETE /v1/forms/{formID}/responses/{responseID}
func (h *ResponseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, formID, responseID, err := responseParams(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.responseService.Delete(r.Context(), userID, formID, responseID); err != nil {
		response.Error(w, r, err)
		return
	}

	response.NoContent(w)
}

func responseParams(r *http.Request) (userID, formID, responseID uuid.UUID, err error) {
	if userID, err = requireUser(r); err != nil {
		return
	}
	if formID, err = uuidParam(r, "formID", "Form"); err != nil {
		return
	}
	responseID, err = uuidParam(r, "responseID", "Response")
	return
}
