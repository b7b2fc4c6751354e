package handler

import (
	"net/http"

	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

// StatsHandler serves analytics for form owners.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// FormStats handles GET /v1/forms/{formID}/stats
func (h *StatsHandler) FormStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.statsService.FormStats(r.Context(), userID, formID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, stats)
}

// Dashboard handles GET /v1/dashboard/stats
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	stats, err := h.statsService.Dashboard(r.Context(), userID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, stats)
}
