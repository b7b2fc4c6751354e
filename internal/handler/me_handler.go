package handler

import (
	"net/http"

	"github.com/Karan-Salvi/FormVista-sub000/internal/middleware"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
)

// Me handles GET /v1/me and returns the authenticated user.
func Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Error(w, r, apierrors.ErrUnauthorized)
		return
	}
	response.OK(w, r, user)
}
