// Package service provides the business logic of the FormVista API.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/repository"
)

// ownedForm loads a form from the store and checks that ownerID owns it.
// Forms owned by someone else are reported as not found.
func ownedForm(ctx context.Context, forms repository.FormRepository, ownerID, formID uuid.UUID) (*models.Form, error) {
	form, err := forms.GetByID(ctx, formID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if form == nil || form.OwnerID != ownerID {
		return nil, apierrors.NewNotFoundError("Form")
	}
	return form, nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
