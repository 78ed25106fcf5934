package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/api/middleware"
	"github.com/nhc-it/assetlend-backend/api/responses"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
)

// caller resolves the authenticated identity or writes UNAUTHORIZED.
func caller(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, enums.UserRole, bool) {
	userID, role, ok := middleware.Identity(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing"))
		return uuid.Nil, "", false
	}
	return userID, role, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
