package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/api/responses"
	"github.com/nhc-it/assetlend-backend/api/validators"
	"github.com/nhc-it/assetlend-backend/internal/workflow"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
)

type assignBody struct {
	AssetID string `json:"asset_id" validate:"required,uuid"`
}

type decisionBody struct {
	Remarks string `json:"remarks" validate:"max=2000"`
}

func AssignAsset(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "workflow")
			return
		}
		actorID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		requestID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body assignBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetID, err := uuid.Parse(body.AssetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset_id"))
			return
		}

		req, err := svc.Assign(r.Context(), workflow.AssignInput{
			RequestID: requestID,
			AssetID:   assetID,
			ActorID:   actorID,
			ActorRole: role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

func ApproveRequest(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return decide(svc, logg, workflow.Service.Approve)
}

func RejectRequest(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return decide(svc, logg, workflow.Service.Reject)
}

// decide shares the approve and reject plumbing; the body is optional.
func decide(svc workflow.Service, logg *logger.Logger, op func(workflow.Service, context.Context, workflow.DecisionInput) (*models.AssetRequest, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "workflow")
			return
		}
		actorID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		requestID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body decisionBody
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		req, err := op(svc, r.Context(), workflow.DecisionInput{
			RequestID: requestID,
			ActorID:   actorID,
			ActorRole: role,
			Remarks:   validators.SanitizeString(body.Remarks, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}
