package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nhc-it/assetlend-backend/api/responses"
	"github.com/nhc-it/assetlend-backend/api/validators"
	"github.com/nhc-it/assetlend-backend/internal/maintenance"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	"github.com/nhc-it/assetlend-backend/pkg/types"
)

type startMaintenanceBody struct {
	Type            string          `json:"maintenance_type" validate:"required,maintenance_type"`
	Description     string          `json:"description" validate:"required,max=2000"`
	MaintenanceDate *types.Date     `json:"maintenance_date"`
	PerformedBy     string          `json:"performed_by" validate:"required,max=200"`
	Cost            decimal.Decimal `json:"cost"`
	Remarks         string          `json:"remarks" validate:"max=2000"`
}

type completeMaintenanceBody struct {
	Condition string `json:"condition" validate:"omitempty,asset_condition"`
}

func StartMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "maintenance")
			return
		}
		actorID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		assetID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body startMaintenanceBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := maintenance.StartInput{
			AssetID:     assetID,
			Type:        enums.MaintenanceType(body.Type),
			Description: validators.SanitizeString(body.Description, 2000),
			PerformedBy: validators.SanitizeString(body.PerformedBy, 200),
			Cost:        body.Cost,
			Remarks:     validators.SanitizeString(body.Remarks, 2000),
			ActorID:     actorID,
			ActorRole:   role,
		}
		if body.MaintenanceDate != nil && !body.MaintenanceDate.IsZero() {
			day := body.MaintenanceDate.Time
			input.MaintenanceDate = &day
		}

		record, err := svc.Start(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

func AssetMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "maintenance")
			return
		}
		assetID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		records, err := svc.ListForAsset(r.Context(), assetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": records})
	}
}

// CompleteMaintenance closes a record; the asset returns to circulation once
// no other record is open.
func CompleteMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "maintenance")
			return
		}
		actorID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		recordID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body completeMaintenanceBody
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		input := maintenance.CompleteInput{RecordID: recordID, ActorID: actorID, ActorRole: role}
		if body.Condition != "" {
			condition := enums.AssetCondition(body.Condition)
			input.Condition = &condition
		}

		record, err := svc.Complete(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func GetMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "maintenance")
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
