package controllers

import (
	"net/http"
	"time"

	"github.com/nhc-it/assetlend-backend/api/responses"
	"github.com/nhc-it/assetlend-backend/api/validators"
	"github.com/nhc-it/assetlend-backend/internal/assets"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	"github.com/nhc-it/assetlend-backend/pkg/types"
)

type registerAssetRequest struct {
	AssetCode     *string     `json:"asset_code" validate:"omitempty,max=64"`
	Name          string      `json:"name" validate:"required,max=200"`
	Category      string      `json:"category" validate:"required,asset_category"`
	Model         string      `json:"model" validate:"required,max=200"`
	SerialNumber  *string     `json:"serial_number" validate:"omitempty,max=128"`
	Barcode       *string     `json:"barcode" validate:"omitempty,max=128"`
	Specification *string     `json:"specification"`
	Description   *string     `json:"description"`
	PurchaseDate  *types.Date `json:"purchase_date"`
	Condition     string      `json:"condition" validate:"omitempty,asset_condition"`
}

type updateAssetRequest struct {
	AssetCode     types.Nullable[string]     `json:"asset_code"`
	Name          *string                    `json:"name" validate:"omitempty,max=200"`
	Model         *string                    `json:"model" validate:"omitempty,max=200"`
	SerialNumber  types.Nullable[string]     `json:"serial_number"`
	Barcode       types.Nullable[string]     `json:"barcode"`
	Specification types.Nullable[string]     `json:"specification"`
	Description   types.Nullable[string]     `json:"description"`
	PurchaseDate  types.Nullable[types.Date] `json:"purchase_date"`
}

// FindAvailableAssets lists units of a category that can be assigned right now.
func FindAvailableAssets(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "assets")
			return
		}
		category, err := validators.ParseQueryEnum(r, "category", enums.ParseAssetCategory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if category == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category is required"))
			return
		}
		items, err := svc.FindAvailable(r.Context(), *category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

func RegisterAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "assets")
			return
		}
		actorID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		var body registerAssetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := assets.RegisterInput{
			ActorID:       actorID,
			ActorRole:     role,
			AssetCode:     body.AssetCode,
			Name:          body.Name,
			Category:      enums.AssetCategory(body.Category),
			Model:         body.Model,
			SerialNumber:  body.SerialNumber,
			Barcode:       body.Barcode,
			Specification: body.Specification,
			Description:   body.Description,
			Condition:     enums.AssetCondition(body.Condition),
		}
		if body.PurchaseDate != nil && !body.PurchaseDate.IsZero() {
			day := body.PurchaseDate.Time
			input.PurchaseDate = &day
		}

		asset, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

func GetAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "assets")
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func ListAssets(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "assets")
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := assets.ListParams{
			Search: validators.SanitizeString(r.URL.Query().Get("q"), 100),
			Params: page,
		}
		if params.Category, err = validators.ParseQueryEnum(r, "category", enums.ParseAssetCategory); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Status, err = validators.ParseQueryEnum(r, "status", enums.ParseAssetStatus); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Condition, err = validators.ParseQueryEnum(r, "condition", enums.ParseAssetCondition); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func UpdateAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "assets")
			return
		}
		actorID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateAssetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := assets.UpdateDetailsInput{
			ActorID:       actorID,
			ActorRole:     role,
			AssetCode:     body.AssetCode,
			Name:          body.Name,
			Model:         body.Model,
			SerialNumber:  body.SerialNumber,
			Barcode:       body.Barcode,
			Specification: body.Specification,
			Description:   body.Description,
		}
		if body.PurchaseDate.Valid {
			input.PurchaseDate = types.Null[time.Time]()
			if body.PurchaseDate.Value != nil && !body.PurchaseDate.Value.IsZero() {
				input.PurchaseDate = types.Set(body.PurchaseDate.Value.Time)
			}
		}

		asset, err := svc.UpdateDetails(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func RetireAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "assets")
			return
		}
		actorID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.Retire(r.Context(), assets.RetireInput{AssetID: id, ActorID: actorID, ActorRole: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}
