package controllers

import (
	"net/http"

	"github.com/nhc-it/assetlend-backend/api/responses"
	"github.com/nhc-it/assetlend-backend/api/validators"
	"github.com/nhc-it/assetlend-backend/internal/requests"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	"github.com/nhc-it/assetlend-backend/pkg/types"
)

type submitRequestBody struct {
	Category    string     `json:"category" validate:"required,asset_category"`
	RequestDate types.Date `json:"request_date"`
	ReturnDate  types.Date `json:"return_date"`
	Remarks     string     `json:"remarks" validate:"max=2000"`
}

func SubmitRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "requests")
			return
		}
		userID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		var body submitRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := svc.Submit(r.Context(), requests.SubmitInput{
			RequesterID:   userID,
			RequesterRole: role,
			Category:      enums.AssetCategory(body.Category),
			RequestDate:   body.RequestDate.Time,
			ReturnDate:    body.ReturnDate.Time,
			Remarks:       validators.SanitizeString(body.Remarks, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, req)
	}
}

// MyRequests pages through the caller's own requests, newest first.
func MyRequests(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "requests")
			return
		}
		userID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.ParseRequestStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMine(r.Context(), requests.MineParams{RequesterID: userID, Status: status, Params: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "requests")
			return
		}
		userID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req, err := svc.Get(r.Context(), id, requests.Viewer{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

func CancelRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "requests")
			return
		}
		userID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req, err := svc.Cancel(r.Context(), requests.CancelInput{RequestID: id, RequesterID: userID, RequesterRole: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

// RequestQueue is the staff view: pending requests first, then everything else.
func RequestQueue(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "requests")
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := requests.QueueParams{Params: page}
		if params.Status, err = validators.ParseQueryEnum(r, "status", enums.ParseRequestStatus); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Category, err = validators.ParseQueryEnum(r, "category", enums.ParseAssetCategory); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
