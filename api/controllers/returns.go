package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/api/responses"
	"github.com/nhc-it/assetlend-backend/api/validators"
	"github.com/nhc-it/assetlend-backend/internal/returns"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
)

type recordReturnBody struct {
	Condition  string     `json:"condition" validate:"required,return_condition"`
	ReturnedAt *time.Time `json:"returned_at"`
	Remarks    string     `json:"remarks" validate:"max=2000"`
}

type regradeBody struct {
	Condition string `json:"condition" validate:"required,return_condition"`
	Remarks   string `json:"remarks" validate:"max=2000"`
}

// RecordReturn closes an approved borrowing with the graded condition.
func RecordReturn(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "returns")
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
		var body recordReturnBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ret, err := svc.RecordReturn(r.Context(), returns.RecordInput{
			RequestID:  requestID,
			ReceiverID: actorID,
			ActorRole:  role,
			Condition:  enums.ReturnCondition(body.Condition),
			ReturnedAt: body.ReturnedAt,
			Remarks:    validators.SanitizeString(body.Remarks, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ret)
	}
}

func RegradeReturn(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "returns")
			return
		}
		actorID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		returnID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body regradeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ret, err := svc.Regrade(r.Context(), returns.RegradeInput{
			ReturnID:  returnID,
			Condition: enums.ReturnCondition(body.Condition),
			ActorID:   actorID,
			ActorRole: role,
			Remarks:   validators.SanitizeString(body.Remarks, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ret)
	}
}

func ListReturns(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "returns")
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := returns.ListParams{Params: page}
		if params.Condition, err = validators.ParseQueryEnum(r, "condition", enums.ParseReturnCondition); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.RequestID, err = validators.ParseQueryEnum(r, "request_id", uuid.Parse); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := r.URL.Query().Get("include_superseded"); raw != "" {
			include, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "include_superseded must be a boolean"))
				return
			}
			params.IncludeSuperseded = include
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetReturn(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "returns")
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ret, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ret)
	}
}
