package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aymanezz/bazarly-backend/api/middleware"
	"github.com/aymanezz/bazarly-backend/api/responses"
	"github.com/aymanezz/bazarly-backend/api/validators"
	requestsvc "github.com/aymanezz/bazarly-backend/internal/requests"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
	"github.com/aymanezz/bazarly-backend/pkg/logger"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

type submitRequestBody struct {
	Type         string           `json:"type" validate:"required"`
	Description  string           `json:"description" validate:"required"`
	Images       []string         `json:"images,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	DurationDays *int             `json:"duration_days,omitempty" validate:"omitempty,min=1"`
	ProductID    *uuid.UUID       `json:"product_id,omitempty"`
}

func actorFromRequest(r *http.Request) (requestsvc.Actor, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return requestsvc.Actor{}, err
	}
	storeID, err := storeIDFromRequest(r)
	if err != nil {
		return requestsvc.Actor{}, err
	}
	role := enums.ActorRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return requestsvc.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor role missing")
	}
	return requestsvc.Actor{UserID: userID, StoreID: storeID, Role: role}, nil
}

// SubmitRequest files a sponsorship, badge, or complaint ask for moderation.
func SubmitRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reqType := enums.RequestType(strings.ToUpper(strings.TrimSpace(body.Type)))
		if !reqType.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown request type"))
			return
		}

		request, err := svc.SubmitRequest(r.Context(), actor, requestsvc.SubmitRequestInput{
			Type:         reqType,
			Description:  validators.SanitizeString(body.Description, 2000),
			Images:       body.Images,
			Amount:       body.Amount,
			DurationDays: body.DurationDays,
			ProductID:    body.ProductID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, requestsvc.FromModel(request))
	}
}

// ListOwnRequests pages the caller's submitted asks.
func ListOwnRequests(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		senderID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := requestsvc.ListParams{
			Params: pagination.Params{
				Limit:  limit,
				Cursor: validators.ParseQueryString(r, "cursor"),
			},
		}
		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			status := enums.RequestStatus(strings.ToLower(raw))
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown request status"))
				return
			}
			params.Status = &status
		}

		result, err := svc.ListOwnRequests(r.Context(), senderID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetOwnRequest returns one of the caller's asks, decision included.
func GetOwnRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		senderID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.GetOwnRequest(r.Context(), senderID, requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, requestsvc.FromModel(request))
	}
}
