package controllers

import (
	"net/http"
	"strings"

	"github.com/aymanezz/bazarly-backend/api/responses"
	"github.com/aymanezz/bazarly-backend/api/validators"
	requestsvc "github.com/aymanezz/bazarly-backend/internal/requests"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
	"github.com/aymanezz/bazarly-backend/pkg/logger"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

type transitionBody struct {
	Status string  `json:"status" validate:"required"`
	Reason *string `json:"reason,omitempty"`
}

type rejectBody struct {
	Reason *string `json:"reason,omitempty"`
}

func decideInputFromStatus(raw string, reason *string) (requestsvc.DecideInput, error) {
	status := enums.RequestStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case enums.RequestStatusApproved:
		return requestsvc.DecideInput{Approve: true, Reason: reason}, nil
	case enums.RequestStatusRejected:
		return requestsvc.DecideInput{Approve: false, Reason: reason}, nil
	default:
		return requestsvc.DecideInput{}, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or rejected")
	}
}

// AdminListRequests pages the moderation queue. Pending products that lost
// their review request get one recreated before the page is served.
func AdminListRequests(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := requestsvc.AdminListParams{
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
		if raw := validators.ParseQueryString(r, "type"); raw != "" {
			reqType := enums.RequestType(strings.ToUpper(raw))
			if !reqType.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown request type"))
				return
			}
			params.Type = &reqType
		}

		result, err := svc.ListRequests(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminGetRequest returns any request for moderation review.
func AdminGetRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		requestID, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.GetRequest(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, requestsvc.FromModel(request))
	}
}

// AdminTransitionRequest moves a pending request to approved or rejected
// and applies its side effects.
func AdminTransitionRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		adminID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transitionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decideInputFromStatus(body.Status, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Decide(r.Context(), adminID, requestID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, requestsvc.FromModel(request))
	}
}

// AdminApproveProduct moderates a product directly. A review request is
// created on the fly when the auto-submission trigger missed one.
func AdminApproveProduct(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminProductDecision(svc, logg, true)
}

// AdminRejectProduct rejects a product and records the reason on its
// review request.
func AdminRejectProduct(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminProductDecision(svc, logg, false)
}

func adminProductDecision(svc requestsvc.Service, logg *logger.Logger, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		adminID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := requestsvc.DecideInput{Approve: approve}
		if !approve {
			var body rejectBody
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Reason = body.Reason
		}

		request, err := svc.DecideForProduct(r.Context(), adminID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, requestsvc.FromModel(request))
	}
}
