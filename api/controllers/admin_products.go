package controllers

import (
	"net/http"
	"strings"

	"github.com/aymanezz/bazarly-backend/api/responses"
	"github.com/aymanezz/bazarly-backend/api/validators"
	productsvc "github.com/aymanezz/bazarly-backend/internal/products"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
	"github.com/aymanezz/bazarly-backend/pkg/logger"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

// AdminListProducts pages listings by status for the moderation console.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		status := enums.ProductStatus(strings.ToLower(validators.ParseQueryString(r, "status")))
		if status == "" {
			status = enums.ProductStatusPending
		}
		if !status.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown product status"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByStatus(r.Context(), status, productsvc.ListParams{
			Params: pagination.Params{
				Limit:  limit,
				Cursor: validators.ParseQueryString(r, "cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminGetProduct returns any listing regardless of status.
func AdminGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsvc.FromModel(product))
	}
}
