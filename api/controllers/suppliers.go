package controllers

import (
	"net/http"

	"github.com/dukkanhq/dukkan-backend/api/responses"
	suppliersvc "github.com/dukkanhq/dukkan-backend/internal/suppliers"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

// ListSuppliers returns the active supplier directory.
func ListSuppliers(svc suppliersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// SupplierDetail returns one supplier profile.
func SupplierDetail(svc suppliersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := pathUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
