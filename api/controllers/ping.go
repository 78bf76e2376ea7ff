package controllers

import (
	"net/http"

	"github.com/dukkanhq/dukkan-backend/api/middleware"
	"github.com/dukkanhq/dukkan-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if supplier := middleware.SupplierIDFromContext(r.Context()); supplier != "" {
			payload["supplier_id"] = supplier
		}
		responses.WriteSuccess(w, payload)
	}
}
