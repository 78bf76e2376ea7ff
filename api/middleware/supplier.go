package middleware

import (
	"net/http"

	"github.com/dukkanhq/dukkan-backend/api/responses"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

// SupplierContext guards panel routes: admin actors pass through without a
// supplier binding, everyone else must carry one in the token.
func SupplierContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) == "admin" {
				next.ServeHTTP(w, r)
				return
			}
			if SupplierIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
