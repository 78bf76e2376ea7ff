package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dukkanhq/dukkan-backend/api/middleware"
	"github.com/dukkanhq/dukkan-backend/api/responses"
	"github.com/dukkanhq/dukkan-backend/api/validators"
	ordersvc "github.com/dukkanhq/dukkan-backend/internal/orders"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

// PanelListOrders returns the supplier's sub-orders, newest first.
func PanelListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := panelSupplierID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ListSupplierOrders(r.Context(), supplierID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// PanelOrderDetail returns one sub-order with its items.
func PanelOrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := panelSupplierID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subOrderID, err := pathUUID(r, "subOrderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetSupplierSubOrder(r.Context(), supplierID, subOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PanelUpdateOrderStatus moves a sub-order through the fulfillment lifecycle.
func PanelUpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := panelActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subOrderID, err := pathUUID(r, "subOrderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		view, err := svc.UpdateSubOrderStatus(r.Context(), ordersvc.UpdateSubOrderStatusInput{
			SubOrderID:      subOrderID,
			Target:          target,
			ActorUserID:     actor.userID,
			ActorSupplierID: actor.supplierID,
			ActorRole:       actor.role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

// PanelUpdateOrderPayment records a payment state change on a sub-order.
func PanelUpdateOrderPayment(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := panelActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subOrderID, err := pathUUID(r, "subOrderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParsePaymentStatus(payload.PaymentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		view, err := svc.UpdateSubOrderPayment(r.Context(), ordersvc.UpdateSubOrderPaymentInput{
			SubOrderID:      subOrderID,
			Target:          target,
			ActorUserID:     actor.userID,
			ActorSupplierID: actor.supplierID,
			ActorRole:       actor.role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type panelActorRef struct {
	userID     uuid.UUID
	supplierID uuid.UUID
	role       string
}

func panelActor(r *http.Request) (panelActorRef, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return panelActorRef{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "user identity missing")
	}
	actor := panelActorRef{userID: userID, role: middleware.RoleFromContext(r.Context())}
	if raw := middleware.SupplierIDFromContext(r.Context()); raw != "" {
		supplierID, err := uuid.Parse(raw)
		if err != nil {
			return panelActorRef{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid supplier context")
		}
		actor.supplierID = supplierID
	}
	return actor, nil
}

// panelSupplierID resolves the supplier scope for read endpoints. Admins may
// impersonate a supplier via the supplierId query parameter.
func panelSupplierID(r *http.Request) (uuid.UUID, error) {
	if raw := middleware.SupplierIDFromContext(r.Context()); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid supplier context")
		}
		return id, nil
	}
	if middleware.RoleFromContext(r.Context()) == string(enums.RoleAdmin) {
		raw := r.URL.Query().Get("supplierId")
		if raw == "" {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "supplierId query parameter required")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplierId")
		}
		return id, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
}
