package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukkanhq/dukkan-backend/api/middleware"
	"github.com/dukkanhq/dukkan-backend/api/responses"
	"github.com/dukkanhq/dukkan-backend/api/validators"
	checkoutsvc "github.com/dukkanhq/dukkan-backend/internal/checkout"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/types"
)

type checkoutRequest struct {
	Address       types.Address `json:"address" validate:"required"`
	PaymentMethod string        `json:"paymentMethod" validate:"required"`
	Currency      string        `json:"currency" validate:"required"`
	DeliveryFee   string        `json:"deliveryFee" validate:"required"`
	Tax           string        `json:"tax" validate:"required"`
	PromoDiscount *string       `json:"promoDiscount"`
	Phone         *string       `json:"phone"`
	Notes         *string       `json:"notes" validate:"omitempty,max=1000"`
}

// Checkout turns the caller's cart into a fanned-out order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "user identity missing"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(r, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func (p checkoutRequest) toInput(r *http.Request, customerID uuid.UUID) (checkoutsvc.PlaceOrderInput, error) {
	method, err := enums.ParsePaymentMethod(p.PaymentMethod)
	if err != nil {
		return checkoutsvc.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	currency := enums.Currency(p.Currency)
	if !currency.IsValid() {
		return checkoutsvc.PlaceOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}

	deliveryFee, err := decimal.NewFromString(p.DeliveryFee)
	if err != nil {
		return checkoutsvc.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery fee")
	}
	tax, err := decimal.NewFromString(p.Tax)
	if err != nil {
		return checkoutsvc.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax")
	}
	promoDiscount := decimal.Zero
	if p.PromoDiscount != nil {
		promoDiscount, err = decimal.NewFromString(*p.PromoDiscount)
		if err != nil {
			return checkoutsvc.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid promo discount")
		}
	}

	return checkoutsvc.PlaceOrderInput{
		CustomerID:    customerID,
		CustomerName:  middleware.UserNameFromContext(r.Context()),
		CustomerEmail: middleware.UserEmailFromContext(r.Context()),
		CustomerPhone: p.Phone,
		Address:       p.Address,
		PaymentMethod: method,
		Currency:      currency,
		DeliveryFee:   deliveryFee,
		Tax:           tax,
		PromoDiscount: promoDiscount,
		Notes:         p.Notes,
	}, nil
}
