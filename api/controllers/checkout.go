package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/happycart-io/happycart-backend/api/middleware"
	"github.com/happycart-io/happycart-backend/api/responses"
	"github.com/happycart-io/happycart-backend/api/validators"
	checkoutsvc "github.com/happycart-io/happycart-backend/internal/checkout"
	"github.com/happycart-io/happycart-backend/internal/identity"
	internalorders "github.com/happycart-io/happycart-backend/internal/orders"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
	"github.com/happycart-io/happycart-backend/pkg/logger"
	"github.com/happycart-io/happycart-backend/pkg/types"
)

type createCheckoutRequest struct {
	CheckoutItems   types.OrderItems `json:"checkoutItems" validate:"required,min=1"`
	ShippingAddress types.Address    `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod" validate:"required"`
	TotalPrice      decimal.Decimal  `json:"totalPrice"`
}

// CheckoutCreate handles POST /api/checkout.
func CheckoutCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actor, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.CreateSession(r.Context(), actor.UserID(), checkoutsvc.CreateSessionInput{
			Items:           payload.CheckoutItems,
			ShippingAddress: payload.ShippingAddress,
			PaymentMethod:   payload.PaymentMethod,
			TotalPrice:      payload.TotalPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

type markPaidRequest struct {
	PaymentStatus  string        `json:"paymentStatus" validate:"required"`
	PaymentDetails types.JSONMap `json:"paymentDetails"`
}

// CheckoutMarkPaid handles PUT /api/checkout/{id}/pay.
func CheckoutMarkPaid(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actor, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload markPaidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.MarkPaid(r.Context(), actor.UserID(), sessionID, checkoutsvc.MarkPaidInput{
			PaymentStatus:  payload.PaymentStatus,
			PaymentDetails: payload.PaymentDetails,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// CheckoutFinalize handles POST /api/checkout/{id}/finalize.
func CheckoutFinalize(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actor, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Finalize(r.Context(), actor.UserID(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.ToDTO(order))
	}
}

func requireUser(r *http.Request) (identity.Actor, error) {
	actor := middleware.ActorFromContext(r.Context())
	if !actor.IsUser() {
		return identity.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}
