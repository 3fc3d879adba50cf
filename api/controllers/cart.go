package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/happycart-io/happycart-backend/api/middleware"
	"github.com/happycart-io/happycart-backend/api/responses"
	"github.com/happycart-io/happycart-backend/api/validators"
	cartsvc "github.com/happycart-io/happycart-backend/internal/cart"
	"github.com/happycart-io/happycart-backend/internal/identity"
	"github.com/happycart-io/happycart-backend/pkg/enums"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
	"github.com/happycart-io/happycart-backend/pkg/logger"
)

type cartOwnerFields struct {
	GuestID string `json:"guestId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// resolveCartActor picks the cart owner for a request: an authenticated token
// wins, then an explicit userId field, then a guestId field. When nothing
// identifies the caller and minting is allowed (add-to-cart only), a fresh
// guest id is created so the client can keep shopping without an account.
func resolveCartActor(r *http.Request, owner cartOwnerFields, mintGuest bool) (identity.Actor, error) {
	if actor := middleware.ActorFromContext(r.Context()); actor.IsUser() {
		return actor, nil
	}
	if owner.UserID != "" {
		id, err := uuid.Parse(owner.UserID)
		if err != nil {
			return identity.Actor{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid userId")
		}
		return identity.User(id, enums.UserRoleCustomer), nil
	}
	if owner.GuestID != "" {
		return identity.Guest(owner.GuestID), nil
	}
	if mintGuest {
		return identity.Guest(identity.NewGuestID()), nil
	}
	return identity.Actor{}, pkgerrors.New(pkgerrors.CodeValidation, "guestId or userId is required")
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	cartOwnerFields
}

// CartAddItem handles POST /api/cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := resolveCartActor(r, payload.cartOwnerFields, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), actor, cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			Size:      payload.Size,
			Color:     payload.Color,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

type setCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=0"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	cartOwnerFields
}

// CartSetItemQuantity handles PUT /api/cart. Quantity zero removes the line.
func CartSetItemQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload setCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := resolveCartActor(r, payload.cartOwnerFields, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetItemQuantity(r.Context(), actor, cartsvc.SetItemQuantityInput{
			ProductID: payload.ProductID,
			Size:      payload.Size,
			Color:     payload.Color,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

type removeCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	cartOwnerFields
}

// CartRemoveItem handles DELETE /api/cart. Removing from a missing cart or a
// missing line is not an error.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload removeCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := resolveCartActor(r, payload.cartOwnerFields, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), actor, cartsvc.RemoveItemInput{
			ProductID: payload.ProductID,
			Size:      payload.Size,
			Color:     payload.Color,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartGet handles GET /api/cart with userId/guestId query fallback.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner := cartOwnerFields{
			GuestID: validators.ParseQueryString(r, "guestId"),
			UserID:  validators.ParseQueryString(r, "userId"),
		}
		actor, err := resolveCartActor(r, owner, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetCart(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

type mergeCartRequest struct {
	GuestID string `json:"guestId" validate:"required"`
}

// CartMerge handles POST /api/cart/merge: the authenticated user absorbs the
// guest cart.
func CartMerge(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsUser() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var payload mergeCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MergeGuestIntoUser(r.Context(), actor.UserID(), payload.GuestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"cart":           result.Cart,
			"nothingToMerge": result.NothingToMerge,
		})
	}
}
