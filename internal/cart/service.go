package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/internal/identity"
	"github.com/happycart-io/happycart-backend/pkg/db/models"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart mutation and query operations.
type Service interface {
	AddItem(ctx context.Context, actor identity.Actor, input AddItemInput) (*CartDTO, error)
	SetItemQuantity(ctx context.Context, actor identity.Actor, input SetItemQuantityInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, actor identity.Actor, input RemoveItemInput) (*CartDTO, error)
	GetCart(ctx context.Context, actor identity.Actor) (*CartDTO, error)
	MergeGuestIntoUser(ctx context.Context, userID uuid.UUID, guestID string) (*MergeResult, error)
}

// AddItemInput captures the payload to add a line to a cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Size      string
	Color     string
	Quantity  int
}

// SetItemQuantityInput addresses an existing line by its identity tuple.
type SetItemQuantityInput struct {
	ProductID uuid.UUID
	Size      string
	Color     string
	Quantity  int
}

// RemoveItemInput addresses a line to drop.
type RemoveItemInput struct {
	ProductID uuid.UUID
	Size      string
	Color     string
}

// MergeResult reports the outcome of a guest-to-user merge.
type MergeResult struct {
	Cart *CartDTO
	// NothingToMerge is set when the guest cart existed but carried no items.
	NothingToMerge bool
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// AddItem appends or tops up a line in the actor's cart, creating the cart on
// first use. Name, price and image are captured from the catalog at first add
// and deliberately not refreshed when the same variant is added again.
func (s *service) AddItem(ctx context.Context, actor identity.Actor, input AddItemInput) (*CartDTO, error) {
	if err := actor.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	var saved *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		current, err := findByActor(ctx, txRepo, actor)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if current == nil {
			cart := &models.Cart{
				TotalPrice: decimal.Zero,
				Items:      []models.CartItem{newLine(product, input)},
			}
			setOwner(cart, actor)
			cart.TotalPrice = computeTotal(cart.Items)
			created, err := txRepo.Create(ctx, cart)
			if err != nil {
				return err
			}
			saved, err = txRepo.FindByID(ctx, created.ID)
			return err
		}

		items := current.Items
		merged := false
		for i := range items {
			if items[i].SameVariant(input.ProductID, input.Size, input.Color) {
				items[i].Quantity += input.Quantity
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, newLine(product, input))
		}

		if err := txRepo.ReplaceItems(ctx, current.ID, items); err != nil {
			return err
		}
		current.TotalPrice = computeTotal(items)
		if _, err := txRepo.Save(ctx, current); err != nil {
			return err
		}
		saved, err = txRepo.FindByID(ctx, current.ID)
		return err
	}); err != nil {
		return nil, wrapCartErr(err, "add cart item")
	}

	return ToDTO(saved), nil
}

// SetItemQuantity overwrites a line's quantity; zero removes the line.
func (s *service) SetItemQuantity(ctx context.Context, actor identity.Actor, input SetItemQuantityInput) (*CartDTO, error) {
	if err := actor.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	var saved *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		current, err := findByActor(ctx, txRepo, actor)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return err
		}

		items := current.Items
		idx := -1
		for i := range items {
			if items[i].SameVariant(input.ProductID, input.Size, input.Color) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		if input.Quantity == 0 {
			items = append(items[:idx], items[idx+1:]...)
		} else {
			items[idx].Quantity = input.Quantity
		}

		if err := txRepo.ReplaceItems(ctx, current.ID, items); err != nil {
			return err
		}
		current.TotalPrice = computeTotal(items)
		if _, err := txRepo.Save(ctx, current); err != nil {
			return err
		}
		saved, err = txRepo.FindByID(ctx, current.ID)
		return err
	}); err != nil {
		return nil, wrapCartErr(err, "update cart item")
	}

	return ToDTO(saved), nil
}

// RemoveItem drops a line if present. A missing cart or line is not an error;
// deletes are deliberately lenient.
func (s *service) RemoveItem(ctx context.Context, actor identity.Actor, input RemoveItemInput) (*CartDTO, error) {
	if err := actor.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var saved *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		current, err := findByActor(ctx, txRepo, actor)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		items := current.Items
		kept := items[:0]
		for _, item := range items {
			if !item.SameVariant(input.ProductID, input.Size, input.Color) {
				kept = append(kept, item)
			}
		}

		if err := txRepo.ReplaceItems(ctx, current.ID, kept); err != nil {
			return err
		}
		current.TotalPrice = computeTotal(kept)
		if _, err := txRepo.Save(ctx, current); err != nil {
			return err
		}
		saved, err = txRepo.FindByID(ctx, current.ID)
		return err
	}); err != nil {
		return nil, wrapCartErr(err, "remove cart item")
	}

	return ToDTO(saved), nil
}

// GetCart returns the actor's cart, or not-found.
func (s *service) GetCart(ctx context.Context, actor identity.Actor) (*CartDTO, error) {
	if err := actor.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	cart, err := findByActor(ctx, s.repo, actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return ToDTO(cart), nil
}

// MergeGuestIntoUser folds a guest cart into the user's cart at login. The
// guest cart is deleted inside the same transaction that applies the merge,
// so a concurrent duplicate call cannot apply it twice.
func (s *service) MergeGuestIntoUser(ctx context.Context, userID uuid.UUID, guestID string) (*MergeResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if guestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id is required")
	}

	result := &MergeResult{}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		guestCart, err := txRepo.FindByGuest(ctx, guestID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		userCart, err := txRepo.FindByUser(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch {
		case guestCart == nil && userCart == nil:
			return pkgerrors.New(pkgerrors.CodeNotFound, "no cart to merge")

		case guestCart == nil:
			// Merge already applied or never needed.
			result.Cart = ToDTO(userCart)
			return nil

		case len(guestCart.Items) == 0:
			result.NothingToMerge = true
			result.Cart = ToDTO(userCart)
			return nil

		case userCart == nil:
			// Common first-login path: transfer ownership in place.
			if err := txRepo.ReassignToUser(ctx, guestCart.ID, userID); err != nil {
				return err
			}
			reassigned, err := txRepo.FindByID(ctx, guestCart.ID)
			if err != nil {
				return err
			}
			result.Cart = ToDTO(reassigned)
			return nil

		default:
			items := userCart.Items
			for _, guestItem := range guestCart.Items {
				merged := false
				for i := range items {
					if items[i].SameVariant(guestItem.ProductID, guestItem.Size, guestItem.Color) {
						items[i].Quantity += guestItem.Quantity
						merged = true
						break
					}
				}
				if !merged {
					line := guestItem
					line.ID = uuid.Nil
					line.CartID = userCart.ID
					items = append(items, line)
				}
			}

			if err := txRepo.ReplaceItems(ctx, userCart.ID, items); err != nil {
				return err
			}
			userCart.TotalPrice = computeTotal(items)
			if _, err := txRepo.Save(ctx, userCart); err != nil {
				return err
			}
			if err := txRepo.Delete(ctx, guestCart.ID); err != nil {
				return err
			}

			saved, err := txRepo.FindByID(ctx, userCart.ID)
			if err != nil {
				return err
			}
			result.Cart = ToDTO(saved)
			return nil
		}
	}); err != nil {
		return nil, wrapCartErr(err, "merge carts")
	}

	return result, nil
}

func findByActor(ctx context.Context, repo CartRepository, actor identity.Actor) (*models.Cart, error) {
	if actor.IsUser() {
		return repo.FindByUser(ctx, actor.UserID())
	}
	return repo.FindByGuest(ctx, actor.GuestID())
}

func setOwner(cart *models.Cart, actor identity.Actor) {
	if actor.IsUser() {
		id := actor.UserID()
		cart.UserID = &id
		return
	}
	guestID := actor.GuestID()
	cart.GuestID = &guestID
}

func newLine(product *models.Product, input AddItemInput) models.CartItem {
	return models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		ImageURL:  product.Images.Primary(),
		UnitPrice: product.Price,
		Size:      input.Size,
		Color:     input.Color,
		Quantity:  input.Quantity,
	}
}

// computeTotal is the single source of truth for a cart's derived total.
func computeTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func wrapCartErr(err error, op string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
