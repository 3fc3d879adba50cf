package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/internal/identity"
	"github.com/happycart-io/happycart-backend/pkg/db/models"
	"github.com/happycart-io/happycart-backend/pkg/enums"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
)

func TestAddItemCreatesCartThenMergesVariant(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, _ := newTestStack(product)
	guest := identity.Guest("g1")

	got, err := svc.AddItem(context.Background(), guest, AddItemInput{
		ProductID: product.ID, Size: "M", Color: "Red", Quantity: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart after first add: %+v", got.Items)
	}
	if want := decimal.RequireFromString("50.00"); !got.TotalPrice.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got.TotalPrice)
	}

	got, err = svc.AddItem(context.Background(), guest, AddItemInput{
		ProductID: product.ID, Size: "M", Color: "Red", Quantity: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("same variant must merge into one line, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", got.Items[0].Quantity)
	}
	if want := decimal.RequireFromString("125.00"); !got.TotalPrice.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got.TotalPrice)
	}
}

func TestAddItemDistinctVariantsStaySeparate(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, _ := newTestStack(product)
	guest := identity.Guest("g1")

	mustAdd(t, svc, guest, AddItemInput{ProductID: product.ID, Size: "M", Color: "Red", Quantity: 1})
	got := mustAdd(t, svc, guest, AddItemInput{ProductID: product.ID, Size: "L", Color: "Red", Quantity: 1})

	if len(got.Items) != 2 {
		t.Fatalf("distinct variants must be separate lines, got %d", len(got.Items))
	}
	assertLineUniqueness(t, got)
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestStack()
	_, err := svc.AddItem(context.Background(), identity.Guest("g1"), AddItemInput{
		ProductID: uuid.New(), Quantity: 1,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddItemValidatesInput(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, _ := newTestStack(product)

	if _, err := svc.AddItem(context.Background(), identity.Actor{}, AddItemInput{ProductID: product.ID, Quantity: 1}); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for missing owner")
	}
	if _, err := svc.AddItem(context.Background(), identity.Guest("g1"), AddItemInput{ProductID: product.ID, Quantity: 0}); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for zero quantity")
	}
}

func TestSetItemQuantityZeroRemovesLineKeepsCart(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, _ := newTestStack(product)
	guest := identity.Guest("g1")

	mustAdd(t, svc, guest, AddItemInput{ProductID: product.ID, Size: "M", Color: "Red", Quantity: 2})

	got, err := svc.SetItemQuantity(context.Background(), guest, SetItemQuantityInput{
		ProductID: product.ID, Size: "M", Color: "Red", Quantity: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(got.Items))
	}
	if !got.TotalPrice.IsZero() {
		t.Fatalf("expected zero total, got %s", got.TotalPrice)
	}

	// Cart survives with zero lines.
	if _, err := svc.GetCart(context.Background(), guest); err != nil {
		t.Fatalf("cart must not be deleted: %v", err)
	}
}

func TestSetItemQuantityMissingLine(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, _ := newTestStack(product)
	guest := identity.Guest("g1")

	_, err := svc.SetItemQuantity(context.Background(), guest, SetItemQuantityInput{
		ProductID: product.ID, Quantity: 2,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing cart, got %v", err)
	}

	mustAdd(t, svc, guest, AddItemInput{ProductID: product.ID, Size: "M", Color: "Red", Quantity: 1})
	_, err = svc.SetItemQuantity(context.Background(), guest, SetItemQuantityInput{
		ProductID: product.ID, Size: "XL", Color: "Red", Quantity: 2,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing line, got %v", err)
	}
}

func TestRemoveItemIsLenient(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, _ := newTestStack(product)
	guest := identity.Guest("g1")

	// No cart at all: silently a no-op.
	got, err := svc.RemoveItem(context.Background(), guest, RemoveItemInput{ProductID: product.ID})
	if err != nil {
		t.Fatalf("remove without cart must not fail: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil cart, got %+v", got)
	}

	mustAdd(t, svc, guest, AddItemInput{ProductID: product.ID, Size: "M", Color: "Red", Quantity: 2})

	// Missing line: cart returned unchanged.
	got, err = svc.RemoveItem(context.Background(), guest, RemoveItemInput{ProductID: product.ID, Size: "L"})
	if err != nil {
		t.Fatalf("remove of missing line must not fail: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("cart must be unchanged, got %d lines", len(got.Items))
	}

	got, err = svc.RemoveItem(context.Background(), guest, RemoveItemInput{ProductID: product.ID, Size: "M", Color: "Red"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 || !got.TotalPrice.IsZero() {
		t.Fatalf("expected empty cart with zero total, got %+v", got)
	}
}

func TestTotalInvariantAcrossMutations(t *testing.T) {
	t.Parallel()

	tee := fixtureProduct("Basic Tee", "25.00")
	hoodie := fixtureProduct("Hoodie", "59.90")
	svc, _ := newTestStack(tee, hoodie)
	guest := identity.Guest("g1")

	mustAdd(t, svc, guest, AddItemInput{ProductID: tee.ID, Size: "M", Color: "Red", Quantity: 3})
	mustAdd(t, svc, guest, AddItemInput{ProductID: hoodie.ID, Size: "L", Color: "Black", Quantity: 1})
	got, err := svc.SetItemQuantity(context.Background(), guest, SetItemQuantityInput{
		ProductID: tee.ID, Size: "M", Color: "Red", Quantity: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertTotalInvariant(t, got)
	if want := decimal.RequireFromString("109.90"); !got.TotalPrice.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got.TotalPrice)
	}
}

func TestMergeWithNoCarts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestStack()
	_, err := svc.MergeGuestIntoUser(context.Background(), uuid.New(), "g1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMergeWithOnlyUserCartReturnsItUnchanged(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, _ := newTestStack(product)
	userID := uuid.New()
	user := identity.User(userID, enums.UserRoleCustomer)

	mustAdd(t, svc, user, AddItemInput{ProductID: product.ID, Size: "M", Color: "Red", Quantity: 2})

	result, err := svc.MergeGuestIntoUser(context.Background(), userID, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NothingToMerge {
		t.Fatal("missing guest cart is not the empty-cart case")
	}
	if result.Cart == nil || len(result.Cart.Items) != 1 || result.Cart.Items[0].Quantity != 2 {
		t.Fatalf("user cart must be unchanged: %+v", result.Cart)
	}
}

func TestMergeEmptyGuestCartIsNoOp(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, repo := newTestStack(product)
	userID := uuid.New()
	user := identity.User(userID, enums.UserRoleCustomer)
	guest := identity.Guest("g1")

	mustAdd(t, svc, user, AddItemInput{ProductID: product.ID, Size: "M", Color: "Red", Quantity: 2})
	// Guest cart exists but carries no lines.
	mustAdd(t, svc, guest, AddItemInput{ProductID: product.ID, Size: "S", Color: "Red", Quantity: 1})
	if _, err := svc.SetItemQuantity(context.Background(), guest, SetItemQuantityInput{
		ProductID: product.ID, Size: "S", Color: "Red", Quantity: 0,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.MergeGuestIntoUser(context.Background(), userID, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.NothingToMerge {
		t.Fatal("expected nothing-to-merge outcome")
	}
	if len(result.Cart.Items) != 1 || result.Cart.Items[0].Quantity != 2 {
		t.Fatalf("user cart must be untouched: %+v", result.Cart)
	}
	if repo.findGuestCart("g1") == nil {
		t.Fatal("empty guest cart must not be deleted")
	}
}

func TestMergeReassignsGuestCartWhenUserHasNone(t *testing.T) {
	t.Parallel()

	product := fixtureProduct("Basic Tee", "25.00")
	svc, repo := newTestStack(product)
	userID := uuid.New()
	guest := identity.Guest("g1")

	before := mustAdd(t, svc, guest, AddItemInput{ProductID: product.ID, Size: "M", Color: "Red", Quantity: 2})

	result, err := svc.MergeGuestIntoUser(context.Background(), userID, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cart.ID != before.ID {
		t.Fatal("reassignment must transfer ownership in place, not copy")
	}
	if result.Cart.UserID == nil || *result.Cart.UserID != userID {
		t.Fatalf("cart must now belong to the user: %+v", result.Cart)
	}
	if result.Cart.GuestID != nil {
		t.Fatal("guest owner must be cleared")
	}
	if repo.findGuestCart("g1") != nil {
		t.Fatal("guest key must no longer resolve a cart")
	}
}

func TestMergeSumsSharedVariantsAndDeletesGuestCart(t *testing.T) {
	t.Parallel()

	tee := fixtureProduct("Basic Tee", "25.00")
	hoodie := fixtureProduct("Hoodie", "59.90")
	svc, repo := newTestStack(tee, hoodie)
	userID := uuid.New()
	user := identity.User(userID, enums.UserRoleCustomer)
	guest := identity.Guest("g1")

	mustAdd(t, svc, user, AddItemInput{ProductID: tee.ID, Size: "M", Color: "Red", Quantity: 2})
	mustAdd(t, svc, guest, AddItemInput{ProductID: tee.ID, Size: "M", Color: "Red", Quantity: 3})
	mustAdd(t, svc, guest, AddItemInput{ProductID: hoodie.ID, Size: "L", Color: "Black", Quantity: 1})

	result, err := svc.MergeGuestIntoUser(context.Background(), userID, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	merged := result.Cart
	if len(merged.Items) != 2 {
		t.Fatalf("expected 2 lines after merge, got %d", len(merged.Items))
	}
	assertLineUniqueness(t, merged)
	assertTotalInvariant(t, merged)
	for _, item := range merged.Items {
		if item.ProductID == tee.ID && item.Quantity != 5 {
			t.Fatalf("shared variant must sum quantities, got %d", item.Quantity)
		}
	}
	if repo.findGuestCart("g1") != nil {
		t.Fatal("guest cart must be deleted after merge")
	}

	// Second merge with the same guest id is a no-op on the user cart.
	again, err := svc.MergeGuestIntoUser(context.Background(), userID, "g1")
	if err != nil {
		t.Fatalf("repeat merge must not fail: %v", err)
	}
	if len(again.Cart.Items) != 2 {
		t.Fatalf("repeat merge must not duplicate lines, got %d", len(again.Cart.Items))
	}
	assertTotalInvariant(t, again.Cart)
	for _, item := range again.Cart.Items {
		if item.ProductID == tee.ID && item.Quantity != 5 {
			t.Fatalf("repeat merge changed quantities: %d", item.Quantity)
		}
	}
}

func assertTotalInvariant(t *testing.T, cart *CartDTO) {
	t.Helper()
	want := decimal.Zero
	for _, item := range cart.Items {
		want = want.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !cart.TotalPrice.Equal(want) {
		t.Fatalf("total invariant broken: stored %s computed %s", cart.TotalPrice, want)
	}
}

func assertLineUniqueness(t *testing.T, cart *CartDTO) {
	t.Helper()
	seen := map[[3]string]bool{}
	for _, item := range cart.Items {
		key := [3]string{item.ProductID.String(), item.Size, item.Color}
		if seen[key] {
			t.Fatalf("duplicate line for variant %v", key)
		}
		seen[key] = true
	}
}

func mustAdd(t *testing.T, svc Service, actor identity.Actor, input AddItemInput) *CartDTO {
	t.Helper()
	got, err := svc.AddItem(context.Background(), actor, input)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	return got
}

func fixtureProduct(name, price string) *models.Product {
	return &models.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

func newTestStack(catalog ...*models.Product) (Service, *fakeCartRepo) {
	repo := newFakeCartRepo()
	loader := fakeProductLoader{}
	for _, product := range catalog {
		loader[product.ID] = product
	}
	svc, err := NewService(repo, stubTxRunner{}, loader)
	if err != nil {
		panic(err)
	}
	return svc, repo
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeProductLoader map[uuid.UUID]*models.Product

func (f fakeProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := f[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeCartRepo keeps carts in memory with copy-on-read semantics so tests
// observe only what the service persisted.
type fakeCartRepo struct {
	carts map[uuid.UUID]*models.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[uuid.UUID]*models.Cart)}
}

func (f *fakeCartRepo) findGuestCart(guestID string) *models.Cart {
	for _, cart := range f.carts {
		if cart.GuestID != nil && *cart.GuestID == guestID {
			return cart
		}
	}
	return nil
}

func (f *fakeCartRepo) WithTx(tx *gorm.DB) CartRepository { return f }

func (f *fakeCartRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	for _, cart := range f.carts {
		if cart.UserID != nil && *cart.UserID == userID {
			return copyCart(cart), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) FindByGuest(ctx context.Context, guestID string) (*models.Cart, error) {
	if cart := f.findGuestCart(guestID); cart != nil {
		return copyCart(cart), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	if cart, ok := f.carts[id]; ok {
		return copyCart(cart), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.ID = uuid.New()
	for i := range cart.Items {
		cart.Items[i].ID = uuid.New()
		cart.Items[i].CartID = cart.ID
	}
	f.carts[cart.ID] = copyCart(cart)
	return cart, nil
}

func (f *fakeCartRepo) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	stored, ok := f.carts[cart.ID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	stored.UserID = cart.UserID
	stored.GuestID = cart.GuestID
	stored.TotalPrice = cart.TotalPrice
	return cart, nil
}

func (f *fakeCartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	stored, ok := f.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	replaced := make([]models.CartItem, len(items))
	for i, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.CartID = cartID
		replaced[i] = item
	}
	stored.Items = replaced
	return nil
}

func (f *fakeCartRepo) ReassignToUser(ctx context.Context, cartID, userID uuid.UUID) error {
	stored, ok := f.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	id := userID
	stored.UserID = &id
	stored.GuestID = nil
	return nil
}

func (f *fakeCartRepo) Delete(ctx context.Context, cartID uuid.UUID) error {
	delete(f.carts, cartID)
	return nil
}

func (f *fakeCartRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	for id, cart := range f.carts {
		if cart.UserID != nil && *cart.UserID == userID {
			delete(f.carts, id)
		}
	}
	return nil
}

func copyCart(cart *models.Cart) *models.Cart {
	clone := *cart
	clone.Items = make([]models.CartItem, len(cart.Items))
	copy(clone.Items, cart.Items)
	return &clone
}
