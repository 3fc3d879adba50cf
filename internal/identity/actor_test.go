package identity

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/happycart-io/happycart-backend/pkg/enums"
)

func TestActorIdentities(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	user := User(userID, enums.UserRoleCustomer)
	if !user.IsUser() || user.IsGuest() {
		t.Fatal("expected user actor")
	}
	if user.UserID() != userID {
		t.Fatalf("unexpected user id %s", user.UserID())
	}
	if user.GuestID() != "" {
		t.Fatal("user actor must not expose a guest id")
	}
	if err := user.Validate(); err != nil {
		t.Fatalf("user actor should validate: %v", err)
	}

	guest := Guest("guest_1712000000000")
	if !guest.IsGuest() || guest.IsUser() {
		t.Fatal("expected guest actor")
	}
	if guest.GuestID() != "guest_1712000000000" {
		t.Fatalf("unexpected guest id %q", guest.GuestID())
	}
	if guest.UserID() != uuid.Nil {
		t.Fatal("guest actor must not expose a user id")
	}
	if err := guest.Validate(); err != nil {
		t.Fatalf("guest actor should validate: %v", err)
	}
}

func TestActorValidateRejectsEmpty(t *testing.T) {
	t.Parallel()

	var empty Actor
	if err := empty.Validate(); err == nil {
		t.Fatal("expected validation error for empty actor")
	}
	if err := Guest("   ").Validate(); err == nil {
		t.Fatal("expected validation error for blank guest id")
	}
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()

	if !User(uuid.New(), enums.UserRoleAdmin).IsAdmin() {
		t.Fatal("expected admin")
	}
	if User(uuid.New(), enums.UserRoleCustomer).IsAdmin() {
		t.Fatal("customer must not be admin")
	}
	if Guest("guest_1").IsAdmin() {
		t.Fatal("guest must not be admin")
	}
}

func TestNewGuestID(t *testing.T) {
	t.Parallel()

	id := NewGuestID()
	if !strings.HasPrefix(id, GuestIDPrefix) {
		t.Fatalf("expected %q prefix, got %q", GuestIDPrefix, id)
	}
	if len(id) <= len(GuestIDPrefix) {
		t.Fatalf("expected timestamp suffix, got %q", id)
	}
}
