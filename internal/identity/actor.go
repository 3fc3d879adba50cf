package identity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/happycart-io/happycart-backend/pkg/enums"
)

// GuestIDPrefix marks server-minted guest identifiers.
const GuestIDPrefix = "guest_"

// Actor identifies who owns a cart: either an authenticated user or an
// anonymous guest. Exactly one of the two identities is set.
type Actor struct {
	userID  uuid.UUID
	guestID string
	role    enums.UserRole
}

// User builds an actor for an authenticated user.
func User(id uuid.UUID, role enums.UserRole) Actor {
	return Actor{userID: id, role: role}
}

// Guest builds an actor for an anonymous guest.
func Guest(id string) Actor {
	return Actor{guestID: strings.TrimSpace(id)}
}

// NewGuestID mints a fresh guest identifier.
func NewGuestID() string {
	return GuestIDPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// IsUser reports whether the actor is an authenticated user.
func (a Actor) IsUser() bool {
	return a.userID != uuid.Nil
}

// IsGuest reports whether the actor is an anonymous guest.
func (a Actor) IsGuest() bool {
	return !a.IsUser() && a.guestID != ""
}

// IsAdmin reports whether the actor is an authenticated admin.
func (a Actor) IsAdmin() bool {
	return a.IsUser() && a.role == enums.UserRoleAdmin
}

// UserID returns the user identity, or uuid.Nil for guests.
func (a Actor) UserID() uuid.UUID {
	return a.userID
}

// GuestID returns the guest identity, or "" for users.
func (a Actor) GuestID() string {
	if a.IsUser() {
		return ""
	}
	return a.guestID
}

// Role returns the user role, or the zero role for guests.
func (a Actor) Role() enums.UserRole {
	if !a.IsUser() {
		return ""
	}
	return a.role
}

// Validate ensures the actor carries exactly one identity.
func (a Actor) Validate() error {
	if a.userID == uuid.Nil && a.guestID == "" {
		return fmt.Errorf("actor requires a user id or a guest id")
	}
	if a.userID != uuid.Nil && a.guestID != "" {
		return fmt.Errorf("actor cannot carry both identities")
	}
	return nil
}

// String renders the owner key for logging.
func (a Actor) String() string {
	if a.IsUser() {
		return "user:" + a.userID.String()
	}
	if a.guestID != "" {
		return "guest:" + a.guestID
	}
	return "anonymous"
}
