// internal/domain/session/handle.go
package session

import (
	"context"
	"strconv"
)

// Handle binds a Store to a single session ID and adds typed accessors over
// the string-valued fields.
type Handle struct {
	store Store
	id    string
}

// NewHandle creates a handle for one session
func NewHandle(store Store, sessionID string) Handle {
	return Handle{store: store, id: sessionID}
}

// ID returns the session identifier
func (h Handle) ID() string {
	return h.id
}

// Token returns the bearer token, if present
func (h Handle) Token(ctx context.Context) (string, bool, error) {
	return h.store.Get(ctx, h.id, FieldToken)
}

// UserID returns the logged-in user's ID, if present
func (h Handle) UserID(ctx context.Context) (int, bool, error) {
	return h.intField(ctx, FieldUserID)
}

// UserName returns the logged-in user's display name, if present
func (h Handle) UserName(ctx context.Context) (string, bool, error) {
	return h.store.Get(ctx, h.id, FieldUserName)
}

// UserRole returns the logged-in user's role, if present
func (h Handle) UserRole(ctx context.Context) (string, bool, error) {
	return h.store.Get(ctx, h.id, FieldUserRole)
}

// IsAdmin reports whether the session belongs to an admin user
func (h Handle) IsAdmin(ctx context.Context) (bool, error) {
	role, ok, err := h.UserRole(ctx)
	if err != nil {
		return false, err
	}
	return ok && role == RoleAdmin, nil
}

// CartID returns the active cart identifier, if present
func (h Handle) CartID(ctx context.Context) (int, bool, error) {
	return h.intField(ctx, FieldCartID)
}

// SetCartID stores the active cart identifier
func (h Handle) SetCartID(ctx context.Context, cartID int) error {
	return h.store.Set(ctx, h.id, FieldCartID, strconv.Itoa(cartID))
}

// ClearCartID removes the cart pointer while keeping the rest of the session
func (h Handle) ClearCartID(ctx context.Context) error {
	return h.store.Delete(ctx, h.id, FieldCartID)
}

// SetLogin populates the session after a successful login
func (h Handle) SetLogin(ctx context.Context, token string, userID int, name, role string) error {
	if err := h.store.Set(ctx, h.id, FieldToken, token); err != nil {
		return err
	}
	if err := h.store.Set(ctx, h.id, FieldUserID, strconv.Itoa(userID)); err != nil {
		return err
	}
	if err := h.store.Set(ctx, h.id, FieldUserName, name); err != nil {
		return err
	}
	return h.store.Set(ctx, h.id, FieldUserRole, role)
}

// Clear wipes the whole session, as logout does
func (h Handle) Clear(ctx context.Context) error {
	return h.store.Clear(ctx, h.id)
}

func (h Handle) intField(ctx context.Context, field string) (int, bool, error) {
	value, ok, err := h.store.Get(ctx, h.id, field)
	if err != nil || !ok {
		return 0, false, err
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		// A corrupt field is treated as absent so the caller recreates it.
		return 0, false, nil
	}
	return parsed, true, nil
}
