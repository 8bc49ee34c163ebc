// internal/domain/session/store.go
package session

import (
	"context"
	"errors"
)

// ErrAuthRequired is returned by flows that need a logged-in session. Callers
// must surface it as an authentication prompt, not retry, and must not let
// the operation reach the network.
var ErrAuthRequired = errors.New("authentication required")

// Session field names. Values are stored as strings, matching what the
// storefront keeps in browser storage.
const (
	FieldToken    = "token"
	FieldUserID   = "user_id"
	FieldUserName = "user_name"
	FieldUserRole = "user_role"
	FieldCartID   = "cart_id"
)

// User roles carried in FieldUserRole
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Store persists per-session key/value state. Fields are set and cleared
// independently: logging out wipes the whole session, while checkout removes
// only the cart pointer and leaves the token in place.
type Store interface {
	// Get returns the value of a field and whether it is present.
	Get(ctx context.Context, sessionID, field string) (string, bool, error)

	// Set stores a field value, creating the session if needed.
	Set(ctx context.Context, sessionID, field, value string) error

	// Delete removes individual fields. Missing fields are not an error.
	Delete(ctx context.Context, sessionID string, fields ...string) error

	// Clear removes the entire session.
	Clear(ctx context.Context, sessionID string) error
}
