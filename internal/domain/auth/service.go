// internal/domain/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
)

var (
	// ErrInvalidEmail rejects a malformed email address before any call
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrPasswordTooShort rejects a too-short password before any call
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrTokenExpired reports a bearer token past its expiry claim
	ErrTokenExpired = errors.New("session token expired")
)

var emailPattern = regexp.MustCompile(`^\S+@\S+$`)

// Service logs users in and out of the remote store and keeps the session
// store in sync. Token issuance and verification belong to the remote API;
// the gateway only carries the opaque token.
type Service struct {
	api      *storeapi.Client
	eventBus *bus.Bus
	logger   *logrus.Logger
}

// NewService creates a new auth service
func NewService(api *storeapi.Client, eventBus *bus.Bus, logger *logrus.Logger) *Service {
	return &Service{
		api:      api,
		eventBus: eventBus,
		logger:   logger,
	}
}

// RegisterInput carries the registration form fields
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// Login validates credentials locally, exchanges them for a token and
// populates the session store with token, user ID, name and role.
func (s *Service) Login(ctx context.Context, sess session.Handle, email, password string) (*storeapi.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	role := result.User.Role
	if role == "" {
		role = session.RoleUser
	}

	if err := sess.SetLogin(ctx, result.AccessToken, result.User.UserID, result.User.Name, role); err != nil {
		return nil, fmt.Errorf("login succeeded but session not stored: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sess.ID(),
		"user_id":    result.User.UserID,
		"role":       role,
	}).Info("User logged in")

	return &result.User, nil
}

// Register validates the form locally and creates the account remotely.
// Accounts created through the storefront are always plain users.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*storeapi.User, error) {
	if err := validateCredentials(input.Email, input.Password); err != nil {
		return nil, err
	}

	user, err := s.api.Register(ctx, storeapi.RegisterRequest{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		Role:     session.RoleUser,
		Password: input.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return user, nil
}

// Logout clears the whole session and tells the rest of the UI about it
func (s *Service) Logout(ctx context.Context, sess session.Handle) error {
	if err := sess.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.eventBus.Publish(bus.Event{Topic: bus.TopicUserLoggedOut, SessionID: sess.ID()})
	return nil
}

// CheckToken reports whether the session carries a usable bearer token. The
// expiry claim is read without verifying the signature, which stays with the
// remote API; this only saves a round-trip that would come back 401 anyway.
func (s *Service) CheckToken(ctx context.Context, sess session.Handle) error {
	token, ok, err := sess.Token(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrAuthRequired
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque or malformed tokens are passed through; the remote API
		// decides whether they are valid.
		return nil
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return nil
	}
	if expiry.Before(time.Now()) {
		return ErrTokenExpired
	}

	return nil
}

func validateCredentials(email, password string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}
