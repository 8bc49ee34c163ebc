// internal/infrastructure/storeapi/users.go
package storeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// User is account data owned by the remote service
type User struct {
	UserID  int    `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

// LoginResult is the remote login response
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// UpdateUserRequest updates profile fields of an account
type UpdateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Login exchanges credentials for a bearer token. The auth endpoint takes a
// form-encoded body, unlike the rest of the API.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store API call failed: %w", err)
	}
	defer resp.Body.Close()

	var result LoginResult
	if err := decodeResponse(resp, http.MethodPost, "/auth/login", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentUser fetches the account belonging to the bearer token
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers fetches every account. Admin only on the remote side.
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/users", "", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates profile fields of an account
func (c *Client) UpdateUser(ctx context.Context, token string, userID int, req UpdateUserRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", userID), token, req, nil)
}

// DeleteUser removes an account. Admin only on the remote side.
func (c *Client) DeleteUser(ctx context.Context, token string, userID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", userID), token, nil, nil)
}
