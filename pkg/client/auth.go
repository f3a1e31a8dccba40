package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

// AuthResult is returned by Register and Login.
type AuthResult = transport.AuthResponse

// Register creates an account and stores the issued token in the session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", transport.RegisterRequest{Name: name, Email: email, Password: password})
}

// Login signs in and stores the issued token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", transport.LoginRequest{Email: email, Password: password})
}

// Logout revokes the token server-side and clears the session either way.
func (c *Client) Logout(ctx context.Context) error {
	if !c.session.Authenticated() {
		return nil
	}
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/logout"})
	c.session.Clear()
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "/profile", result: &user}); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*AuthResult, error) {
	var result AuthResult
	if _, err := c.do(ctx, call{method: http.MethodPost, path: path, body: body, result: &result, public: true}); err != nil {
		return nil, err
	}
	c.session.Set(result.Token)
	return &result, nil
}
