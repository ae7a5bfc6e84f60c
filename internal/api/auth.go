package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/bizpulse/bizdash/internal/session"
)

// AuthClient wraps the authentication and profile endpoints. Login and
// Register are the only calls issued without a bearer token.
type AuthClient struct {
	*Client
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{Client: c}
}

// Profile is the role-bearing identity shape the auth boundary returns.
type Profile struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	RoleName string `json:"role_name"`
	IsActive bool   `json:"is_active"`
}

// LoginResponse carries the opaque bearer token plus the profile used to
// build the session principal.
type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        Profile `json:"user"`
}

// Principal converts the exchange output into a session principal. The
// role name is normalized through the closed enumeration here, at the one
// place backend role strings enter the process.
func (r LoginResponse) Principal() session.Principal {
	return session.Principal{
		Identity: r.User.Email,
		Role:     session.ParseRole(r.User.RoleName),
		Token:    r.AccessToken,
	}
}

// Login performs the OAuth2 password exchange. The form field is named
// username by convention but carries the email.
func (a *AuthClient) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out LoginResponse
	if err := a.postForm(ctx, "/auth/login", form, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (a *AuthClient) Register(ctx context.Context, req RegisterRequest) (LoginResponse, error) {
	var out LoginResponse
	if err := a.post(ctx, "/auth/register", nil, req, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

// Me returns the profile for the current bearer token.
func (a *AuthClient) Me(ctx context.Context) (Profile, error) {
	var out Profile
	if err := a.get(ctx, "/auth/me", nil, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// Dashboard fetches the personal aggregate: available to every
// authenticated role. The payload is returned raw; the aggregator owns
// the defensive decode.
func (a *AuthClient) Dashboard(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := a.get(ctx, "/auth/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *AuthClient) Roles(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := a.get(ctx, "/auth/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
