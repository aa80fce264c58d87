package backend

import (
	"context"
	"net/http"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

type loginRequestDTO struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	LoginType string `json:"loginType,omitempty"`
}

const adminPortalLogin = "ADMIN_PORTAL"

type loginResponseDTO struct {
	Message  string `json:"message"`
	Role     Role   `json:"role"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

type Session struct {
	Username string
	Role     Role
	// Token is the backend session cookie value, or a bearer token when the backend returns one in the body.
	Token string
}

// Credentials returns the credentials that authenticate as this session.
func (s Session) Credentials() Credentials {
	return SessionCookie(s.Token)
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	return c.login(ctx, loginRequestDTO{Username: username, Password: password})
}

// AdminLogin signs in through the admin portal. The caller still checks the role.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (*Session, error) {
	return c.login(ctx, loginRequestDTO{Username: username, Password: password, LoginType: adminPortalLogin})
}

func (c *Client) login(ctx context.Context, req loginRequestDTO) (*Session, error) {
	raw, err := c.send(ctx, http.MethodPost, "/api/auth/login", nil, req)
	if err != nil {
		return nil, err
	}

	var resp loginResponseDTO
	if err := decode(http.MethodPost, "/api/auth/login", raw.body, &resp); err != nil {
		return nil, err
	}

	token := resp.Token
	for _, cookie := range raw.cookies {
		if cookie.Name == SessionCookieName {
			token = cookie.Value
		}
	}
	username := resp.Username
	if username == "" {
		username = req.Username
	}
	return &Session{
		Username: username,
		Role:     resp.Role,
		Token:    token,
	}, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// VerifySession returns the user the attached credentials belong to.
func (c *Client) VerifySession(ctx context.Context) (*Session, error) {
	var resp loginResponseDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/verify", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &Session{Username: resp.Username, Role: resp.Role}, nil
}

func (c *Client) Register(ctx context.Context, r Registration) error {
	return c.doJSON(ctx, http.MethodPost, "/api/users/register", nil, r, nil)
}
