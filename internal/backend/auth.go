package backend

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"go.uber.org/zap"
)

type loginResponse struct {
	Token struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"token"`
}

// Login exchanges credentials for an access token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return apperrors.Input("Please fill all fields")
	}

	body, err := c.do(ctx, call{
		endpoint: "login",
		method:   http.MethodPost,
		path:     "/api/login/",
		body:     map[string]string{"username": username, "password": password},
	})
	if err != nil {
		if apperrors.GetKind(err) == apperrors.KindAuth {
			return apperrors.New(apperrors.ErrUnauthorized.Code, "Invalid username or password", err)
		}
		return err
	}

	var resp loginResponse
	if err := decode(body, "login response", &resp); err != nil {
		return err
	}
	if resp.Token.Access == "" {
		return apperrors.New(apperrors.ErrShape.Code, "login response has no access token")
	}

	if err := c.session.SignIn(ctx, resp.Token.Access); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to store token")
	}
	c.logger.Info("Signed in", zap.String("username", username))
	return nil
}

// Signup registers a new account. It does not sign in.
func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return apperrors.Input("Please fill all fields")
	}

	_, err := c.do(ctx, call{
		endpoint: "signup",
		method:   http.MethodPost,
		path:     "/api/signup/",
		body:     map[string]string{"username": username, "email": email, "password": password},
	})
	return err
}

// Logout forgets the stored token. The backend keeps no server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.SignOut(ctx)
}

// Health probes the backend without authentication.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, call{
		endpoint: "health",
		method:   http.MethodGet,
		path:     "/api/health/",
	})
	return err
}
