package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Authenticator is the identity gateway consumed by the HTTP layer.
type Authenticator interface {
	GetUser(ctx context.Context, accessToken string) (*User, error)
	SignUp(ctx context.Context, username, email, password string) error
	SignIn(ctx context.Context, email, password string) (token, userID string, err error)
	SignOut(ctx context.Context, accessToken string) error
}

// AuthClient talks to the hosted identity provider's auth REST API using the
// privileged service key. Bearer tokens presented by callers are only ever
// forwarded, never minted or parsed locally.
type AuthClient struct {
	rest *resty.Client
}

func NewAuthClient(baseURL, serviceKey string, timeout time.Duration) *AuthClient {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/auth/v1").
		SetHeader("apikey", serviceKey).
		SetTimeout(timeout)
	return &AuthClient{rest: rest}
}

func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	user := &User{}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(user).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("auth provider unreachable: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: provider replied %s", ErrUnauthenticated, resp.Status())
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: provider returned no user", ErrUnauthenticated)
	}
	return user, nil
}

func (a *AuthClient) SignUp(ctx context.Context, username, email, password string) error {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"username": username},
	}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetBody(body).
		Post("/signup")
	if err != nil {
		return fmt.Errorf("auth provider unreachable: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sign-up rejected: %s: %s", resp.Status(), resp.String())
	}
	return nil
}

func (a *AuthClient) SignIn(ctx context.Context, email, password string) (string, string, error) {
	session := struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}{}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		Post("/token")
	if err != nil {
		return "", "", fmt.Errorf("auth provider unreachable: %w", err)
	}
	if resp.IsError() {
		return "", "", fmt.Errorf("%w: sign-in rejected with %s", ErrUnauthenticated, resp.Status())
	}
	return session.AccessToken, session.User.ID, nil
}

// SignOut invalidates the caller's session. An empty token is treated as an
// already signed-out session and succeeds without a provider call.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/logout")
	if err != nil {
		return fmt.Errorf("auth provider unreachable: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sign-out rejected: %s", resp.Status())
	}
	return nil
}
