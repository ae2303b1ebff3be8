package services

import (
	"context"

	"github.com/justmusik/jmk/internal/models"
)

// AuthService wraps the signin and signup endpoints. These are the only calls
// that go out without a bearer token.
type AuthService struct {
	client *Client
}

// NewAuthService creates an AuthService backed by the shared API client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// SignIn exchanges credentials for a bearer token and the user identity.
// A rejected sign-in surfaces as an [APIError] carrying the server message.
func (s *AuthService) SignIn(ctx context.Context, creds models.Credentials) (*models.SignInResponse, error) {
	var resp models.SignInResponse
	if err := s.client.PostJSON(ctx, "/auth/signin", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignUp registers a new account. Registration does not create a session; the
// user signs in separately afterwards.
func (s *AuthService) SignUp(ctx context.Context, reg models.Registration) error {
	return s.client.PostJSON(ctx, "/auth/signup", reg, nil)
}
