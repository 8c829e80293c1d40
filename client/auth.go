package client

import (
	"context"
	"net/http"

	"campus-gms/types"
)

// SignIn exchanges a student id and password for a token pair and keeps
// the access token for later calls.
func (c *Client) SignIn(ctx context.Context, studentID, password string) (*types.AuthResult, error) {
	var res types.AuthResult
	req := types.SignInRequest{StudentID: studentID, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signin", nil, req, &res); err != nil {
		return nil, err
	}
	c.SetAccessToken(res.Tokens.AccessToken)
	return &res, nil
}

// SignUp creates an account.
func (c *Client) SignUp(ctx context.Context, req types.SignUpRequest) (*types.AuthResult, error) {
	var res types.AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", nil, req, &res); err != nil {
		return nil, err
	}
	c.SetAccessToken(res.Tokens.AccessToken)
	return &res, nil
}

// Refresh trades a refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*types.AuthResult, error) {
	var res types.AuthResult
	req := types.RefreshRequest{RefreshToken: refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SignOut revokes the refresh token and forgets the access token.
func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	req := types.RefreshRequest{RefreshToken: refreshToken}
	err := c.doJSON(ctx, http.MethodPost, "/auth/signout", nil, req, nil)
	c.SetAccessToken("")
	return err
}

// Me returns the signed-in account.
func (c *Client) Me(ctx context.Context) (*types.Account, error) {
	var acct types.Account
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}
