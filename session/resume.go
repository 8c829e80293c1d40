package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"campus-gms/client"
	"campus-gms/types"
)

// ErrExpired is returned when the server rejects the saved refresh token.
var ErrExpired = errors.New("session expired, sign in again")

// Authenticator is the part of the API client Resume needs.
type Authenticator interface {
	SetAccessToken(token string)
	Me(ctx context.Context) (*types.Account, error)
	Refresh(ctx context.Context, refreshToken string) (*types.AuthResult, error)
}

// Resume silently re-authenticates from saved credentials. The saved
// access token is tried first; when it is rejected the refresh token is
// exchanged for a new pair, which is saved. On success the store holds the
// signed-in identity. Saved tokens are cleared only when the server
// rejects the refresh token; transport failures leave them in place.
func Resume(ctx context.Context, auth Authenticator, ts *TokenStore, store *Store) (Session, error) {
	creds, err := ts.Load()
	if err != nil {
		return Session{}, err
	}
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return Session{}, ErrNoCredentials
	}

	if creds.AccessToken != "" {
		auth.SetAccessToken(creds.AccessToken)
		if acct, err := auth.Me(ctx); err == nil {
			sess := FromAccount(acct)
			store.Set(sess)
			return sess, nil
		} else if ctx.Err() != nil {
			return Session{}, ctx.Err()
		}
	}

	if creds.RefreshToken == "" {
		return Session{}, ErrExpired
	}
	res, err := auth.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		if ctx.Err() != nil {
			return Session{}, ctx.Err()
		}
		if !rejected(err) {
			return Session{}, fmt.Errorf("refresh session: %w", err)
		}
		if clearErr := ts.ClearTokens(); clearErr != nil {
			return Session{}, fmt.Errorf("%w (clear tokens: %v)", ErrExpired, clearErr)
		}
		return Session{}, fmt.Errorf("%w: %v", ErrExpired, err)
	}

	auth.SetAccessToken(res.Tokens.AccessToken)
	if err := ts.Save(creds.WithTokens(res.Tokens)); err != nil {
		return Session{}, err
	}

	acct := res.User
	if acct == nil {
		if acct, err = auth.Me(ctx); err != nil {
			return Session{}, fmt.Errorf("fetch account: %w", err)
		}
	}
	sess := FromAccount(acct)
	store.Set(sess)
	return sess, nil
}

func rejected(err error) bool {
	return client.IsStatus(err, http.StatusUnauthorized) || client.IsStatus(err, http.StatusForbidden)
}
