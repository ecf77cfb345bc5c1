package tokenprovider

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider is anything that can return a token
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetToken(ctx context.Context) (*oauth2.Token, error)
}

type tokenSource interface {
	getToken(ctx context.Context) (*oauth2.Token, error)
}

type tokenProviderImpl struct {
	tokenSource tokenSource
}

// GetToken implements TokenProvider. Every call fetches a new token.
func (provider *tokenProviderImpl) GetToken(ctx context.Context) (*oauth2.Token, error) {
	if ctx == nil {
		return nil, fmt.Errorf("parameter 'ctx' cannot be nil")
	}
	return provider.tokenSource.getToken(ctx)
}

// GetAccessToken implements TokenProvider
func (provider *tokenProviderImpl) GetAccessToken(ctx context.Context) (string, error) {
	token, err := provider.GetToken(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
