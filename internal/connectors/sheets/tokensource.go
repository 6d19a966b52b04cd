package sheets

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// TokenSourceAdapter adapts the engine's CredentialsProvider port to
// oauth2.TokenSource so the Google API clients can draw tokens from
// our credential management.
type TokenSourceAdapter struct {
	provider driven.CredentialsProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a CredentialsProvider.
// The returned TokenSource can be used with option.WithTokenSource()
// when creating API services.
func NewTokenSource(ctx context.Context, provider driven.CredentialsProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource. Called by the API clients
// whenever they need an access token.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.AccessToken(t.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
