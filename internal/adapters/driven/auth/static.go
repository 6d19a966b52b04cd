package auth

import (
	"context"

	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// Ensure StaticProvider implements the interface.
var _ driven.CredentialsProvider = (*StaticProvider)(nil)

// StaticProvider hands out a fixed token. Used in tests and against
// API emulators that accept any bearer token.
type StaticProvider struct {
	token     string
	principal string
}

// NewStaticProvider creates a provider returning token verbatim.
func NewStaticProvider(token, principal string) *StaticProvider {
	return &StaticProvider{token: token, principal: principal}
}

// AccessToken returns the fixed token.
func (p *StaticProvider) AccessToken(_ context.Context) (string, error) {
	return p.token, nil
}

// Principal returns the configured identity.
func (p *StaticProvider) Principal() string {
	return p.principal
}
