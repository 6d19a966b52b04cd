package driven

import "context"

// CredentialsProvider supplies access tokens for the remote store's
// API. Implementations handle caching and refresh transparently; the
// sheets connector adapts this port into an oauth2 token source.
//
// A provider that cannot produce a token because credentials are
// missing or malformed must return an error wrapping
// domain.ErrNoCredentials, classified permanent: the engine never
// retries credential failures.
type CredentialsProvider interface {
	// AccessToken returns a valid bearer token, refreshing if required.
	AccessToken(ctx context.Context) (string, error)

	// Principal returns the identity the credentials authenticate
	// (e.g. the service account email), for logging and status output.
	Principal() string
}
