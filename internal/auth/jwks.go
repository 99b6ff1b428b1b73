package auth

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
)

// NewJWKS returns a KeySource backed by a remote JWK Set, e.g. Supabase's
// <project>/auth/v1/keys. Keys are refreshed in the background until ctx ends,
// and an unknown "kid" triggers a rate-limited refetch.
func NewJWKS(ctx context.Context, url string) (KeySource, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("jwks %s: %w", url, err)
	}
	return k, nil
}
