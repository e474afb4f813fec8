package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// IdentityClaims is the subset of ID-token claims the director login needs.
type IdentityClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// TokenVerifier verifies an external identity provider's ID token and
// returns the claims it vouches for. The auth service treats the provider
// as a black box: call it, get back a verified email and audience check.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*IdentityClaims, error)
}

// googleVerifier verifies Google ID tokens via OIDC discovery.
type googleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier initializes an OIDC verifier for the given issuer and
// client ID. Discovery hits the network once at startup.
func NewGoogleVerifier(ctx context.Context, issuerURL, clientID string) (TokenVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client ID is required")
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(initCtx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("initializing OIDC provider: %w", err)
	}

	return &googleVerifier{
		// Audience (client ID) verification happens inside go-oidc.
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify checks the token signature, issuer, audience, and expiry, then
// extracts the email claims.
func (g *googleVerifier) Verify(ctx context.Context, rawIDToken string) (*IdentityClaims, error) {
	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	idToken, err := g.verifier.Verify(verifyCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verifying ID token: %w", err)
	}

	var claims IdentityClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("extracting claims: %w", err)
	}
	return &claims, nil
}
