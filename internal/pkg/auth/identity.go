package auth

import (
	"context"
	"errors"
)

// Identity is what an identity provider asserts about the bearer of a token
type Identity struct {
	// Subject is the provider user id; it matches users.auth_id
	Subject  string
	Email    string
	Name     string
	Provider string
}

// IdentityVerifier checks a session token and returns the identity it carries
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ChainVerifier tries each verifier in turn and returns the first identity.
// When every verifier rejects the token the first error that is not
// ErrInvalidToken wins, so an expired token is reported as expired.
type ChainVerifier struct {
	verifiers []IdentityVerifier
}

// NewChainVerifier builds a ChainVerifier, skipping nil verifiers
func NewChainVerifier(verifiers ...IdentityVerifier) *ChainVerifier {
	c := &ChainVerifier{}
	for _, v := range verifiers {
		if v != nil {
			c.verifiers = append(c.verifiers, v)
		}
	}
	return c
}

// Verify implements IdentityVerifier
func (c *ChainVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var firstErr error
	for _, v := range c.verifiers {
		id, err := v.Verify(ctx, token)
		if err == nil {
			return id, nil
		}
		if firstErr == nil && !errors.Is(err, ErrInvalidToken) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrInvalidToken
}
