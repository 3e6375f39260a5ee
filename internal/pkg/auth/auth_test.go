package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
)

func newTestJWT(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  exp,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "internhub",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWT(time.Minute)
	user := &models.User{ID: 3, AuthID: "auth-3", Email: "tutor@example.com", FirstName: "Tom", LastName: "Tutor"}

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(60), pair.ExpiresIn)

	id, err := svc.Verify(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "auth-3", id.Subject)
	assert.Equal(t, "tutor@example.com", id.Email)
	assert.Equal(t, "Tom Tutor", id.Name)
	assert.Equal(t, ProviderLocal, id.Provider)
}

func TestJWTService_RequiresAuthID(t *testing.T) {
	_, err := newTestJWT(time.Minute).GenerateTokenPair(&models.User{ID: 1})
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWT(-time.Minute)
	pair, err := svc.GenerateTokenPair(&models.User{ID: 1, AuthID: "a"})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	pair, err := newTestJWT(time.Minute).GenerateTokenPair(&models.User{ID: 1, AuthID: "a"})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute, TokenIssuer: "internhub"})
	_, err = other.Verify(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type stubVerifier struct {
	id  *Identity
	err error
}

func (s stubVerifier) Verify(context.Context, string) (*Identity, error) {
	return s.id, s.err
}

func TestChainVerifier(t *testing.T) {
	ok := stubVerifier{id: &Identity{Subject: "x"}}
	invalid := stubVerifier{err: ErrInvalidToken}
	expired := stubVerifier{err: ErrExpiredToken}

	tests := []struct {
		name    string
		chain   *ChainVerifier
		token   string
		wantSub string
		wantErr error
	}{
		{name: "second verifier accepts", chain: NewChainVerifier(invalid, ok), token: "t", wantSub: "x"},
		{name: "nil verifiers skipped", chain: NewChainVerifier(nil, ok), token: "t", wantSub: "x"},
		{name: "expiry reported over invalid", chain: NewChainVerifier(invalid, expired), token: "t", wantErr: ErrExpiredToken},
		{name: "all invalid", chain: NewChainVerifier(invalid, invalid), token: "t", wantErr: ErrInvalidToken},
		{name: "empty token", chain: NewChainVerifier(ok), token: "", wantErr: ErrInvalidToken},
		{name: "no verifiers", chain: NewChainVerifier(), token: "t", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.chain.Verify(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSub, id.Subject)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = ExtractBearerToken("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = ExtractBearerToken("Basic Zm9v")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims("sub-1", map[string]interface{}{
		"email":       "Jane@Example.com",
		"given_name":  "Jane",
		"family_name": "Doe",
	})
	assert.Equal(t, "sub-1", id.Subject)
	assert.Equal(t, "jane@example.com", id.Email)
	assert.Equal(t, "Jane Doe", id.Name)
	assert.Equal(t, ProviderOIDC, id.Provider)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
