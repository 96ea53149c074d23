package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"blog-server/internal/models"
	"blog-server/internal/repository"
	"blog-server/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestVerifier(t *testing.T) (*Verifier, *token.Codec, repository.TokenStore) {
	t.Helper()
	codec, err := token.NewCodec("test-key", []string{"HS256"})
	require.NoError(t, err)
	store := repository.NewMemoryTokenStore()
	return NewVerifier(codec, store, zap.NewNop()), codec, store
}

func TestExtractBearerToken(t *testing.T) {
	raw, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", raw)

	// The scheme is case-insensitive.
	raw, err = ExtractBearerToken("bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", raw)

	_, err = ExtractBearerToken("")
	assert.True(t, errors.Is(err, models.ErrAuthHeaderMissing))

	for _, header := range []string{"Bearer", "abc.def.ghi", "Basic abc", "Bearer a b", "Bearer "} {
		_, err = ExtractBearerToken(header)
		assert.True(t, errors.Is(err, models.ErrAuthHeaderMalformed), "header %q should be malformed", header)
	}
}

func TestVerifyToken_Valid(t *testing.T) {
	verifier, codec, _ := newTestVerifier(t)
	ctx := context.Background()

	userID := uuid.New()
	signed, err := codec.Encode(token.NewAccessClaims(userID, "user@example.com", time.Minute))
	require.NoError(t, err)

	claims, err := verifier.VerifyToken(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, token.TypeAccess, claims.TokenType)
}

func TestVerifyToken_Revoked(t *testing.T) {
	verifier, codec, store := newTestVerifier(t)
	ctx := context.Background()

	userID := uuid.New()
	signed, err := codec.Encode(token.NewAccessClaims(userID, "", time.Minute))
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, signed, userID, time.Minute))

	_, err = verifier.VerifyToken(ctx, signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTokenRevoked))
}

func TestVerifyToken_RevocationBeforeSignature(t *testing.T) {
	verifier, _, store := newTestVerifier(t)
	ctx := context.Background()

	// A revoked token answers revoked even when its signature would never
	// verify. The blocklist is keyed by the exact raw bytes.
	otherCodec, err := token.NewCodec("another-key", []string{"HS256"})
	require.NoError(t, err)
	foreign, err := otherCodec.Encode(token.NewAccessClaims(uuid.New(), "", time.Minute))
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, foreign, uuid.New(), time.Minute))

	_, err = verifier.VerifyToken(ctx, foreign)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTokenRevoked), "revocation should answer before the signature check")
}

func TestVerifyToken_SignatureInvalid(t *testing.T) {
	verifier, _, _ := newTestVerifier(t)
	ctx := context.Background()

	otherCodec, err := token.NewCodec("another-key", []string{"HS256"})
	require.NoError(t, err)
	foreign, err := otherCodec.Encode(token.NewAccessClaims(uuid.New(), "", time.Minute))
	require.NoError(t, err)

	_, err = verifier.VerifyToken(ctx, foreign)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSignatureInvalid))
}

func TestVerifyToken_ExpiredNamesTokenType(t *testing.T) {
	verifier, codec, _ := newTestVerifier(t)
	ctx := context.Background()

	signed, err := codec.Encode(token.NewAccessClaims(uuid.New(), "", -time.Minute))
	require.NoError(t, err)

	_, err = verifier.VerifyToken(ctx, signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTokenExpired))
	assert.Equal(t, "access token has expired", err.Error())
}

type failingBlocklist struct{}

func (failingBlocklist) Revoke(context.Context, string, uuid.UUID, time.Duration) error {
	return errors.New("store down")
}

func (failingBlocklist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func TestVerifyToken_BlocklistFailurePropagates(t *testing.T) {
	codec, err := token.NewCodec("test-key", []string{"HS256"})
	require.NoError(t, err)
	verifier := NewVerifier(codec, failingBlocklist{}, zap.NewNop())

	signed, err := codec.Encode(token.NewAccessClaims(uuid.New(), "", time.Minute))
	require.NoError(t, err)

	_, err = verifier.VerifyToken(context.Background(), signed)
	require.Error(t, err, "a broken blocklist must never fail open")
	assert.False(t, errors.Is(err, models.ErrTokenRevoked))
	assert.False(t, errors.Is(err, models.ErrTokenInvalid))
}

func TestVerifyHeader(t *testing.T) {
	verifier, codec, _ := newTestVerifier(t)
	ctx := context.Background()

	signed, err := codec.Encode(token.NewAccessClaims(uuid.New(), "", time.Minute))
	require.NoError(t, err)

	claims, raw, err := verifier.VerifyHeader(ctx, "Bearer "+signed)
	require.NoError(t, err)
	assert.Equal(t, signed, raw)
	assert.Equal(t, token.TypeAccess, claims.TokenType)

	_, _, err = verifier.VerifyHeader(ctx, "")
	assert.True(t, errors.Is(err, models.ErrAuthHeaderMissing))
}
