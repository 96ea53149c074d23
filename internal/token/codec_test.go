package token

import (
	"errors"
	"testing"
	"time"

	"blog-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec_RejectsNonHMAC(t *testing.T) {
	_, err := NewCodec("test-key", []string{"RS256"})
	require.Error(t, err, "non-HMAC algorithm should be rejected")

	_, err = NewCodec("test-key", []string{"HS256", "nonsense"})
	require.Error(t, err, "unknown algorithm should be rejected")

	_, err = NewCodec("", []string{"HS256"})
	require.Error(t, err, "empty key should be rejected")
}

func TestCodec_EncodeVerify_RoundTrip(t *testing.T) {
	codec, err := NewCodec("test-key", []string{"HS256"})
	require.NoError(t, err)

	userID := uuid.New()
	claims := NewAccessClaims(userID, "user@example.com", 5*time.Minute)

	signed, err := codec.Encode(claims)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	parsed, err := codec.Verify(signed)
	require.NoError(t, err, "freshly signed token should verify")
	assert.Equal(t, userID, parsed.UserID)
	assert.Equal(t, "user@example.com", parsed.Email)
	assert.Equal(t, TypeAccess, parsed.TokenType)
	assert.Equal(t, claims.ID, parsed.ID, "jti should survive the round trip")
}

func TestCodec_Verify_Expired(t *testing.T) {
	codec, err := NewCodec("test-key", []string{"HS256"})
	require.NoError(t, err)

	signed, err := codec.Encode(NewAccessClaims(uuid.New(), "user@example.com", -1*time.Minute))
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTokenExpired), "expired token should map to ErrTokenExpired")
}

func TestCodec_Verify_WrongKey(t *testing.T) {
	signer, err := NewCodec("key-one", []string{"HS256"})
	require.NoError(t, err)
	verifier, err := NewCodec("key-two", []string{"HS256"})
	require.NoError(t, err)

	signed, err := signer.Encode(NewAccessClaims(uuid.New(), "", time.Minute))
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSignatureInvalid), "token signed with another key should map to ErrSignatureInvalid")
}

func TestCodec_Verify_DisallowedAlgorithm(t *testing.T) {
	// Same key, but the verifier only accepts HS256.
	signer, err := NewCodec("shared-key", []string{"HS512"})
	require.NoError(t, err)
	verifier, err := NewCodec("shared-key", []string{"HS256"})
	require.NoError(t, err)

	signed, err := signer.Encode(NewAccessClaims(uuid.New(), "", time.Minute))
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSignatureInvalid), "token with a disallowed algorithm should map to ErrSignatureInvalid")
}

func TestCodec_Verify_AllowedSecondAlgorithm(t *testing.T) {
	signer, err := NewCodec("shared-key", []string{"HS512"})
	require.NoError(t, err)
	verifier, err := NewCodec("shared-key", []string{"HS256", "HS512"})
	require.NoError(t, err)

	signed, err := signer.Encode(NewAccessClaims(uuid.New(), "", time.Minute))
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.NoError(t, err, "any algorithm on the allow-list should verify")
}

func TestCodec_Verify_Malformed(t *testing.T) {
	codec, err := NewCodec("test-key", []string{"HS256"})
	require.NoError(t, err)

	_, err = codec.Verify("this.is.not.a.valid.jwt.token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTokenMalformed), "garbage input should map to ErrTokenMalformed")
}

func TestCodec_DecodeUnverified(t *testing.T) {
	codec, err := NewCodec("test-key", []string{"HS256"})
	require.NoError(t, err)

	// An expired token still decodes, the hint carries its type.
	signed, err := codec.Encode(NewRefreshClaims(uuid.New(), "user@example.com", -1*time.Minute))
	require.NoError(t, err)

	hint, err := codec.DecodeUnverified(signed)
	require.NoError(t, err, "DecodeUnverified should not validate expiry")
	assert.Equal(t, TypeRefresh, hint.TokenType)

	_, err = codec.DecodeUnverified("not-a-jwt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTokenMalformed))
}
