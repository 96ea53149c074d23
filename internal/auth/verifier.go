package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog-server/internal/models"
	"blog-server/internal/repository"
	"blog-server/internal/token"

	"go.uber.org/zap"
)

// Verifier turns an Authorization header into trusted claims. The checks
// run in a fixed order: header shape, revocation, signature, expiry.
// Revocation is checked before the signature so that a logged-out token
// reads as revoked regardless of later tampering; the blocklist is keyed
// by the exact raw token bytes, so nothing is leaked by the early answer.
type Verifier struct {
	codec     *token.Codec
	blocklist repository.TokenBlocklist
	logger    *zap.Logger
}

// NewVerifier creates a Verifier.
func NewVerifier(codec *token.Codec, blocklist repository.TokenBlocklist, logger *zap.Logger) *Verifier {
	return &Verifier{
		codec:     codec,
		blocklist: blocklist,
		logger:    logger.Named("Verifier"),
	}
}

// ExtractBearerToken pulls the raw token out of an Authorization header.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", models.ErrAuthHeaderMissing
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", models.ErrAuthHeaderMalformed
	}
	return parts[1], nil
}

// VerifyHeader validates the Authorization header and returns the
// trusted claims together with the raw token string. Infrastructure
// errors from the blocklist propagate so callers never fail open.
func (v *Verifier) VerifyHeader(ctx context.Context, header string) (*token.Claims, string, error) {
	raw, err := ExtractBearerToken(header)
	if err != nil {
		v.logger.Warn("Authorization header rejected", zap.Error(err))
		return nil, "", err
	}
	claims, err := v.VerifyToken(ctx, raw)
	if err != nil {
		return nil, "", err
	}
	return claims, raw, nil
}

// VerifyToken validates a raw token: revocation first, then signature
// and expiry.
func (v *Verifier) VerifyToken(ctx context.Context, raw string) (*token.Claims, error) {
	revoked, err := v.blocklist.IsRevoked(ctx, raw)
	if err != nil {
		v.logger.Error("Revocation check failed", zap.Error(err))
		return nil, fmt.Errorf("revocation check failed: %w", err)
	}
	if revoked {
		v.logger.Debug("Rejected revoked token")
		return nil, models.ErrTokenRevoked
	}

	claims, err := v.codec.Verify(raw)
	if err != nil {
		v.logger.Debug("Token verification failed", zap.Error(err))
		if errors.Is(err, models.ErrTokenExpired) {
			// Name the token type in the error so the client knows which
			// flow to restart. The unverified hint is only used for the
			// message, never for the decision.
			if hint, derr := v.codec.DecodeUnverified(raw); derr == nil && hint.TokenType != "" {
				return nil, fmt.Errorf("%s %w", hint.TokenType, models.ErrTokenExpired)
			}
		}
		return nil, err
	}
	return claims, nil
}
