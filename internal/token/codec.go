package token

import (
	"errors"
	"fmt"

	"blog-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and parses tokens with a shared HMAC key. Only the
// algorithms from the configured allow-list are accepted, the first one
// is used for signing.
type Codec struct {
	key           []byte
	validMethods  []string
	signingMethod jwt.SigningMethod
}

// NewCodec builds a Codec. Every algorithm name must be an HMAC method
// (HS256, HS384, HS512).
func NewCodec(key string, algorithms []string) (*Codec, error) {
	if key == "" {
		return nil, errors.New("token key must not be empty")
	}
	if len(algorithms) == 0 {
		algorithms = []string{"HS256"}
	}
	for _, alg := range algorithms {
		method := jwt.GetSigningMethod(alg)
		if method == nil {
			return nil, fmt.Errorf("unknown signing algorithm: %s", alg)
		}
		if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("signing algorithm %s is not an HMAC method", alg)
		}
	}
	return &Codec{
		key:           []byte(key),
		validMethods:  algorithms,
		signingMethod: jwt.GetSigningMethod(algorithms[0]),
	}, nil
}

// Encode signs the claims and returns the compact token string.
func (c *Codec) Encode(claims *Claims) (string, error) {
	tok := jwt.NewWithClaims(c.signingMethod, claims)
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeUnverified parses the claims without checking the signature or
// expiry. The result is an untrusted hint and must never drive an
// authorization decision.
func (c *Codec) DecodeUnverified(raw string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		return nil, models.ErrTokenMalformed
	}
	return claims, nil
}

// Verify parses the token, checks the signature against the allow-list
// and validates expiry (strictly exp > now). It returns trusted claims
// or one of the models token errors.
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.key, nil
	}, jwt.WithValidMethods(c.validMethods))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, models.ErrSignatureInvalid
		default:
			return nil, models.ErrTokenInvalid
		}
	}

	if !tok.Valid {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}
