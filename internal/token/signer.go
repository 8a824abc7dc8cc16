package token

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// accessTokenClaims is the wire shape of a signed access token: the subject
// as a nested user object plus the registered aud/iat/nbf/exp claims.
type accessTokenClaims struct {
	User ClaimsUser `json:"user"`
	jwt.RegisteredClaims
}

// Signer turns Claims into a compact RS256-signed token string.
type Signer struct {
	privateKey *rsa.PrivateKey
}

// NewSigner creates a signer from an RSA private key.
func NewSigner(privateKey *rsa.PrivateKey) *Signer {
	return &Signer{privateKey: privateKey}
}

// Sign serializes and signs the claims. A failure here means bad key
// material and surfaces as a configuration error, not a business one.
func (s *Signer) Sign(claims Claims) (string, error) {
	tokenClaims := accessTokenClaims{
		User: claims.User,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings(claims.Audiences),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			NotBefore: jwt.NewNumericDate(claims.NotBeforeAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiredAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, tokenClaims).SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}
