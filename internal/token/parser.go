package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrFailedDecoding is the single error kind returned when a token cannot
// be turned into Claims: malformed structure, unverifiable signature, or
// any decoding fault. Parsing never returns a partial Claims alongside it.
var ErrFailedDecoding = errors.New("failed decoding token")

// Parser reconstructs Claims from a compact token string. Implementations
// verify the signature and structure only; comparing the returned
// timestamps against the current time is the caller's job, so decode stays
// separable from expiry policy.
type Parser interface {
	Parse(tokenString string) (Claims, error)
}

// JWTParser verifies RS256 tokens against an RSA public key.
type JWTParser struct {
	publicKey *rsa.PublicKey
	parser    *jwt.Parser
}

// NewJWTParser creates a parser for tokens signed with the matching private
// key. Claims validation (exp/nbf) is deliberately disabled; see Parser.
func NewJWTParser(publicKey *rsa.PublicKey) *JWTParser {
	return &JWTParser{
		publicKey: publicKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Parse decodes and verifies the token. Absent user sub-fields default to
// empty strings; absent timestamp claims map to InvalidDate.
func (p *JWTParser) Parse(tokenString string) (Claims, error) {
	var tokenClaims accessTokenClaims

	parsed, err := p.parser.ParseWithClaims(tokenString, &tokenClaims, func(t *jwt.Token) (interface{}, error) {
		return p.publicKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrFailedDecoding, err)
	}
	if !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: signature did not verify", ErrFailedDecoding)
	}

	return Claims{
		User:        tokenClaims.User,
		Audiences:   tokenClaims.Audience,
		IssuedAt:    timeOrInvalid(tokenClaims.IssuedAt),
		NotBeforeAt: timeOrInvalid(tokenClaims.NotBefore),
		ExpiredAt:   timeOrInvalid(tokenClaims.ExpiresAt),
	}, nil
}

func timeOrInvalid(d *jwt.NumericDate) time.Time {
	if d == nil {
		return InvalidDate
	}
	return d.Time
}
