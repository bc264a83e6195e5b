// Package auth issues and verifies the signed session tokens and locates
// them on incoming requests.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dashpilot/s3-universal-backend/internal/clock"
)

// TokenValidity is how long an issued token remains accepted.
const TokenValidity = 7 * 24 * time.Hour

// Claims embeds the registered claims plus the authenticated username.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenCodec signs and verifies session tokens with a shared HMAC secret.
type TokenCodec struct {
	secret []byte
	clock  clock.Clock
}

// NewTokenCodec builds a codec. A nil clk falls back to the real clock.
func NewTokenCodec(secret string, clk clock.Clock) *TokenCodec {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TokenCodec{secret: []byte(secret), clock: clk}
}

// Issue produces a token for username, valid for TokenValidity from now.
func (c *TokenCodec) Issue(username string) (string, error) {
	now := c.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
		Username: username,
	})
	return token.SignedString(c.secret)
}

// Verify fails closed: any parse error, signature mismatch, wrong signing
// method, or expiry yields ("", false).
func (c *TokenCodec) Verify(tokenString string) (string, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil || !token.Valid || claims.Username == "" {
		return "", false
	}
	return claims.Username, true
}
