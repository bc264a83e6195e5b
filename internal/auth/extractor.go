package auth

import (
	"net/http"
	"strings"
)

// CookieName is the session cookie checked before the Authorization header.
const CookieName = "auth_token"

// Identify locates a token on the request and verifies it. The auth_token
// cookie takes precedence over a bearer Authorization header. No token or a
// failed verification yields ("", false); it never reaches the codec when no
// token is present.
func Identify(r *http.Request, codec *TokenCodec) (string, bool) {
	token := tokenFromRequest(r)
	if token == "" {
		return "", false
	}
	return codec.Verify(token)
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
