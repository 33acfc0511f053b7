package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of token claims the client cares about.
type Claims struct {
	Subject   string
	Username  string
	Roles     []string
	ExpiresAt time.Time
	IssuedAt  time.Time

	// Raw holds every claim as decoded.
	Raw map[string]any
}

// Expired reports whether the token expired at or before now.
// Tokens without an exp claim never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// Remaining returns the time left until expiry, or zero.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Inspect decodes a JWT without verifying its signature. Only the server
// can verify tokens; the client reads claims to display the session and to
// warn before sending an expired token.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims := &Claims{Raw: make(map[string]any, len(mc))}
	for k, v := range mc {
		claims.Raw[k] = v
	}

	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if name, ok := mc["username"].(string); ok {
		claims.Username = name
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	switch roles := mc["roles"].(type) {
	case []any:
		claims.Roles = make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, s)
			}
		}
	case string:
		claims.Roles = []string{roles}
	}
	if len(claims.Roles) == 0 {
		if role, ok := mc["role"].(string); ok {
			claims.Roles = []string{role}
		}
	}

	return claims, nil
}

// CheckExpiry returns ErrTokenExpired when token is a JWT that expired at or
// before now. Opaque tokens pass unchanged.
func CheckExpiry(token string, now time.Time) error {
	claims, err := Inspect(token)
	if err != nil {
		return nil
	}
	if claims.Expired(now) {
		return ErrTokenExpired
	}
	return nil
}
