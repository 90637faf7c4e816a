// Package supakey inspects Supabase API keys. Keys are JWTs; nothing here
// verifies a signature, it only reads claims so misconfigurations can be
// reported.
package supakey

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAnon        = "anon"
	RoleServiceRole = "service_role"
)

var ErrNotJWT = errors.New("key is not a JWT")

type Claims struct {
	Role      string
	Ref       string
	Issuer    string
	ExpiresAt time.Time
}

type keyClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

// Inspect decodes key without verifying it.
func Inspect(key string) (Claims, error) {
	key = strings.TrimSpace(key)
	if strings.Count(key, ".") != 2 {
		return Claims{}, ErrNotJWT
	}

	c := &keyClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, c); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	out := Claims{Role: c.Role, Ref: c.Ref, Issuer: c.Issuer}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return out, nil
}

// Public reports whether the key is safe to ship to browsers.
func (c Claims) Public() bool {
	return c.Role == RoleAnon
}

func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ProjectRef returns <ref> for https://<ref>.supabase.co (or .supabase.in)
// and "" for anything else, including custom domains.
func ProjectRef(supabaseURL string) string {
	u, err := url.Parse(strings.TrimSpace(supabaseURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, suffix := range []string{".supabase.co", ".supabase.in"} {
		if ref, ok := strings.CutSuffix(host, suffix); ok && ref != "" && !strings.Contains(ref, ".") {
			return ref
		}
	}
	return ""
}
