package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
)

// Token sends an access token with a configurable scheme. When the token is
// a JWT its exp claim is checked; the signature is not verified since the
// token is only forwarded.
type Token struct {
	access    string
	refresh   string
	tokenType string
	now       func() time.Time
}

// NewToken builds a Token provider.
func NewToken(opts Options) (*Token, error) {
	t := &Token{
		access:    trimScheme(opts.resolve(opts.AccessToken, opts.TokenEnv)),
		refresh:   opts.resolve(opts.RefreshToken, opts.RefreshEnv),
		tokenType: opts.TokenType,
		now:       time.Now,
	}
	if t.tokenType == "" {
		t.tokenType = "Bearer"
	}
	if t.access == "" {
		return nil, mcperr.New(mcperr.KindAuthMissing, "Access token not found").WithDetail("env_var", opts.TokenEnv)
	}
	return t, nil
}

// RefreshToken returns the configured refresh token, if any.
func (t *Token) RefreshToken() string { return t.refresh }

// ExpiresAt reports the JWT exp claim. ok is false for opaque tokens and
// tokens without exp.
func (t *Token) ExpiresAt() (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.access, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

func (t *Token) Validate() error {
	if t.access == "" {
		return mcperr.New(mcperr.KindAuthMissing, "Access token not found")
	}
	if exp, ok := t.ExpiresAt(); ok && !t.now().Before(exp) {
		return mcperr.New(mcperr.KindAuthExpired, "Access token expired").
			WithDetail("expired_at", exp.UTC().Format(time.RFC3339))
	}
	return nil
}

func (t *Token) Headers() (map[string]string, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": t.tokenType + " " + t.access}, nil
}
