// Package auth issues and verifies the bearer tokens that carry a caller's
// user id and subscription tier.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/schematiq/schematiq/internal/plan"
)

const (
	issuer   = "schematiq"
	tierKey  = "tier"
	minBytes = 16
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWeakSecret   = errors.New("auth secret must be at least 16 bytes")
)

// Claims identify the caller of an API request.
type Claims struct {
	UserID string
	Tier   plan.Mode
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer creates an Issuer for secret. A zero ttl defaults to 24h.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < minBytes {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for c.
func (i *Issuer) Issue(c Claims) (string, error) {
	if c.UserID == "" {
		return "", fmt.Errorf("%w: user id is required", plan.ErrInvalidRequest)
	}
	if c.Tier == "" {
		c.Tier = plan.ModeEveryday
	}

	now := i.now()
	tok, err := jwt.NewBuilder().
		Issuer(issuer).
		Subject(c.UserID).
		Claim(tierKey, string(c.Tier)).
		IssuedAt(now).
		Expiration(now.Add(i.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), i.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks the signature, issuer and expiry of raw and returns its
// claims. Every failure wraps ErrInvalidToken.
func (i *Issuer) Verify(raw string) (Claims, error) {
	tok, err := jwt.ParseString(raw,
		jwt.WithKey(jwa.HS256(), i.key),
		jwt.WithIssuer(issuer),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, ok := tok.Subject()
	if !ok || sub == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	var tier string
	if err := tok.Get(tierKey, &tier); err != nil {
		tier = string(plan.ModeEveryday)
	}
	mode, err := plan.ParseMode(tier)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Claims{UserID: sub, Tier: mode}, nil
}
