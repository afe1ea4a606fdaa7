package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/errs"
)

// Claims defines the session token claims. Subject carries the user ID and
// ID (jti) identifies the session for revocation.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject as a user ID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Session is an issued token and the moment it stops being accepted.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Revoker remembers sessions that were ended before their expiry.
type Revoker interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

var errEmptySessionID = errors.New("empty session id")

type Issuer struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, revoker Revoker) *Issuer {
	return &Issuer{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
	}
}

// WithClock replaces the issuer's time source.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a new session for the user.
func (i *Issuer) Issue(userID uuid.UUID, role string) (Session, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

// Verify parses and validates a token string. Bad signatures, expired or
// malformed tokens and revoked sessions all fail with a 401 ApiErr.
func (i *Issuer) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, errs.NewInvalidTokenError()
	}
	if _, err := claims.UserID(); err != nil || claims.ID == "" {
		return nil, errs.NewInvalidTokenError()
	}

	if i.revoker != nil {
		revoked, err := i.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, errs.NewServiceUnavailableError("Failed to check session", err)
		}
		if revoked {
			return nil, errs.NewRevokedTokenError()
		}
	}
	return claims, nil
}

// Revoke ends the session early. The deny-list entry lives only as long as
// the token would have.
func (i *Issuer) Revoke(ctx context.Context, claims *Claims) error {
	if i.revoker == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Sub(i.now())
	if remaining <= 0 {
		return nil
	}
	if err := i.revoker.Revoke(ctx, claims.ID, remaining); err != nil {
		return errs.NewServiceUnavailableError("Failed to end session", err)
	}
	return nil
}
