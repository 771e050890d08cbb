// Package token issues and verifies the bearer credentials that guard every
// protected route. Tokens are HS256 JWTs carrying the user's id and role;
// logout places a token's jti on a Redis-backed revocation list for the
// remainder of its lifetime.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pressroom/internal/models"
)

// ErrInvalidToken is returned for any credential that cannot be accepted:
// missing, malformed, bad signature, expired, or revoked. Callers map it to
// 401 without distinguishing the cause.
var ErrInvalidToken = errors.New("invalid token")

// revokedPrefix namespaces revocation keys in Redis.
const revokedPrefix = "revoked:"

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Role   models.Role
}

// IsAdmin returns true if the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// claims is the JWT payload: registered claims plus the user's role and
// display name.
type claims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Service signs, verifies, and revokes bearer tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
}

// NewService creates a token service. The redis client may be nil, in which
// case revocation is disabled and logout is a no-op.
func NewService(secret string, ttl time.Duration, client *redis.Client) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		redis:  client,
	}
}

// Issue signs a new token for the given user.
func (s *Service) Issue(user *models.User) (string, error) {
	now := time.Now()
	c := claims{
		Role: string(user.Role),
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a raw bearer token, then checks the
// revocation list. Returns the authenticated identity or ErrInvalidToken.
func (s *Service) Verify(ctx context.Context, raw string) (*Identity, error) {
	c, err := s.parse(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if s.redis != nil && c.ID != "" {
		revoked, err := s.redis.Exists(ctx, revokedPrefix+c.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("revocation check: %w", err)
		}
		if revoked > 0 {
			return nil, ErrInvalidToken
		}
	}

	return &Identity{
		UserID: userID,
		Name:   c.Name,
		Role:   models.Role(c.Role),
	}, nil
}

// Revoke marks the token's jti as revoked until the token would have
// expired anyway. An already-invalid token is not an error; logout with a
// stale credential simply has nothing to do.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	if s.redis == nil {
		return nil
	}

	c, err := s.parse(raw)
	if err != nil || c.ID == "" || c.ExpiresAt == nil {
		return nil
	}

	remaining := time.Until(c.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, revokedPrefix+c.ID, "1", remaining).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// parse validates signature, algorithm, and expiry, returning the claims.
func (s *Service) parse(raw string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
