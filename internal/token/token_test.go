package token

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pressroom/internal/models"
)

func testUser(role models.Role) *models.User {
	return &models.User{
		ID:   uuid.New(),
		Name: "Test User",
		Role: role,
	}
}

// testService returns a token service backed by an in-process miniredis.
func testService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewService("test-secret", ttl, client)
}

func TestIssueAndVerify(t *testing.T) {
	svc := testService(t, time.Hour)
	user := testUser(models.RoleAdmin)

	raw, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := svc.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if id.UserID != user.ID {
		t.Errorf("UserID: got %s, want %s", id.UserID, user.ID)
	}
	if id.Name != user.Name {
		t.Errorf("Name: got %q, want %q", id.Name, user.Name)
	}
	if id.Role != models.RoleAdmin {
		t.Errorf("Role: got %q, want admin", id.Role)
	}
	if !id.IsAdmin() {
		t.Error("IsAdmin() should be true for admin role")
	}
}

func TestVerifyRejects(t *testing.T) {
	svc := testService(t, time.Hour)

	t.Run("empty token", func(t *testing.T) {
		if _, err := svc.Verify(context.Background(), ""); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.Verify(context.Background(), "not.a.jwt"); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewService("other-secret", time.Hour, nil)
		raw, err := other.Issue(testUser(models.RoleReader))
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}

		if _, err := svc.Verify(context.Background(), raw); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := testService(t, -time.Minute)
		raw, err := expired.Issue(testUser(models.RoleReader))
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}

		if _, err := expired.Verify(context.Background(), raw); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("unsigned token", func(t *testing.T) {
		// alg=none tokens must never be accepted.
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject: uuid.NewString(),
		})
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}

		if _, err := svc.Verify(context.Background(), raw); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		raw, err := tok.SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}

		if _, err := svc.Verify(context.Background(), raw); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})
}

func TestRevoke(t *testing.T) {
	svc := testService(t, time.Hour)
	ctx := context.Background()

	raw, err := svc.Issue(testUser(models.RoleAdmin))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Valid before revocation.
	if _, err := svc.Verify(ctx, raw); err != nil {
		t.Fatalf("Verify before revoke: %v", err)
	}

	if err := svc.Revoke(ctx, raw); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	// Rejected afterwards.
	if _, err := svc.Verify(ctx, raw); err != ErrInvalidToken {
		t.Errorf("Verify after revoke: got %v, want ErrInvalidToken", err)
	}
}

func TestRevokeToleratesBadTokens(t *testing.T) {
	svc := testService(t, time.Hour)

	if err := svc.Revoke(context.Background(), "garbage"); err != nil {
		t.Errorf("Revoke of garbage token should be a no-op, got %v", err)
	}
}

func TestRevokeDoesNotAffectOtherTokens(t *testing.T) {
	svc := testService(t, time.Hour)
	ctx := context.Background()
	user := testUser(models.RoleAdmin)

	first, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := svc.Revoke(ctx, first); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	// Each token has its own jti: revoking one leaves the other valid.
	if _, err := svc.Verify(ctx, second); err != nil {
		t.Errorf("second token should remain valid, got %v", err)
	}
}

func TestNilRedisDisablesRevocation(t *testing.T) {
	svc := NewService("test-secret", time.Hour, nil)
	ctx := context.Background()

	raw, err := svc.Issue(testUser(models.RoleReader))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := svc.Revoke(ctx, raw); err != nil {
		t.Fatalf("Revoke with nil redis: %v", err)
	}

	// Without a revocation backend the token stays valid.
	if _, err := svc.Verify(ctx, raw); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestIssuedTokenShape(t *testing.T) {
	svc := NewService("test-secret", time.Hour, nil)

	raw, err := svc.Issue(testUser(models.RoleAdmin))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if parts := strings.Split(raw, "."); len(parts) != 3 {
		t.Errorf("token should have 3 segments, got %d", len(parts))
	}
}
