package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCheck(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)

	assert.True(t, h.Check("pw1", hash))
	assert.False(t, h.Check("wrong", hash))
	assert.False(t, h.Check("pw1", "not-a-bcrypt-hash"))

	again, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")
}

func TestHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewHasher(0).Cost())
	assert.Equal(t, bcrypt.MaxCost, NewHasher(99).Cost())
	assert.Equal(t, DefaultCost, NewHasher(DefaultCost).Cost())
}

func TestHasher_CheckDecoyAlwaysFalse(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	assert.False(t, h.CheckDecoy("void-decoy"))
	assert.False(t, h.CheckDecoy("anything"))
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" Rex ", "rex"},
		{"rex", "rex"},
		{"REX\n", "rex"},
		{"\tNew York ", "new york"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAnswer(tt.in), "input %q", tt.in)
	}
}

func newTestIssuer(t *testing.T, secret string, ttl time.Duration) *SessionIssuer {
	t.Helper()
	s, err := NewSessionIssuer(secret, ttl)
	require.NoError(t, err)
	return s
}

func TestSessionIssuer_RoundTrip(t *testing.T) {
	s := newTestIssuer(t, "test-secret", 0)

	token, err := s.Issue(42, "ann")
	require.NoError(t, err)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{AccountID: 42, Username: "ann"}, id)
}

func TestSessionIssuer_TokensAreUnique(t *testing.T) {
	s := newTestIssuer(t, "test-secret", 0)

	a, err := s.Issue(1, "ann")
	require.NoError(t, err)
	b, err := s.Issue(1, "ann")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSessionIssuer_NoExpiryByDefault(t *testing.T) {
	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestIssuer(t, "test-secret", 0).WithClock(func() time.Time { return issued })

	token, err := s.Issue(1, "ann")
	require.NoError(t, err)

	later := s.WithClock(func() time.Time { return issued.Add(10 * 365 * 24 * time.Hour) })
	_, err = later.Verify(token)
	assert.NoError(t, err)
}

func TestSessionIssuer_Expiry(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestIssuer(t, "test-secret", time.Hour).WithClock(func() time.Time { return issued })

	token, err := s.Issue(1, "ann")
	require.NoError(t, err)

	within := s.WithClock(func() time.Time { return issued.Add(30 * time.Minute) })
	_, err = within.Verify(token)
	require.NoError(t, err)

	after := s.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = after.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionIssuer_RejectsRotatedSecret(t *testing.T) {
	old := newTestIssuer(t, "old-secret", 0)
	rotated := newTestIssuer(t, "new-secret", 0)

	token, err := old.Issue(7, "ann")
	require.NoError(t, err)

	_, err = rotated.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionIssuer_RejectsBadTokens(t *testing.T) {
	s := newTestIssuer(t, "test-secret", 0)
	valid, err := s.Issue(7, "ann")
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{
		AccountID:        7,
		Username:         "ann",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	missingClaims, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	foreignIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		AccountID:        7,
		Username:         "ann",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered payload", parts[0] + "." + parts[1] + "x." + parts[2]},
		{"truncated signature", parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])-4]},
		{"alg none", noneToken},
		{"missing identity claims", missingClaims},
		{"foreign issuer", foreignIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewSessionIssuer_EmptySecret(t *testing.T) {
	_, err := NewSessionIssuer("", 0)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{AccountID: 3, Username: "c"})
	id, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(3), id.AccountID)
}
