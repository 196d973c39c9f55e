package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "void-backend"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and bad claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is only possible when a TTL is configured.
	ErrTokenExpired = errors.New("token has expired")
	// ErrEmptySecret is returned when the issuer is built without a key.
	ErrEmptySecret = errors.New("session signing secret is empty")
)

// --- JWT Claims ---

// CustomClaims includes standard JWT claims plus the asserted identity.
type CustomClaims struct {
	AccountID int64  `json:"id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is what a verified token asserts.
type Identity struct {
	AccountID int64
	Username  string
}

// SessionIssuer mints and verifies HS256 session tokens. The secret is fixed
// for the issuer's lifetime; rotating it means building a new issuer, which
// invalidates every token signed by the old one.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration // zero means tokens never expire
	now    func() time.Time
}

// NewSessionIssuer builds an issuer. ttl <= 0 disables expiry.
func NewSessionIssuer(secret string, ttl time.Duration) (*SessionIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl < 0 {
		ttl = 0
	}
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (s *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	c := *s
	c.now = now
	return &c
}

// Issue signs a token asserting accountID and username. Every token carries a
// fresh jti, so two tokens for the same identity never compare equal.
func (s *SessionIssuer) Issue(accountID int64, username string) (string, error) {
	now := s.now()
	claims := CustomClaims{
		AccountID: accountID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
			Subject:  strconv.FormatInt(accountID, 10),
			ID:       uuid.NewString(),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		slog.Error("error signing session token", "account_id", accountID, "error", err)
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns the identity it asserts.
func (s *SessionIssuer) Verify(tokenString string) (Identity, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.AccountID <= 0 || claims.Username == "" {
		return Identity{}, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}

	return Identity{AccountID: claims.AccountID, Username: claims.Username}, nil
}
