package account

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/starford/metron/internal/models"
)

const (
	tokenIssuer   = "metron"
	tokenAudience = "metron"
)

// Claims extends jwt.RegisteredClaims with the session's profile fields.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenManager issues and validates HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager. An empty secret generates an
// ephemeral one, so sessions do not survive a restart.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("account: token ttl must be positive")
	}
	key := []byte(secret)
	if secret == "" {
		slog.Warn("account: no jwt secret configured, generating ephemeral key (not for production)")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("account: generate secret: %w", err)
		}
	}
	return &TokenManager{secret: key, ttl: ttl}, nil
}

// Issue signs a new session token for u.
func (m *TokenManager) Issue(u models.User) (models.Session, error) {
	now := time.Now().UTC()
	exp := now.Add(m.ttl)
	jti := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
		Email: u.Email,
		Name:  u.Name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return models.Session{}, fmt.Errorf("account: sign token: %w", err)
	}
	return models.Session{
		Token:     signed,
		TokenID:   jti,
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		ExpiresAt: exp,
	}, nil
}

// Parse validates a token's signature, issuer, audience and expiry.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{},
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("account: validate token: %w", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("account: invalid token claims")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("account: token missing subject or id")
	}
	return claims, nil
}
