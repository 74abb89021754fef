package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/goremit/internal/domain"
)

// Claims carries the back-office identity used for authorization decisions.
type Claims struct {
	UserID   string      `json:"user_id"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
	AgencyID string      `json:"agency_id"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the domain actor.
func (c *Claims) Actor() *domain.Actor {
	return &domain.Actor{ID: c.UserID, Name: c.Name, Role: c.Role, AgencyID: c.AgencyID}
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate issues a token for actor. The role must belong to the closed role set.
func (m *JWTManager) Generate(actor *domain.Actor) (string, error) {
	if !actor.Role.IsValid() {
		return "", domain.ErrUnknownRole
	}

	now := m.now()
	claims := Claims{
		UserID:   actor.ID,
		Name:     actor.Name,
		Role:     actor.Role,
		AgencyID: actor.AgencyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
