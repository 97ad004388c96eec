// Package auth issues and validates the access tokens that identify actors.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// JWTManager handles JWT access token generation and validation.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
	}
}

// accessClaims extends standard JWT claims with the actor's role and type.
type accessClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role,omitempty"`
	ActorType string `json:"actor_type,omitempty"`
}

// GenerateAccessToken creates a signed HS256 JWT with the actor id as subject.
func (m *JWTManager) GenerateAccessToken(actor domain.Actor) (string, error) {
	if actor.IsZero() {
		return "", fmt.Errorf("actor id is empty")
	}

	actorType := actor.Type
	if actorType == "" {
		actorType = domain.ActorTypePerson
	}

	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role:      actor.Role,
		ActorType: actorType.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken parses and validates a JWT access token and returns the
// actor it identifies.
func (m *JWTManager) ValidateAccessToken(tokenString string) (domain.Actor, error) {
	if tokenString == "" {
		return domain.Actor{}, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return domain.Actor{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return domain.Actor{}, fmt.Errorf("invalid token claims")
	}

	if claims.Subject == "" {
		return domain.Actor{}, fmt.Errorf("token has no subject")
	}

	actorType := domain.ActorType(claims.ActorType)
	if actorType == "" {
		actorType = domain.ActorTypePerson
	}
	if !actorType.IsValid() {
		return domain.Actor{}, fmt.Errorf("unsupported actor type %q", claims.ActorType)
	}

	return domain.Actor{ID: claims.Subject, Type: actorType, Role: claims.Role}, nil
}
