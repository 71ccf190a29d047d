package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

type TokenType string

const (
	TokenTypeSession TokenType = "session"
	TokenTypeFlash   TokenType = "flash"
)

const (
	issuer   = "community-platform"
	flashTTL = 5 * time.Minute
)

// Claims are the signed contents of session and flash cookies
type Claims struct {
	Type TokenType `json:"type"`
	// Flash carries the JSON encoded toast or alert of a flash token
	Flash string `json:"flash,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateSessionToken(profileID uuid.UUID, ttl time.Duration) (string, error)
	GenerateFlashToken(payload string) (string, error)
	ValidateToken(tokenString string, expected TokenType) (*Claims, error)
}

type tokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateSessionToken(profileID uuid.UUID, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Type: TokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *tokenManager) GenerateFlashToken(payload string) (string, error) {
	now := m.now()
	claims := Claims{
		Type:  TokenTypeFlash,
		Flash: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != expected {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ProfileID returns the session subject as a profile id
func (c *Claims) ProfileID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
