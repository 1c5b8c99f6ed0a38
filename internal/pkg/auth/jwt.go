package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

// JWTConfig defines session token settings
type JWTConfig struct {
	SecretKey   string
	SessionTTL  time.Duration
	TokenIssuer string
}

// JWTService issues and validates wizard session tokens
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	if config.SessionTTL <= 0 {
		config.SessionTTL = time.Hour
	}
	return &JWTService{
		config: config,
	}
}

// Claims defines session token content
type Claims struct {
	SessionID string `json:"sessionId"`
	Mode      string `json:"mode"`
	jwt.RegisteredClaims
}

// SessionToken is a signed token plus its lifetime
type SessionToken struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	ExpiresIn int
}

// NewSessionID returns a fresh session identifier
func NewSessionID() string {
	return uuid.New().String()
}

// GenerateSessionToken signs a token bound to sessionID
func (s *JWTService) GenerateSessionToken(sessionID, mode string) (SessionToken, error) {
	if sessionID == "" {
		return SessionToken{}, ErrInvalidToken
	}
	now := time.Now()
	expiry := now.Add(s.config.SessionTTL)

	claims := &Claims{
		SessionID: sessionID,
		Mode:      mode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   sessionID,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return SessionToken{}, fmt.Errorf("failed to create session token: %w", err)
	}

	return SessionToken{
		Token:     signed,
		SessionID: sessionID,
		ExpiresAt: expiry,
		ExpiresIn: int(s.config.SessionTTL.Seconds()),
	}, nil
}

// SessionTTL returns the configured session lifetime
func (s *JWTService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

// ValidateToken validates a token
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), nil
	}

	return authHeader, nil
}

// ValidateAndExtractClaims validates and extracts claims from a token string
func (s *JWTService) ValidateAndExtractClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.SessionID == "" || claims.Subject != claims.SessionID {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
