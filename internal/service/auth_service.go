package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/config"
)

// ErrTokenInvalid is returned for unparseable, forged or expired tokens.
var ErrTokenInvalid = errors.New("invalid token")

// Claims carries the anonymous client identity. There are no accounts or
// passwords: a guest token is minted once per browser and scopes that
// client's sessions and history.
type Claims struct {
	jwt.RegisteredClaims
	ClientID uuid.UUID `json:"client_id"`
}

// AuthService issues and validates guest client tokens.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// IssueGuestToken mints a token for a fresh anonymous client ID.
func (s *AuthService) IssueGuestToken() (string, uuid.UUID, error) {
	clientID := uuid.New()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   clientID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		ClientID: clientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, clientID, nil
}

// ValidateToken parses and verifies a guest token.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid || claims.ClientID == uuid.Nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
