package services

import (
	"fmt"
	"time"

	"partyquiz/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService gates host commands behind the shared host password and issues
// short-lived tokens for the host websocket.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
}

type hostClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(hostPassword, jwtSecret string) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(hostPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash host password: %w", err)
	}
	return &AuthService{
		passwordHash: hash,
		jwtSecret:    []byte(jwtSecret),
	}, nil
}

// VerifyHostPassword checks a command's shared secret.
func (s *AuthService) VerifyHostPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return models.ErrBadPassword
	}
	return nil
}

// IssueHostToken mints a signed token for the host websocket connection.
func (s *AuthService) IssueHostToken() (string, error) {
	claims := &hostClaims{
		Role: "host",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateHostToken verifies a host websocket token.
func (s *AuthService) ValidateHostToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &hostClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return models.ErrBadPassword
	}
	claims, ok := token.Claims.(*hostClaims)
	if !ok || claims.Role != "host" {
		return models.ErrBadPassword
	}
	return nil
}
