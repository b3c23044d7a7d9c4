package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenExpiryLogin = 7 * 24 * time.Hour
	TokenExpiryReset = 15 * time.Minute
)

// Manager signs and validates HS256 bearer tokens. The secret is injected at
// construction so no call path reads the environment at request time.
type Manager struct {
	secret []byte
	issuer string
}

func NewManager(secret, issuer string) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer}
}

func (m *Manager) GenerateToken(email string, userID uint) (string, error) {
	return m.generate(jwt.MapClaims{
		"sub":     email,
		"email":   email,
		"user_id": userID,
	}, TokenExpiryLogin)
}

// GenerateResetToken issues the short-lived token embedded in password reset
// links.
func (m *Manager) GenerateResetToken(email string) (string, error) {
	return m.generate(jwt.MapClaims{
		"sub":  email,
		"type": "password_reset",
	}, TokenExpiryReset)
}

func (m *Manager) generate(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims["exp"] = now.Add(ttl).Unix()
	claims["iat"] = now.Unix()
	claims["iss"] = m.issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
