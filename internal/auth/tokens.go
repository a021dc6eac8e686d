package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is what a terminal operator's token carries.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and checks HS256 operator tokens.
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate creates a signed token for a user that expires after the configured TTL.
func (t *Tokens) Generate(userID uint, role string) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// Validate rejects forged, expired and non-HMAC tokens.
func (t *Tokens) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
