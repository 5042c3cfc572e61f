package usertest

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// Claims are the registered claims plus the signed-in user's email and the
// token generation current at issue time.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	Generation int    `json:"gen"`
}

// UserID returns the subject as a numeric id.
func (c *Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

// GenerateToken signs an HS256 token for userID valid for validity.
func GenerateToken(userID int, email string, generation int, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email:      email,
		Generation: generation,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies tokenString and returns its claims. Expired tokens and
// tokens signed with another method or key are rejected.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}
