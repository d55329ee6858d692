package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionClaims identify a logged-in user.
type SessionClaims struct {
	Name  string `json:"name"`
	Admin bool   `json:"adm"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id carried in the subject.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

// GenerateToken creates a new JWT for a given user.
func GenerateToken(secret []byte, userID uint, name string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Name:  name,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return Sign(secret, claims)
}

// ParseToken validates a session token and returns its claims.
func ParseToken(secret []byte, tokenString string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := Parse(secret, tokenString, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// Sign signs arbitrary claims with HS256.
func Sign(secret []byte, claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse verifies tokenString and decodes it into claims.
func Parse(secret []byte, tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
