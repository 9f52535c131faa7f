package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/scythe504/ludo-backend/internal"
)

var (
	ErrMissingToken = errors.New("authentication error: token is missing")
	ErrInvalidToken = errors.New("authentication error: invalid token")
)

// Claims is the JWT payload minted by the account service. The game
// server only reads it; it never issues tokens.
type Claims struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func Secret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "your_secret_key"
}

// Verify validates the bearer token presented at handshake time and
// returns the identity to attach to the connection.
func Verify(tokenString, secret string) (internal.Identity, error) {
	if tokenString == "" {
		return internal.Identity{}, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return internal.Identity{}, ErrInvalidToken
	}
	if claims.Email == "" {
		return internal.Identity{}, ErrInvalidToken
	}

	return internal.Identity{
		ID:    claims.ID,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}
