package realtime

import (
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

// Token signs a socket token for username.
func Token(secret []byte, username string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
