package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")

	jwtSecret []byte
	tokenTTL  time.Duration
)

// Claims - полезная нагрузка access-токена.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Init настраивает подпись токенов. Вызывается один раз при старте.
func Init(secret string, ttlMinutes int) {
	jwtSecret = []byte(secret)
	tokenTTL = time.Duration(ttlMinutes) * time.Minute
	if tokenTTL == 0 {
		tokenTTL = time.Hour
	}
}

// GenerateToken выпускает HS256 access-токен для пользователя.
func GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken валидирует токен и возвращает claims.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
