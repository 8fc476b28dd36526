package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID     string `json:"uid"`
	EmployeeID string `json:"eid,omitempty"`
	RoleID     string `json:"rid"`
	RoleName   string `json:"role"`
	jwt.RegisteredClaims
}

type UserContext struct {
	UserID     string
	EmployeeID string
	RoleID     string
	RoleName   string
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (c Claims) User() UserContext {
	return UserContext{
		UserID:     c.UserID,
		EmployeeID: c.EmployeeID,
		RoleID:     c.RoleID,
		RoleName:   c.RoleName,
	}
}
