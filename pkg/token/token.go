package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleType set member role
type RoleType string

const (
	// RoleAdmin is the admin role
	RoleAdmin RoleType = "admin"
	// RoleMember is the member role
	RoleMember RoleType = "member"
)

// Claims structure for custom claims in JWT
type Claims struct {
	MemberID string `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Secret Key for JWT signing and validation
var (
	JWTSecret       = []byte("secure_secret_key")
	tokenExpiration = 60 * time.Minute
)

// GenerateJWT generates a JWT token
func GenerateJWT(memberID, role, issuer string) (string, error) {
	claims := Claims{
		MemberID: memberID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

// ParseJWT parses a JWT and extracts the Claims
func ParseJWT(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return JWTSecret, nil
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
