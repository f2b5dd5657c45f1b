package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claim names shared with the external auth service that issues tokens.
const (
	ClaimUserID = "user_id"
	ClaimType   = "type"

	TokenTypeAccess = "access"
)

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	// GenerateAccessToken signs a token with the same claim layout the auth
	// service uses. Intended for tooling and tests.
	GenerateAccessToken(userID string) (token string, expiresAt int64, err error)
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, fmt.Errorf("invalid access token expiration: %w", err)
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		ClaimUserID: userID,
		ClaimType:   TokenTypeAccess,
		"exp":       expiresAt,
	})
	return tokenString, expiresAt, err
}
