package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidJWTToken      = errors.New("JWT token is invalid")
	ErrExpiredJWTToken      = errors.New("JWT token is expired")
	ErrMissingSecret        = errors.New("JWT secret must not be empty")
	ErrInvalidTokenDuration = errors.New("JWT duration must be greater than zero")
)

const DefaultAccessTokenDuration = 30 * time.Minute

var signingMethod = jwt.SigningMethodHS256

type JWTManagerInterface interface {
	GenerateAccessJWT(subject string, duration time.Duration) (string, error)
	ValidateAccessToken(tokenString string) (string, error)
}

type JWTManager struct {
	secret []byte
	now    func() time.Time
}

func NewJWTManager(secret string) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &JWTManager{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// GenerateAccessJWT signs a token asserting subject until now+duration.
// There is no implicit lifetime: callers pass the configured TTL.
func (j *JWTManager) GenerateAccessJWT(subject string, duration time.Duration) (string, error) {
	if subject == "" {
		return "", ErrInvalidJWTToken
	}
	if duration <= 0 {
		return "", ErrInvalidTokenDuration
	}

	now := j.now()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
	}
	token := jwt.NewWithClaims(signingMethod, claims)
	return token.SignedString(j.secret)
}

// ValidateAccessToken returns the subject of a well-signed, unexpired token.
// Expiry is reported as ErrExpiredJWTToken; every other failure as ErrInvalidJWTToken.
func (j *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredJWTToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidJWTToken
	}

	return claims.Subject, nil
}
