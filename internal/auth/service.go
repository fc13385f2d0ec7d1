package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sebuszqo/MyFiance/internal/password"
	"github.com/sebuszqo/MyFiance/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrInternalError      = errors.New("internal Server Error")
)

// LoginHook lets other components take part in a login without the token and
// identity code knowing about them. BeforeLogin runs ahead of the credential
// check, AfterLogin once the credentials verified and before a token is minted.
// An error from either aborts the login.
type LoginHook interface {
	BeforeLogin(ctx context.Context, email string) error
	AfterLogin(ctx context.Context, u *user.User) error
}

type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, tokenString string) (*user.User, error)
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	userService user.Service
	jwtManager  JWTManagerInterface
	hasher      password.Hasher
	tokenTTL    time.Duration
	hooks       []LoginHook
}

func NewAuthService(userService user.Service, jwtManager JWTManagerInterface, hasher password.Hasher, tokenTTL time.Duration, hooks ...LoginHook) Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultAccessTokenDuration
	}
	return &service{
		userService: userService,
		jwtManager:  jwtManager,
		hasher:      hasher,
		tokenTTL:    tokenTTL,
		hooks:       hooks,
	}
}

// Login verifies email/password and returns a signed access token. An unknown
// email and a wrong password both yield ErrInvalidCredentials.
func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	email = user.NormalizeEmail(email)

	for _, hook := range s.hooks {
		if err := hook.BeforeLogin(ctx, email); err != nil {
			log.Printf("[Auth] before-login hook failed: %v", err)
			return "", ErrInternalError
		}
	}

	existingUser, err := s.userService.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		log.Printf("[Auth] user lookup failed: %v", err)
		return "", ErrInternalError
	}

	if !s.hasher.Verify(password, existingUser.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	for _, hook := range s.hooks {
		if err := hook.AfterLogin(ctx, existingUser); err != nil {
			log.Printf("[Auth] after-login hook failed for user %d: %v", existingUser.ID, err)
			return "", ErrInternalError
		}
	}

	token, err := s.jwtManager.GenerateAccessJWT(existingUser.Email, s.tokenTTL)
	if err != nil {
		log.Printf("[Auth] signing access token failed: %v", err)
		return "", ErrInternalError
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. A bad token and a token
// whose subject no longer exists both yield ErrUnauthorized.
func (s *service) Authenticate(ctx context.Context, tokenString string) (*user.User, error) {
	subject, err := s.jwtManager.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	existingUser, err := s.userService.GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return existingUser, nil
}
