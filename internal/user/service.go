package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/sebuszqo/MyFiance/internal/password"
)

const (
	maxEmailLength    = 100
	minEmailLength    = 3
	maxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

var (
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrEmailLength        = fmt.Errorf("email address is too long or too short, max length: %d, min length: %d", maxEmailLength, minEmailLength)
	ErrInvalidPassword    = fmt.Errorf("password must be between 1 and %d bytes", maxPasswordLength)
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInternalError      = errors.New("internal Server Error")
)

type User struct {
	ID           int64     `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Service interface {
	Register(ctx context.Context, email, password string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	EnsurePassword(ctx context.Context, email, password string) (*User, error)
}

type service struct {
	repo   Repository
	hasher password.Hasher
}

func NewUserService(repo Repository, hasher password.Hasher) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
	}
}

// NormalizeEmail is the canonical form under which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmailAddress(email string) error {
	if len(email) > maxEmailLength || len(email) < minEmailLength {
		return ErrEmailLength
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) == 0 || len(password) > maxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

func (s *service) Register(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		log.Printf("[User] lookup before register failed: %v", err)
		return nil, ErrInternalError
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	return s.create(ctx, email, password)
}

func (s *service) create(ctx context.Context, email, password string) (*User, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		log.Printf("[User] hashing the password failed: %v", err)
		return nil, ErrInternalError
	}

	user := &User{
		Email:        email,
		Username:     email,
		PasswordHash: passwordHash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, err
		}
		log.Printf("[User] creating the user failed: %v", err)
		return nil, ErrInternalError
	}
	return user, nil
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetUserByEmail(ctx, NormalizeEmail(email))
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// EnsurePassword makes sure an account for email exists and that password
// verifies against its stored hash, creating the account or replacing the
// hash as needed.
func (s *service) EnsurePassword(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		user, err = s.create(ctx, email, password)
		if errors.Is(err, ErrEmailAlreadyExists) {
			// lost a race with a concurrent login for the same account
			user, err = s.repo.GetUserByEmail(ctx, email)
		}
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if s.hasher.Verify(password, user.PasswordHash) {
		return user, nil
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("could not repair password hash: %w", err)
	}
	user.PasswordHash = passwordHash
	log.Printf("[User] repaired password hash for user %d", user.ID)
	return user, nil
}
