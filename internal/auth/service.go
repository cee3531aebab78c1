// Package auth manages user accounts and bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abhisek/coursegen/internal/store"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("invalid authentication credentials")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	minPasswordLen = 6
	maxPasswordLen = 100
)

// User is a stored account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository persists accounts.
type UserRepository interface {
	// Create stores u unless its email is taken, compared case-insensitively.
	Create(ctx context.Context, u *User) error
	ByEmail(ctx context.Context, email string) (*User, error)
	ByID(ctx context.Context, id string) (*User, error)
}

// FileUserRepository keeps every account in one users document.
type FileUserRepository struct {
	docs *store.Store
}

var _ UserRepository = (*FileUserRepository)(nil)

func NewFileUserRepository(docs *store.Store) *FileUserRepository {
	return &FileUserRepository{docs: docs}
}

const usersKey = "users"

func (r *FileUserRepository) Create(_ context.Context, u *User) error {
	var users []User
	return r.docs.Update(store.Users, usersKey, &users, func() error {
		for _, existing := range users {
			if strings.EqualFold(existing.Email, u.Email) {
				return ErrEmailTaken
			}
		}
		users = append(users, *u)
		return nil
	})
}

func (r *FileUserRepository) all() ([]User, error) {
	var users []User
	err := r.docs.Get(store.Users, usersKey, &users)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func (r *FileUserRepository) find(match func(User) bool) (*User, error) {
	users, err := r.all()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if match(users[i]) {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *FileUserRepository) ByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *FileUserRepository) ByID(_ context.Context, id string) (*User, error) {
	return r.find(func(u User) bool { return u.ID == id })
}

// Service registers and authenticates users.
type Service struct {
	users  UserRepository
	tokens *TokenIssuer
}

func NewService(users UserRepository, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// ValidateCredentials checks the email format and password length.
func ValidateCredentials(email, password string) error {
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address %q", email)
	}
	if n := utf8.RuneCountInString(password); n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("password must be between %d and %d characters", minPasswordLen, maxPasswordLen)
	}
	return nil
}

// Register creates an account and returns it with a fresh access token.
func (s *Service) Register(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.TrimSpace(email)
	if err := ValidateCredentials(email, password); err != nil {
		return nil, "", err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login returns an access token for valid credentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.ByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.ID)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.users.ByID(ctx, id)
}
