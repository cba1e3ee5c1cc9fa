package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/propfind/propfind/internal/shared"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)
)

// Service wraps registration and login business rules.
type Service struct {
	repo   Repository
	hasher Hasher
	tokens *TokenCodec
}

// NewService constructs a new Service.
func NewService(repo Repository, hasher Hasher, tokens *TokenCodec) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Register validates the input, hashes the password, and persists a new
// account. It deliberately does not issue a token; the caller must log in
// afterwards.
func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := in.validate(); err != nil {
		return 0, err
	}

	_, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return 0, shared.ErrDuplicateEmail
	case !errors.Is(err, shared.ErrNotFound):
		return 0, fmt.Errorf("auth: check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("auth: hash password: %w", err)
	}

	// The unique index on LOWER(email) is the final arbiter against a
	// concurrent registration slipping in between the check and the insert.
	id, err := s.repo.Create(ctx, NewUser{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEmail) {
			return 0, shared.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("auth: create user: %w", err)
	}
	return id, nil
}

func (in RegisterInput) validate() error {
	switch {
	case in.FirstName == "":
		return fmt.Errorf("%w: first name is required", shared.ErrValidation)
	case in.LastName == "":
		return fmt.Errorf("%w: last name is required", shared.ErrValidation)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", shared.ErrValidation)
	case in.Phone == "":
		return fmt.Errorf("%w: phone is required", shared.ErrValidation)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", shared.ErrValidation)
	case !emailPattern.MatchString(in.Email):
		return fmt.Errorf("%w: invalid email format", shared.ErrValidation)
	case len(in.Password) < 6:
		return fmt.Errorf("%w: password must be at least 6 characters long", shared.ErrValidation)
	case in.Password != in.ConfirmPassword:
		return fmt.Errorf("%w: passwords do not match", shared.ErrValidation)
	case !phonePattern.MatchString(in.Phone):
		return fmt.Errorf("%w: invalid phone number format", shared.ErrValidation)
	}
	return nil
}

// Login checks the credentials and issues a session token. Unknown email and
// wrong password return the same error so callers cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string, now time.Time) (Profile, string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		// Only a missing account is a credential failure. Anything else is a
		// storage problem and must surface as one.
		if errors.Is(err, shared.ErrNotFound) {
			return Profile{}, "", shared.ErrInvalidCredentials
		}
		return Profile{}, "", fmt.Errorf("auth: find user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return Profile{}, "", shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, now)
	if err != nil {
		return Profile{}, "", fmt.Errorf("auth: issue token: %w", err)
	}
	return user.Profile(), token, nil
}
