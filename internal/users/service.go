package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/propfind/propfind/internal/auth"
	"github.com/propfind/propfind/internal/shared"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)

// Service wraps profile business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the caller's profile. The identity always comes from the
// verified token, never from request fields.
func (s *Service) Get(ctx context.Context, caller shared.Identity) (auth.Profile, error) {
	return s.repo.Get(ctx, caller.UserID)
}

// Update writes the caller's editable profile fields and returns the result.
func (s *Service) Update(ctx context.Context, caller shared.Identity, update ProfileUpdate) (auth.Profile, error) {
	update.FirstName = strings.TrimSpace(update.FirstName)
	update.LastName = strings.TrimSpace(update.LastName)
	update.Email = strings.TrimSpace(update.Email)
	update.Phone = strings.TrimSpace(update.Phone)

	if !phonePattern.MatchString(update.Phone) {
		return auth.Profile{}, fmt.Errorf("%w: invalid phone number format", shared.ErrValidation)
	}

	if err := s.repo.UpdateProfile(ctx, caller.UserID, update); err != nil {
		if errors.Is(err, shared.ErrDuplicateEmail) || errors.Is(err, shared.ErrNotFound) {
			return auth.Profile{}, err
		}
		return auth.Profile{}, fmt.Errorf("users: update profile: %w", err)
	}
	return s.repo.Get(ctx, caller.UserID)
}
