package properties

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/propfind/propfind/internal/auth"
	"github.com/propfind/propfind/internal/shared"
)

// Service wraps listing business rules around the repository, the search
// cache, and the view counter.
type Service struct {
	repo   Repository
	cache  *Cache
	views  *ViewCounter
	logger *slog.Logger
}

// NewService constructs a new Service. Cache and views may be nil.
func NewService(repo Repository, cache *Cache, views *ViewCounter, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, views: views, logger: logger}
}

// Search returns public listings matching the filter. Results are served from
// the cache when possible; every returned listing counts one view.
func (s *Service) Search(ctx context.Context, filter ListFilter) ([]Listing, error) {
	key, err := s.cache.Key(ctx, filter)
	if err != nil {
		s.logWarn("search cache key", err)
		return s.repo.List(ctx, filter)
	}

	listings, err := s.cache.FetchListings(ctx, key, func(ctx context.Context) ([]Listing, error) {
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("properties: search: %w", err)
	}

	ids := make([]int64, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	if err := s.views.Touch(ctx, ids); err != nil {
		s.logWarn("count views", err)
	}
	return listings, nil
}

// Mine returns the caller's own properties.
func (s *Service) Mine(ctx context.Context, caller shared.Identity) ([]Property, error) {
	return s.repo.ListByOwner(ctx, caller.UserID)
}

// Create inserts a listing owned by the caller.
func (s *Service) Create(ctx context.Context, caller shared.Identity, req CreatePropertyRequest) (*Property, error) {
	if err := validateYearBuilt(req.YearBuilt); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, Property{
		OwnerID:      caller.UserID,
		Title:        req.Title,
		PropertyType: req.PropertyType,
		Price:        req.Price,
		Location:     req.Location,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Area:         req.Area,
		YearBuilt:    req.YearBuilt,
		Description:  req.Description,
		Features:     req.Features,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("properties: create: %w", err)
	}

	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Update applies a partial update to a listing the caller owns. The ownership
// check and the mutation both key on (id, owner) so a concurrent delete or
// transfer can never let a stale check through.
func (s *Service) Update(ctx context.Context, caller shared.Identity, id int64, req UpdatePropertyRequest) (*Property, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	ownerID, err := s.repo.Owner(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("properties: lookup owner: %w", err)
	}
	if err := auth.Authorize(caller, ownerID); err != nil {
		return nil, err
	}

	updates := collectUpdates(req)
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	matched, err := s.repo.UpdateIfOwned(ctx, id, caller.UserID, updates)
	if err != nil {
		return nil, fmt.Errorf("properties: update: %w", err)
	}
	if !matched {
		// The row vanished between the owner lookup and the conditional
		// update. The update was not applied.
		return nil, shared.ErrNotFound
	}

	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes a listing the caller owns.
func (s *Service) Delete(ctx context.Context, caller shared.Identity, id int64) error {
	ownerID, err := s.repo.Owner(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound
		}
		return fmt.Errorf("properties: lookup owner: %w", err)
	}
	if err := auth.Authorize(caller, ownerID); err != nil {
		return err
	}

	matched, err := s.repo.DeleteIfOwned(ctx, id, caller.UserID)
	if err != nil {
		return fmt.Errorf("properties: delete: %w", err)
	}
	if !matched {
		return shared.ErrNotFound
	}

	s.invalidate(ctx)
	return nil
}

// FlushViews drains the Redis view counters into the views column. Called by
// the background worker. When persisting fails, the drained deltas go back
// into the hash so the retry does not find it empty.
func (s *Service) FlushViews(ctx context.Context) error {
	counts, err := s.views.Drain(ctx)
	if err != nil {
		return fmt.Errorf("properties: drain views: %w", err)
	}
	if len(counts) == 0 {
		return nil
	}
	if err := s.repo.AddViews(ctx, counts); err != nil {
		if restoreErr := s.views.Restore(ctx, counts); restoreErr != nil {
			s.logWarn("restore drained views", restoreErr)
		}
		return fmt.Errorf("properties: flush views: %w", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logWarn("invalidate search cache", err)
	}
}

func (s *Service) logWarn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}

// validateUpdate rejects fields that are present but would blank out values
// the create path requires. An absent field is fine; an empty one is not.
func validateUpdate(req UpdatePropertyRequest) error {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", shared.ErrValidation)
	}
	if req.Location != nil && strings.TrimSpace(*req.Location) == "" {
		return fmt.Errorf("%w: location cannot be empty", shared.ErrValidation)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return fmt.Errorf("%w: description cannot be empty", shared.ErrValidation)
	}
	if req.PropertyType != nil {
		switch *req.PropertyType {
		case "sale", "rent", "lease":
		default:
			return fmt.Errorf("%w: invalid property type", shared.ErrValidation)
		}
	}
	if req.Price != nil && *req.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", shared.ErrValidation)
	}
	return validateYearBuilt(req.YearBuilt)
}

func validateYearBuilt(year *int) error {
	if year == nil {
		return nil
	}
	if *year < 1800 || *year > time.Now().Year() {
		return fmt.Errorf("%w: invalid year built", shared.ErrValidation)
	}
	return nil
}

func collectUpdates(req UpdatePropertyRequest) map[string]any {
	updates := make(map[string]any)
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.PropertyType != nil {
		updates["property_type"] = *req.PropertyType
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Bedrooms != nil {
		updates["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		updates["bathrooms"] = *req.Bathrooms
	}
	if req.Area != nil {
		updates["area"] = *req.Area
	}
	if req.YearBuilt != nil {
		updates["year_built"] = *req.YearBuilt
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Features != nil {
		updates["features"] = *req.Features
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	return updates
}
