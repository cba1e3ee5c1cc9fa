package properties

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propfind/propfind/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	properties map[int64]*Property
	owners     map[int64]string
	nextID     int64

	// Error injection
	listError     error
	createError   error
	updateError   error
	deleteError   error
	addViewsError error

	// Forces the conditional mutation to miss even though the owner lookup
	// succeeded, simulating a concurrent delete.
	vanishOnMutate bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		properties: make(map[int64]*Property),
		owners:     make(map[int64]string),
		nextID:     1,
	}
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter) ([]Listing, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var listings []Listing
	for _, p := range m.properties {
		if filter.PropertyType != "" && p.PropertyType != filter.PropertyType {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		listings = append(listings, Listing{
			ID:           p.ID,
			Title:        p.Title,
			PropertyType: p.PropertyType,
			Price:        p.Price,
			Location:     p.Location,
			Views:        p.Views,
			ContactEmail: m.owners[p.OwnerID],
			CreatedAt:    p.CreatedAt,
		})
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}

func (m *mockRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Property, error) {
	var props []Property
	for _, p := range m.properties {
		if p.OwnerID == ownerID {
			props = append(props, *p)
		}
	}
	return props, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Property, error) {
	p, ok := m.properties[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) Owner(ctx context.Context, id int64) (int64, error) {
	p, ok := m.properties[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return p.OwnerID, nil
}

func (m *mockRepository) Create(ctx context.Context, p Property) (int64, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	id := m.nextID
	m.nextID++
	p.ID = id
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.properties[id] = &p
	return id, nil
}

func (m *mockRepository) UpdateIfOwned(ctx context.Context, id, ownerID int64, updates map[string]any) (bool, error) {
	if m.updateError != nil {
		return false, m.updateError
	}
	if m.vanishOnMutate {
		return false, nil
	}
	p, ok := m.properties[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	if v, ok := updates["title"]; ok {
		p.Title = v.(string)
	}
	if v, ok := updates["property_type"]; ok {
		p.PropertyType = v.(string)
	}
	if v, ok := updates["price"]; ok {
		p.Price = v.(float64)
	}
	if v, ok := updates["location"]; ok {
		p.Location = v.(string)
	}
	if v, ok := updates["year_built"]; ok {
		year := v.(int)
		p.YearBuilt = &year
	}
	if v, ok := updates["description"]; ok {
		p.Description = v.(string)
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockRepository) DeleteIfOwned(ctx context.Context, id, ownerID int64) (bool, error) {
	if m.deleteError != nil {
		return false, m.deleteError
	}
	if m.vanishOnMutate {
		return false, nil
	}
	p, ok := m.properties[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	delete(m.properties, id)
	return true, nil
}

func (m *mockRepository) AddViews(ctx context.Context, counts map[int64]int64) error {
	if m.addViewsError != nil {
		return m.addViewsError
	}
	for id, delta := range counts {
		if p, ok := m.properties[id]; ok {
			p.Views += delta
		}
	}
	return nil
}

var _ Repository = (*mockRepository)(nil)

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, nil, nil, nil), repo
}

func validCreateRequest() CreatePropertyRequest {
	return CreatePropertyRequest{
		Title:        "Cozy Cottage",
		PropertyType: "sale",
		Price:        250000,
		Location:     "Springfield",
		Bedrooms:     3,
		Bathrooms:    2,
		Area:         1400,
		Description:  "A cozy cottage with a garden.",
	}
}

var (
	owner    = shared.Identity{UserID: 1, Email: "owner@example.com"}
	stranger = shared.Identity{UserID: 2, Email: "stranger@example.com"}
)

// ============================================================================
// CREATE TESTS
// ============================================================================

func TestCreateProperty(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, owner.UserID, created.OwnerID)
	assert.Equal(t, "Cozy Cottage", created.Title)
	assert.Equal(t, 250000.0, created.Price)
}

func TestCreatePropertyYearBuilt(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tooOld := 1799
	req := validCreateRequest()
	req.YearBuilt = &tooOld
	_, err := svc.Create(ctx, owner, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)

	future := time.Now().Year() + 1
	req.YearBuilt = &future
	_, err = svc.Create(ctx, owner, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)

	current := time.Now().Year()
	req.YearBuilt = &current
	created, err := svc.Create(ctx, owner, req)
	require.NoError(t, err)
	require.NotNil(t, created.YearBuilt)
	assert.Equal(t, current, *created.YearBuilt)
}

// ============================================================================
// UPDATE TESTS
// ============================================================================

func TestUpdateProperty(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)

	newTitle := "Renovated Cottage"
	newPrice := 275000.0
	updated, err := svc.Update(ctx, owner, created.ID, UpdatePropertyRequest{
		Title: &newTitle,
		Price: &newPrice,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renovated Cottage", updated.Title)
	assert.Equal(t, 275000.0, updated.Price)
	// Untouched fields keep their stored value.
	assert.Equal(t, "Springfield", updated.Location)
}

func TestUpdatePropertyEmptyRequest(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, created.ID, UpdatePropertyRequest{})
	require.NoError(t, err)
	assert.Equal(t, created.Title, updated.Title)
}

func TestUpdatePropertyRejectsBlankFields(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)

	empty := ""
	blank := "   "
	badType := "timeshare"
	zeroPrice := 0.0

	tests := []struct {
		name string
		req  UpdatePropertyRequest
	}{
		{"empty title", UpdatePropertyRequest{Title: &empty}},
		{"blank title", UpdatePropertyRequest{Title: &blank}},
		{"empty location", UpdatePropertyRequest{Location: &empty}},
		{"empty description", UpdatePropertyRequest{Description: &empty}},
		{"empty property type", UpdatePropertyRequest{PropertyType: &empty}},
		{"unknown property type", UpdatePropertyRequest{PropertyType: &badType}},
		{"zero price", UpdatePropertyRequest{Price: &zeroPrice}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, owner, created.ID, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	// Nothing was written.
	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cozy Cottage", stored.Title)
	assert.Equal(t, 250000.0, stored.Price)
}

func TestUpdatePropertyForbidden(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)

	newTitle := "Hijacked"
	_, err = svc.Update(ctx, stranger, created.ID, UpdatePropertyRequest{Title: &newTitle})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// The listing is untouched.
	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cozy Cottage", stored.Title)
}

func TestUpdatePropertyNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	newTitle := "Ghost"
	_, err := svc.Update(ctx, owner, 999, UpdatePropertyRequest{Title: &newTitle})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdatePropertyVanishedRow(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)

	// The row disappears between the owner lookup and the conditional update.
	repo.vanishOnMutate = true

	newTitle := "Too Late"
	_, err = svc.Update(ctx, owner, created.ID, UpdatePropertyRequest{Title: &newTitle})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ============================================================================
// DELETE TESTS
// ============================================================================

func TestDeleteProperty(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))

	// Deleting again reports not found, not forbidden.
	err = svc.Delete(ctx, owner, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeletePropertyForbidden(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)

	err = svc.Delete(ctx, stranger, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// The listing survives.
	_, err = repo.Get(ctx, created.ID)
	require.NoError(t, err)
}

// ============================================================================
// SEARCH AND MINE TESTS
// ============================================================================

func TestSearch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)

	rental := validCreateRequest()
	rental.Title = "Downtown Flat"
	rental.PropertyType = "rent"
	rental.Price = 1500
	_, err = svc.Create(ctx, stranger, rental)
	require.NoError(t, err)

	all, err := svc.Search(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rentals, err := svc.Search(ctx, ListFilter{PropertyType: "rent"})
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Equal(t, "Downtown Flat", rentals[0].Title)

	minPrice := 100000.0
	expensive, err := svc.Search(ctx, ListFilter{MinPrice: &minPrice})
	require.NoError(t, err)
	require.Len(t, expensive, 1)
	assert.Equal(t, "Cozy Cottage", expensive[0].Title)
}

func TestMine(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Create(ctx, stranger, validCreateRequest())
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, owner.UserID, mine[0].OwnerID)
}
