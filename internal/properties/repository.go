package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfind/propfind/internal/platform/db"
	"github.com/propfind/propfind/internal/shared"
)

// Repository defines persistence operations for the properties module.
// UpdateIfOwned and DeleteIfOwned are conditional single statements keyed on
// both id and owner id, so the ownership check and the mutation cannot be
// separated by a concurrent delete or transfer.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Listing, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Property, error)
	Get(ctx context.Context, id int64) (*Property, error)
	Owner(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, p Property) (int64, error)
	UpdateIfOwned(ctx context.Context, id, ownerID int64, updates map[string]any) (bool, error)
	DeleteIfOwned(ctx context.Context, id, ownerID int64) (bool, error)
	AddViews(ctx context.Context, counts map[int64]int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns public listings newest first, with owner contact details.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Listing, error) {
	query := `
		SELECT p.id, p.title, p.property_type, p.price, p.location,
		       p.bedrooms, p.bathrooms, p.area, p.year_built,
		       p.description, p.features, p.image_url, p.views,
		       u.first_name || ' ' || u.last_name, u.phone, u.email,
		       p.created_at
		FROM properties p
		JOIN users u ON p.owner_id = u.id
		WHERE 1=1`

	var args []any
	argPos := 1

	if filter.Location != "" {
		query += fmt.Sprintf(" AND p.location ILIKE $%d", argPos)
		args = append(args, "%"+filter.Location+"%")
		argPos++
	}
	if filter.PropertyType != "" {
		query += fmt.Sprintf(" AND p.property_type = $%d", argPos)
		args = append(args, filter.PropertyType)
		argPos++
	}
	if filter.MinPrice != nil {
		query += fmt.Sprintf(" AND p.price >= $%d", argPos)
		args = append(args, *filter.MinPrice)
		argPos++
	}
	if filter.MaxPrice != nil {
		query += fmt.Sprintf(" AND p.price <= $%d", argPos)
		args = append(args, *filter.MaxPrice)
		argPos++
	}

	query += " ORDER BY p.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		var l Listing
		var yearBuilt pgtype.Int4
		var features, imageURL pgtype.Text

		err := rows.Scan(
			&l.ID, &l.Title, &l.PropertyType, &l.Price, &l.Location,
			&l.Bedrooms, &l.Bathrooms, &l.Area, &yearBuilt,
			&l.Description, &features, &imageURL, &l.Views,
			&l.ContactName, &l.ContactPhone, &l.ContactEmail,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if yearBuilt.Valid {
			year := int(yearBuilt.Int32)
			l.YearBuilt = &year
		}
		if features.Valid {
			l.Features = &features.String
		}
		if imageURL.Valid {
			l.ImageURL = &imageURL.String
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ListByOwner returns the owner's properties newest first.
func (r *PGRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Property, error) {
	const query = `
		SELECT id, owner_id, title, property_type, price, location,
		       bedrooms, bathrooms, area, year_built, description,
		       features, image_url, views, created_at, updated_at
		FROM properties
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, *p)
	}
	return props, rows.Err()
}

// Get fetches one property by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Property, error) {
	const query = `
		SELECT id, owner_id, title, property_type, price, location,
		       bedrooms, bathrooms, area, year_built, description,
		       features, image_url, views, created_at, updated_at
		FROM properties
		WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Owner returns the owning user id of a property.
func (r *PGRepository) Owner(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := r.pool.QueryRow(ctx, "SELECT owner_id FROM properties WHERE id = $1", id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

// Create inserts a property and returns its id.
func (r *PGRepository) Create(ctx context.Context, p Property) (int64, error) {
	const query = `
		INSERT INTO properties (owner_id, title, property_type, price, location,
		                        bedrooms, bathrooms, area, year_built,
		                        description, features, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		p.OwnerID, p.Title, p.PropertyType, p.Price, p.Location,
		p.Bedrooms, p.Bathrooms, p.Area, p.YearBuilt,
		p.Description, p.Features, p.ImageURL,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateIfOwned applies the updates in one conditional statement and reports
// whether a row matched both the id and the owner.
func (r *PGRepository) UpdateIfOwned(ctx context.Context, id, ownerID int64, updates map[string]any) (bool, error) {
	query := "UPDATE properties SET updated_at = now()"
	var args []any
	argPos := 1

	// Iterate a fixed column order so the statement is deterministic.
	for _, col := range []string{
		"title", "property_type", "price", "location", "bedrooms",
		"bathrooms", "area", "year_built", "description", "features", "image_url",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d AND owner_id = $%d", argPos, argPos+1)
	args = append(args, id, ownerID)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteIfOwned removes the property only when it belongs to ownerID.
func (r *PGRepository) DeleteIfOwned(ctx context.Context, id, ownerID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM properties WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddViews adds the drained counter deltas to the stored view counts. All
// deltas apply in one transaction so a partial failure leaves nothing behind.
func (r *PGRepository) AddViews(ctx context.Context, counts map[int64]int64) error {
	if len(counts) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for id, delta := range counts {
			if _, err := tx.Exec(ctx, "UPDATE properties SET views = views + $2 WHERE id = $1", id, delta); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanProperty(row pgx.Row) (*Property, error) {
	var p Property
	var yearBuilt pgtype.Int4
	var features, imageURL pgtype.Text

	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.PropertyType, &p.Price, &p.Location,
		&p.Bedrooms, &p.Bathrooms, &p.Area, &yearBuilt, &p.Description,
		&features, &imageURL, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if yearBuilt.Valid {
		year := int(yearBuilt.Int32)
		p.YearBuilt = &year
	}
	if features.Valid {
		p.Features = &features.String
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	return &p, nil
}

var _ Repository = (*PGRepository)(nil)
