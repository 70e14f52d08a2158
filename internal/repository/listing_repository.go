package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"unigang/annex/internal/catalog"
	"unigang/annex/internal/models"
)

// ErrDuplicateListing is returned by Insert when the id is already taken.
var ErrDuplicateListing = catalog.ErrDuplicateListing

const uniqueViolation = "23505"

// ListingRepository is the Postgres catalog.Store.
type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

var _ catalog.Store = (*ListingRepository)(nil)

const listingColumns = `
	id, title, price, address, description, features, images, campus,
	contact_name, contact_phone, contact_email, owner_id, created_at, updated_at
`

func (r *ListingRepository) List(ctx context.Context) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY position`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]models.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *ListingRepository) Get(ctx context.Context, id string) (models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.Listing{}, rowError(err)
	}
	return l, nil
}

func (r *ListingRepository) Insert(ctx context.Context, l models.Listing) error {
	const query = `
		INSERT INTO listings (
			id, title, price, address, description, features, images, campus,
			contact_name, contact_phone, contact_email, owner_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14
		)
	`
	_, err := r.pool.Exec(ctx, query, listingArgs(l)...)
	return insertError(err, l.ID)
}

func (r *ListingRepository) Update(ctx context.Context, l models.Listing) error {
	const query = `
		UPDATE listings
		SET title = $2,
		    price = $3,
		    address = $4,
		    description = $5,
		    features = $6,
		    images = $7,
		    campus = $8,
		    contact_name = $9,
		    contact_phone = $10,
		    contact_email = $11,
		    updated_at = $12
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		l.ID,
		l.Title,
		l.Price,
		l.Address,
		l.Description,
		nonNil(l.Features),
		nonNil(l.Images),
		l.Campus,
		l.ContactName,
		l.ContactPhone,
		l.ContactEmail,
		l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrListingNotFound
	}
	return nil
}

// Replace swaps the whole table for items inside one transaction.
func (r *ListingRepository) Replace(ctx context.Context, items []models.Listing) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE listings RESTART IDENTITY`); err != nil {
			return fmt.Errorf("truncate listings: %w", err)
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"listings"},
			[]string{
				"id", "title", "price", "address", "description", "features", "images", "campus",
				"contact_name", "contact_phone", "contact_email", "owner_id", "created_at", "updated_at",
			},
			pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
				return listingArgs(items[i]), nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy listings: %w", err)
		}
		return nil
	})
}

func rowError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrListingNotFound
	}
	return err
}

func insertError(err error, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateListing, id)
	}
	return err
}

func listingArgs(l models.Listing) []any {
	return []any{
		l.ID,
		l.Title,
		l.Price,
		l.Address,
		l.Description,
		nonNil(l.Features),
		nonNil(l.Images),
		l.Campus,
		l.ContactName,
		l.ContactPhone,
		l.ContactEmail,
		l.OwnerID,
		l.CreatedAt,
		l.UpdatedAt,
	}
}

func scanListing(row pgx.Row) (models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Price,
		&l.Address,
		&l.Description,
		&l.Features,
		&l.Images,
		&l.Campus,
		&l.ContactName,
		&l.ContactPhone,
		&l.ContactEmail,
		&l.OwnerID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
