package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelkov/staybook/internal/destination"
)

// ErrNotFound is returned when an operation targets a destination id that
// does not exist.
var ErrNotFound = errors.New("destination not found")

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for destination records.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

const destinationColumns = `destination_id, city_name, country_name, country_code, search_count, last_used, created_at, updated_at`

func scanDestination(row pgx.Row) (*destination.Destination, error) {
	var d destination.Destination
	err := row.Scan(
		&d.DestinationID,
		&d.CityName,
		&d.CountryName,
		&d.CountryCode,
		&d.SearchCount,
		&d.LastUsed,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SearchDestinations returns up to limit destinations whose city or country
// name contains the query, case-insensitively. Ordered by search count,
// then recency of use.
func (r *Repository) SearchDestinations(ctx context.Context, query string, limit int) ([]destination.Destination, error) {
	const q = `
		SELECT ` + destinationColumns + `
		FROM destinations
		WHERE city_name ILIKE '%' || $1 || '%'
		   OR country_name ILIKE '%' || $1 || '%'
		ORDER BY search_count DESC, last_used DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, q, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching destinations for %q: %w", query, err)
	}
	defer rows.Close()

	var results []destination.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}
		results = append(results, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}

	return results, nil
}

// GetDestination retrieves a destination by its supplier-assigned id.
// Returns nil, nil when the id is unknown.
func (r *Repository) GetDestination(ctx context.Context, destinationID string) (*destination.Destination, error) {
	const q = `
		SELECT ` + destinationColumns + `
		FROM destinations
		WHERE destination_id = $1
	`

	d, err := scanDestination(r.q.QueryRow(ctx, q, destinationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying destination %s: %w", destinationID, err)
	}

	return d, nil
}

// UpsertDestination inserts or updates a destination. New records start with
// a zero search count; on conflict the display fields and last_used are
// refreshed while the counter is left alone.
func (r *Repository) UpsertDestination(ctx context.Context, p destination.Projection) error {
	const q = `
		INSERT INTO destinations (destination_id, city_name, country_name, country_code, search_count, last_used, updated_at)
		VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
		ON CONFLICT (destination_id) DO UPDATE
		SET city_name    = EXCLUDED.city_name,
		    country_name = EXCLUDED.country_name,
		    country_code = EXCLUDED.country_code,
		    last_used    = NOW(),
		    updated_at   = NOW()
	`

	if _, err := r.q.Exec(ctx, q, p.DestinationID, p.CityName, p.CountryName, p.CountryCode); err != nil {
		return fmt.Errorf("upserting destination %s: %w", p.DestinationID, err)
	}

	return nil
}

// IncrementSearchCount bumps the search counter and refreshes last_used for
// one destination. The increment is a single UPDATE so concurrent calls
// cannot lose updates. Returns ErrNotFound for an unknown id.
func (r *Repository) IncrementSearchCount(ctx context.Context, destinationID string) error {
	const q = `
		UPDATE destinations
		SET search_count = search_count + 1,
		    last_used    = NOW(),
		    updated_at   = NOW()
		WHERE destination_id = $1
	`

	tag, err := r.q.Exec(ctx, q, destinationID)
	if err != nil {
		return fmt.Errorf("incrementing search count for %s: %w", destinationID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incrementing search count for %s: %w", destinationID, ErrNotFound)
	}

	return nil
}

// TopDestinations returns the most searched destinations, for metrics scrapes.
func (r *Repository) TopDestinations(ctx context.Context, limit int) ([]destination.Destination, error) {
	const q = `
		SELECT ` + destinationColumns + `
		FROM destinations
		WHERE search_count > 0
		ORDER BY search_count DESC, last_used DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top destinations: %w", err)
	}
	defer rows.Close()

	var results []destination.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}
		results = append(results, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}

	return results, nil
}
