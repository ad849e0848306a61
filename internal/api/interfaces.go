package api

import (
	"context"

	"github.com/avelkov/staybook/internal/destination"
)

// DestinationResolver runs the destination search pipeline.
type DestinationResolver interface {
	Resolve(ctx context.Context, query string) ([]destination.Destination, error)
}

// SelectionRecorder records that a user explicitly picked a destination.
type SelectionRecorder interface {
	IncrementSearchCount(ctx context.Context, destinationID string) error
}

// CountrySeeder bulk-loads a country's cities into the local store.
type CountrySeeder interface {
	SeedCountry(ctx context.Context, countryCode string) (int, error)
}
