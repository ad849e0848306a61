package destination

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// seedConcurrency bounds the parallel upserts of a seeding run.
const seedConcurrency = 8

// CountryDirectory is the supplier's per-country city listing.
type CountryDirectory interface {
	CountryInfo(ctx context.Context, countryCode string) ([]CityEntry, error)
}

// Seeder bulk-loads every known city of a country into the local store.
// Operational tooling, not on the request-serving path.
type Seeder struct {
	store  Store
	remote CountryDirectory
	log    *slog.Logger
}

// NewSeeder constructs a Seeder with explicit collaborators.
func NewSeeder(store Store, remote CountryDirectory, log *slog.Logger) *Seeder {
	return &Seeder{store: store, remote: remote, log: log}
}

// SeedCountry fetches the supplier's city directory for countryCode and
// upserts every entry, returning the number of records processed. Upserts
// run concurrently with a bounded group; individual failures are logged
// and skipped rather than aborting the run.
func (s *Seeder) SeedCountry(ctx context.Context, countryCode string) (int, error) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		return 0, fmt.Errorf("country code is required")
	}

	entries, err := s.remote.CountryInfo(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("fetching cities for %s: %w", code, err)
	}

	countryName := CountryName(code)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)

	var processed atomic.Int64
	for _, e := range entries {
		p := Projection{
			DestinationID: e.Key,
			CityName:      e.Value,
			CountryName:   countryName,
			CountryCode:   code,
		}
		g.Go(func() error {
			if err := s.store.UpsertDestination(gCtx, p); err != nil {
				s.log.Warn("seed upsert failed", "destinationId", p.DestinationID, "err", err)
				return nil
			}
			processed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(processed.Load()), fmt.Errorf("seeding %s: %w", code, err)
	}

	return int(processed.Load()), nil
}
