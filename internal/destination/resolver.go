package destination

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"
)

// localSufficiency is the number of local matches beyond which the
// resolver skips the cache and supplier entirely.
const localSufficiency = 3

// Store is the local directory the resolver reads from and writes back to.
type Store interface {
	SearchDestinations(ctx context.Context, query string, limit int) ([]Destination, error)
	UpsertDestination(ctx context.Context, p Projection) error
}

// SearchCache holds previously fetched supplier result sets.
type SearchCache interface {
	GetSearch(ctx context.Context, query string) ([]Projection, error)
	SetSearch(ctx context.Context, query string, results []Projection) error
}

// DirectoryClient is the supplier's free-text destination lookup.
type DirectoryClient interface {
	DestinationInfo(ctx context.Context, text string) ([]Projection, error)
}

// Resolver turns a partial search string into a ranked, deduplicated list
// of destinations by consulting the local store, the cache, and the
// supplier in that order. Newly discovered destinations are written back
// to the store so future queries stay local.
//
// Search counters are NOT touched during resolution; only an explicit
// selection (the analytics endpoint) increments them.
type Resolver struct {
	store  Store
	cache  SearchCache
	remote DirectoryClient
	log    *slog.Logger
}

// NewResolver constructs a Resolver with explicit collaborators.
func NewResolver(store Store, cache SearchCache, remote DirectoryClient, log *slog.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, remote: remote, log: log}
}

// Resolve returns up to MaxResults destinations matching the raw user query.
//
// Queries shorter than MinQueryLength resolve to an empty list without any
// collaborator call. Cache and supplier failures degrade to whatever the
// local store produced; only a local store failure is returned as an error.
func (r *Resolver) Resolve(ctx context.Context, query string) ([]Destination, error) {
	norm := Normalize(query)
	if utf8.RuneCountInString(norm) < MinQueryLength {
		return nil, nil
	}

	local, err := r.store.SearchDestinations(ctx, norm, MaxResults)
	if err != nil {
		return nil, fmt.Errorf("local destination search for %q: %w", norm, err)
	}

	// Enough local signal: skip the cache and the supplier.
	if len(local) >= localSufficiency {
		return truncate(local), nil
	}

	cached, err := r.cache.GetSearch(ctx, norm)
	if err != nil {
		r.log.Warn("destination cache probe failed", "query", norm, "err", err)
		cached = nil
	}
	if len(cached) > 0 {
		r.writeBack(ctx, cached)
		return truncate(merge(local, cached)), nil
	}

	remote, err := r.remote.DestinationInfo(ctx, norm)
	if err != nil {
		r.log.Warn("supplier destination lookup failed", "query", norm, "err", err)
		return local, nil
	}

	if err := r.cache.SetSearch(ctx, norm, remote); err != nil {
		r.log.Warn("caching supplier results failed", "query", norm, "err", err)
	}
	r.writeBack(ctx, remote)

	merged := merge(local, remote)
	rank(merged, norm)
	return truncate(merged), nil
}

// writeBack upserts supplier- or cache-sourced projections into the local
// store so the next query for them resolves locally. Best effort: failures
// are logged and skipped.
func (r *Resolver) writeBack(ctx context.Context, results []Projection) {
	for _, p := range results {
		if err := r.store.UpsertDestination(ctx, p); err != nil {
			r.log.Warn("destination write-back failed", "destinationId", p.DestinationID, "err", err)
		}
	}
}

// merge appends projections to the local results, deduplicating by
// destination id. Local entries win on conflict since they carry live
// counters.
func merge(local []Destination, incoming []Projection) []Destination {
	seen := make(map[string]struct{}, len(local)+len(incoming))
	merged := make([]Destination, 0, len(local)+len(incoming))

	for _, d := range local {
		if _, ok := seen[d.DestinationID]; ok {
			continue
		}
		seen[d.DestinationID] = struct{}{}
		merged = append(merged, d)
	}

	for _, p := range incoming {
		if _, ok := seen[p.DestinationID]; ok {
			continue
		}
		seen[p.DestinationID] = struct{}{}
		merged = append(merged, Destination{
			DestinationID: p.DestinationID,
			CityName:      p.CityName,
			CountryName:   p.CountryName,
			CountryCode:   p.CountryCode,
		})
	}

	return merged
}

// rank orders merged results: exact case-insensitive city or country match
// first, then by search count, then alphabetically by city for a stable
// deterministic order.
func rank(results []Destination, norm string) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]

		aExact := isExactMatch(a, norm)
		bExact := isExactMatch(b, norm)
		if aExact != bExact {
			return aExact
		}

		if a.SearchCount != b.SearchCount {
			return a.SearchCount > b.SearchCount
		}

		return a.CityName < b.CityName
	})
}

func isExactMatch(d Destination, norm string) bool {
	return strings.EqualFold(d.CityName, norm) || strings.EqualFold(d.CountryName, norm)
}

func truncate(results []Destination) []Destination {
	if len(results) > MaxResults {
		return results[:MaxResults]
	}
	return results
}
